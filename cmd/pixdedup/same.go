package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pixdedup/pkg/dedup"
)

func newSameCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	var baseDir string

	cmd := &cobra.Command{
		Use:   "same --base-dir DIR [directory]",
		Short: "Remove images already present in a base directory",
		Long: `Remove every image in the directory that has the same file name and the
same size as an image somewhere under the base directory. Nothing is decoded.

Both directories are walked recursively. A file is never compared with
itself, so the directory may sit inside the base directory.`,
		Example: `  # Drop downloads that are already in the archive
  pixdedup same --base-dir ~/Pictures/archive ~/Pictures/inbox`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSame(cmd, args, root, opts, baseDir)
		},
	}

	cmd.Flags().StringVarP(&baseDir, "base-dir", "b", "", "directory holding the images to keep")
	_ = cmd.MarkFlagRequired("base-dir")
	cmd.Flags().StringVarP(&opts.scanDir, "scan-dir", "d", "", "directory to remove copies from")
	cmd.Flags().BoolVar(&opts.strictExtensions, "strict-extensions", false, "only accept names ending in an image extension")
	opts.registerDeletion(cmd)

	return cmd
}

func runSame(cmd *cobra.Command, args []string, root *rootOptions, opts *runOptions, baseDir string) error {
	s, err := openSession(cmd, root, opts.flags(cmd, args))
	if err != nil {
		return err
	}
	defer s.release()
	cfg := s.cfg

	runner, err := dedup.NewSameName(dedup.SameOptions{
		Fs:               afero.NewOsFs(),
		Logger:           s.log,
		Audit:            cmd.OutOrStdout(),
		StrictExtensions: cfg.Scan.StrictExtensions,
		DryRun:           cfg.Deletion.DryRun,
		OnFailure:        s.policy,
		MaxAttempts:      cfg.Deletion.MaxAttempts,
		RetryDelay:       cfg.Deletion.RetryDelay,
		Backoff:          s.backoff,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := runner.Run(ctx, baseDir, cfg.Scan.Directory)
	return s.finish(cmd, root, report, runErr)
}
