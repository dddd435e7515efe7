package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pixdedup/internal/runlock"
	"pixdedup/internal/scan"
	"pixdedup/pkg/config"
	"pixdedup/pkg/dedup"
	errs "pixdedup/pkg/errors"
	"pixdedup/pkg/fingerprint"
	"pixdedup/pkg/logger"
	"pixdedup/pkg/retry"
	"pixdedup/pkg/ui"
)

// runOptions holds the flags of the run command
type runOptions struct {
	scanDir          string
	recursive        bool
	strictExtensions bool
	algorithm        string
	dryRun           bool
	onFailure        string
	maxAttempts      int
	noLock           bool
}

func (o *runOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.scanDir, "scan-dir", "d", "", "directory to deduplicate")
	cmd.Flags().BoolVarP(&o.recursive, "recursive", "r", false, "include subdirectories")
	cmd.Flags().BoolVar(&o.strictExtensions, "strict-extensions", false, "only accept names ending in an image extension")
	cmd.Flags().StringVar(&o.algorithm, "fingerprint", config.AlgorithmAverage, "perceptual hash: average, perception or difference")
	o.registerDeletion(cmd)
}

// registerDeletion adds the flags every deleting command takes
func (o *runOptions) registerDeletion(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.dryRun, "dry-run", "n", false, "report what would be removed without removing anything")
	cmd.Flags().StringVar(&o.onFailure, "on-failure", config.OnFailureFail, "when a removal fails: fail, skip or retry")
	cmd.Flags().IntVar(&o.maxAttempts, "max-attempts", 3, "removal attempts per file with --on-failure=retry")
	cmd.Flags().BoolVar(&o.noLock, "no-lock", false, "do not take the per-directory run lock")
}

// flags returns the flags the user set explicitly. Flags a command does not
// register are never reported as set.
func (o *runOptions) flags(cmd *cobra.Command, args []string) map[string]interface{} {
	flags := make(map[string]interface{})
	set := func(name string, value interface{}) {
		if cmd.Flags().Changed(name) {
			flags[name] = value
		}
	}
	set("scan-dir", o.scanDir)
	set("recursive", o.recursive)
	set("strict-extensions", o.strictExtensions)
	set("fingerprint", o.algorithm)
	set("dry-run", o.dryRun)
	set("on-failure", o.onFailure)
	set("max-attempts", o.maxAttempts)
	set("no-lock", o.noLock)

	if len(args) > 0 {
		flags["scan-dir"] = args[0]
	}
	return flags
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [directory]",
		Short: "Deduplicate a directory of images",
		Long: `Fingerprint every image in the directory, group identical fingerprints and
remove the redundant copies.

The directory can be given as an argument, with --scan-dir, with the
PIXDEDUP_SCAN_DIR environment variable or in the configuration file.`,
		Example: `  # Remove duplicates from a download directory
  pixdedup run ~/Pictures/inbox

  # See what would be removed
  pixdedup run ~/Pictures/inbox --dry-run

  # Use the DCT hash and keep going when a file cannot be removed
  pixdedup run -d ~/Pictures/inbox --fingerprint perception --on-failure skip`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedup(cmd, args, root, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// session is what every deleting command sets up before touching the file
// system: resolved configuration, the run logger, the failure policy and the
// run lock on the scan directory.
type session struct {
	cfg     *config.Config
	log     logger.Logger
	policy  dedup.FailurePolicy
	backoff retry.BackoffStrategy
	release func()
}

func openSession(cmd *cobra.Command, root *rootOptions, flags map[string]interface{}) (*session, error) {
	for k, v := range root.flags(cmd) {
		flags[k] = v
	}

	cfg, err := config.Load(root.configFile, flags)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeConfig, root.configFile, err)
	}

	if err := logger.InitializeWithWriter(&cfg.Logging, cmd.ErrOrStderr()); err != nil {
		return nil, errs.New(errs.ErrorTypeConfig, "", err)
	}
	log := logger.WithField("run_id", uuid.New().String())

	policy, err := dedup.ParseFailurePolicy(cfg.Deletion.OnFailure)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeConfig, "", err)
	}

	s := &session{cfg: cfg, log: log, policy: policy, release: func() {}}
	if cfg.Deletion.RetryDelay == 0 {
		s.backoff = retry.NoDelay
	}

	if cfg.Lock.Enabled {
		lock, err := runlock.Acquire(cfg.Lock.Directory, cfg.Scan.Directory)
		if err != nil {
			return nil, err
		}
		log.WithField("lock", lock.Path()).Debug("Acquired run lock")
		s.release = func() {
			if err := lock.Release(); err != nil {
				logger.WithError(err).Warn("Failed to release run lock")
			}
		}
	}

	return s, nil
}

// finish prints the summary and turns the run outcome into the command error
func (s *session) finish(cmd *cobra.Command, root *rootOptions, report *dedup.Report, runErr error) error {
	console := ui.NewConsole(cmd.ErrOrStderr())
	if !root.quiet {
		console.PrintBlock(ui.RenderSummary(report))
	}
	if runErr != nil {
		if errors.Is(runErr, errs.ErrRemove) {
			console.PrintWarning("Run stopped after a failed removal; rerun with --on-failure=skip or retry to continue past it")
		}
		return fmt.Errorf("%s %s: %w", cmd.Name(), s.cfg.Scan.Directory, runErr)
	}
	if len(report.Failed) > 0 {
		console.PrintWarning(fmt.Sprintf("%d file(s) could not be removed", len(report.Failed)))
	}
	return nil
}

func runDedup(cmd *cobra.Command, args []string, root *rootOptions, opts *runOptions) error {
	s, err := openSession(cmd, root, opts.flags(cmd, args))
	if err != nil {
		return err
	}
	defer s.release()
	cfg := s.cfg

	algorithm, err := fingerprint.ParseAlgorithm(cfg.Fingerprint.Algorithm)
	if err != nil {
		return errs.New(errs.ErrorTypeConfig, "", err)
	}
	hasher, err := fingerprint.NewHasher(algorithm)
	if err != nil {
		return errs.New(errs.ErrorTypeConfig, "", err)
	}

	engine, err := dedup.New(dedup.Options{
		Fs:            afero.NewOsFs(),
		Fingerprinter: hasher,
		Logger:        s.log,
		Audit:         cmd.OutOrStdout(),
		Scan: scan.Options{
			Recursive:        cfg.Scan.Recursive,
			StrictExtensions: cfg.Scan.StrictExtensions,
		},
		DryRun:      cfg.Deletion.DryRun,
		OnFailure:   s.policy,
		MaxAttempts: cfg.Deletion.MaxAttempts,
		RetryDelay:  cfg.Deletion.RetryDelay,
		Backoff:     s.backoff,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := engine.Run(ctx, cfg.Scan.Directory)
	return s.finish(cmd, root, report, runErr)
}
