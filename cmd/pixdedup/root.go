package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information, set with -ldflags at build time
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	configFile string
	logLevel   string
	logFile    string
	quiet      bool
}

// flags returns the persistent flags the user set explicitly, keyed for
// config.MergeCommandLineFlags
func (o *rootOptions) flags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("log-level") {
		flags["log-level"] = o.logLevel
	}
	if cmd.Flags().Changed("log-file") {
		flags["log-file"] = o.logFile
	}
	return flags
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	run := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "pixdedup [directory]",
		Short: "Remove duplicate images from a download directory",
		Long: `pixdedup finds images that look the same and removes the redundant copies.

Every image in the directory is fingerprinted with a perceptual hash. Files
with equal fingerprints form a group, and each group is resolved by where the
files came from:

  - Files named <post>_p<page> come from the original-upload platform. The
    largest of them is the anchor, and re-posts (15 character names) no larger
    than the anchor are removed.
  - Groups without such a file keep their largest member and remove the rest.

Removed files are listed on stdout. Logs and the summary go to stderr.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedup(cmd, args, opts, run)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default is ./.pixdedup.yaml or ~/.config/pixdedup/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the summary table")

	// The bare command behaves like `run`
	run.register(rootCmd)

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newSameCommand(opts))
	rootCmd.AddCommand(newClassifyCommand())
	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	rootCmd.SetVersionTemplate(versionText())
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionText())
		},
	}
}

func versionText() string {
	return fmt.Sprintf("pixdedup %s\ncommit: %s\nbuilt: %s\nGo Version: %s\nOS/Arch: %s/%s\n",
		version, gitCommit, buildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
