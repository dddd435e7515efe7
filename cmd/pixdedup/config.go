package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pixdedup/pkg/config"
	"pixdedup/pkg/ui"
)

const defaultConfigPath = ".pixdedup.yaml"

func newConfigCommand(root *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage pixdedup configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (PIXDEDUP_*)
  - .env files (./.env, ~/.pixdedup.env)
  - Configuration file
  - Default values (lowest priority)`,
	}

	configCmd.AddCommand(newConfigInitCommand(root))
	configCmd.AddCommand(newConfigShowCommand(root))
	configCmd.AddCommand(newConfigValidateCommand(root))
	return configCmd
}

func newConfigInitCommand(root *rootOptions) *cobra.Command {
	var scanDir string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default values",
		Long: `Write a configuration file with every option at its default value.

The file is created as '.pixdedup.yaml' in the current directory unless a
different path is given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.configFile
			if path == "" {
				path = defaultConfigPath
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			cfg.Scan.Directory = scanDir
			if err := cfg.Save(path); err != nil {
				return err
			}

			console := ui.NewConsole(cmd.OutOrStdout())
			console.PrintSuccess("Configuration file created: " + path)
			if scanDir == "" {
				console.PrintDim("Set scan.directory before running, or pass the directory on the command line.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scanDir, "scan-dir", "d", "", "scan directory to store in the file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after merging defaults, the configuration file,
.env files, environment variables and flags. Nothing is validated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(root.configFile, root.flags(cmd))
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to format configuration: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigValidateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Long: `Load the configuration from every source and check it.

All problems are reported at once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configFile, root.flags(cmd))
			if err != nil {
				return err
			}

			console := ui.NewConsole(cmd.OutOrStdout())
			console.PrintSuccess("Configuration is valid")
			console.PrintInfo("Scan directory", cfg.Scan.Directory)
			console.PrintInfo("Fingerprint", cfg.Fingerprint.Algorithm)
			console.PrintInfo("On removal failure", cfg.Deletion.OnFailure)
			console.PrintInfo("Dry run", fmt.Sprint(cfg.Deletion.DryRun))
			console.PrintInfo("Log level", cfg.Logging.Level)
			return nil
		},
	}
}
