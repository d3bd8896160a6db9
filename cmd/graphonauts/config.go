package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/obonovai/graphonauts/cmd/graphonauts/internal"
	"github.com/obonovai/graphonauts/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the graphonauts configuration",
	}
	cmd.AddCommand(newConfigInitCmd(a))
	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigValidateCmd(a))
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the default configuration to the --config path",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.flags.ConfigFile
			if _, err := os.Stat(path); err == nil && !force {
				return internal.NewCLIError(internal.ExitConfigError,
					fmt.Sprintf("%s already exists (use --force to overwrite)", path))
			}

			cfg := config.DefaultConfig()
			if a.flags.Backend != "" {
				cfg.Backend = a.flags.Backend
				if err := config.NewValidator().Validate(cfg); err != nil {
					return err
				}
			}
			if err := config.Write(path, cfg); err != nil {
				return err
			}
			return a.formatter(cmd).PrintSuccess(fmt.Sprintf("wrote %s", path))
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with passwords masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Redacted()
			f := a.formatter(cmd)
			if f.Format() == internal.FormatJSON {
				return f.PrintJSON(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check the configuration file and overrides",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			return a.formatter(cmd).PrintSuccess(
				fmt.Sprintf("%s is valid (backend %s)", a.flags.ConfigFile, cfg.Backend))
		},
	}
}
