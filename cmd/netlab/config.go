package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"netlab/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.configPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No config file found, using defaults")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", a.configPath)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.Summary())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})

	return cmd
}
