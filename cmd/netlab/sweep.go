package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"netlab/internal/sweep"
)

func newSweepCmd(a *app) *cobra.Command {
	var (
		fromCompose bool
		ports       string
	)

	cmd := &cobra.Command{
		Use:   "sweep TOPOLOGY",
		Short: "Check with nmap which declared addresses answer",
		Long: `Sweep ping-scans every network subnet of the topology and reports, per
host interface, whether the declared address is up. TOPOLOGY is a topology
declaration, or a compose file with --compose.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := readTopology(cmd.InOrStdin(), args[0], fromCompose)
			if err != nil {
				return err
			}

			if !sweep.Available(cmd.Context()) {
				return errors.New("nmap binary not found in PATH")
			}

			opts := []sweep.Option{
				sweep.WithTimeout(a.cfg.Sweep.Timeout.Duration()),
				sweep.WithLogger(a.logger),
			}
			if ports != "" {
				opts = append(opts, sweep.WithPorts(ports))
			}

			reports, err := sweep.New(opts...).Sweep(cmd.Context(), topo)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reports)
		},
	}

	cmd.Flags().BoolVar(&fromCompose, "compose", false, "TOPOLOGY is a generated compose file")
	cmd.Flags().StringVar(&ports, "ports", "", `also probe these ports, e.g. "22,80-443"`)
	return cmd
}
