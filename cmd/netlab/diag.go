package main

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"netlab/internal/domain"
)

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping HOST TARGET",
		Short: "Ping TARGET from inside HOST and record the parsed result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := a.newService()
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := svc.Ping(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), run)
		},
	}
}

func newTracepathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tracepath HOST TARGET",
		Short: "Trace the path to TARGET from inside HOST and record the hops",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := a.newService()
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := svc.Tracepath(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), run)
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var topology string

	cmd := &cobra.Command{
		Use:   "run HOST [-- COMMAND...]",
		Short: "Run a command inside HOST",
		Long: `Run executes COMMAND inside HOST. Without COMMAND, the command declared
for HOST in the --topology file is run. Ping and tracepath output is parsed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := args[0]

			var spec *domain.HostSpec
			if len(args) == 1 {
				if topology == "" {
					return errors.New("either COMMAND or --topology is required")
				}
				hosts, err := readHosts(cmd.InOrStdin(), topology)
				if err != nil {
					return err
				}
				for i := range hosts {
					if hosts[i].Name == host {
						spec = &hosts[i]
						break
					}
				}
				if spec == nil {
					return errors.Newf("host %q not found in %s", host, topology)
				}
			}

			svc, cleanup, err := a.newService()
			if err != nil {
				return err
			}
			defer cleanup()

			var run *domain.DiagnosticRun
			if spec != nil {
				run, err = svc.RunCommand(cmd.Context(), *spec)
			} else {
				run, err = svc.Exec(cmd.Context(), host, strings.Join(args[1:], " "))
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), run)
		},
	}

	cmd.Flags().StringVarP(&topology, "topology", "t", "", "topology declaration to take the host's command from")
	return cmd
}
