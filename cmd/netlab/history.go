package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"netlab/internal/domain"
	"netlab/internal/repository/sqlite"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		purge bool
	)

	cmd := &cobra.Command{
		Use:   "history [HOST]",
		Short: "Show recorded diagnostic runs, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := ""
			if len(args) == 1 {
				host = args[0]
			}

			repo, err := sqlite.New(a.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer repo.Close()

			if purge {
				if host == "" {
					return errors.New("--clear needs a HOST")
				}
				n, err := repo.DeleteRuns(cmd.Context(), host)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d runs for %s\n", n, host)
				return nil
			}

			runs, err := repo.ListRuns(cmd.Context(), host, limit)
			if err != nil {
				return err
			}
			if runs == nil {
				runs = []*domain.DiagnosticRun{}
			}
			return printJSON(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&purge, "clear", false, "delete the recorded runs for HOST")
	return cmd
}
