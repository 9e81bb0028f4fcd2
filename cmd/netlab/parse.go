package main

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"netlab/internal/diag"
)

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "parse ping|tracepath [FILE]",
		Short:     "Parse saved ping or tracepath output",
		Long:      "Parse reads tool output from FILE (or stdin) and prints the extracted fields as JSON. Fields the output does not contain are null.",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"ping", "tracepath"},
		RunE: func(cmd *cobra.Command, args []string) error {
			r := cmd.InOrStdin()
			if len(args) == 2 && args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return errors.Wrapf(err, "open %s", args[1])
				}
				defer f.Close()
				r = f
			}

			data, err := io.ReadAll(r)
			if err != nil {
				return errors.Wrap(err, "read output")
			}

			switch args[0] {
			case "ping":
				return printJSON(cmd.OutOrStdout(), diag.ParsePing(string(data)))
			case "tracepath":
				return printJSON(cmd.OutOrStdout(), diag.ParseTracepath(string(data)))
			default:
				return errors.Newf("unknown tool %q: want ping or tracepath", args[0])
			}
		},
	}
}
