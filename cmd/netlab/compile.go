package main

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"netlab/internal/codec"
	"netlab/internal/compose"
	"netlab/internal/domain"
	"netlab/internal/loader"
	"netlab/internal/watcher"
)

func newCompileCmd(a *app) *cobra.Command {
	var (
		output string
		image  string
		format string
		strict bool
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "compile TOPOLOGY",
		Short: "Compile a topology declaration into a docker-compose file",
		Long: `Compile reads hosts and networks from a topology YAML file ("-" for stdin)
and writes a version 2.4 docker-compose document with one service per host
and one bridge network per distinct network name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := exporterFor(format)
			if err != nil {
				return err
			}
			if output == "" {
				output = a.cfg.Compose.Output
			}

			opts := []compose.Option{compose.WithImage(a.cfg.Compose.Image)}
			if image != "" {
				opts = append(opts, compose.WithImage(image))
			}
			if strict || a.cfg.Compose.Strict {
				opts = append(opts, compose.WithStrictNetworks())
			}

			build := func() error {
				hosts, err := readHosts(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}

				topo, err := compose.Compile(hosts, opts...)
				if err != nil {
					return err
				}

				if err := writeTopology(cmd.OutOrStdout(), output, exporter, topo); err != nil {
					return err
				}

				a.logger.Info("topology compiled",
					zap.Int("services", len(topo.Services)),
					zap.Int("networks", len(topo.Networks)),
					zap.String("output", output))
				return nil
			}

			if !watch {
				return build()
			}

			if args[0] == "-" {
				return errors.New("--watch needs a topology file, not stdin")
			}
			if err := build(); err != nil {
				a.logger.Error("compile failed", zap.Error(err))
			}

			w := watcher.New(args[0], func() {
				if err := build(); err != nil {
					a.logger.Error("compile failed", zap.Error(err))
				}
			}).WithLogger(a.logger)

			if err := w.Watch(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default from config)`)
	cmd.Flags().StringVar(&image, "image", "", "container image for every service (default from config)")
	cmd.Flags().StringVar(&format, "format", "compose", "output format: compose or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when hosts disagree on a network's subnet or gateway")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "recompile whenever the topology file changes")

	return cmd
}

// readHosts loads a topology declaration from path, or stdin for "-"
func readHosts(stdin io.Reader, path string) ([]domain.HostSpec, error) {
	if path == "-" {
		return loader.Parse(stdin)
	}
	return loader.LoadYAML(path)
}

func exporterFor(format string) (codec.Exporter, error) {
	switch format {
	case "compose", "yaml":
		return codec.NewComposeCodec(), nil
	case "json":
		return codec.NewJSONCodec(), nil
	default:
		return nil, errors.Newf("unknown format %q", format)
	}
}

func writeTopology(stdout io.Writer, path string, exporter codec.Exporter, topo *domain.Topology) error {
	if path == "-" {
		return exporter.Export(topo, stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := exporter.Export(topo, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readTopology loads a compiled topology from a compose file, or compiles a
// declaration file
func readTopology(stdin io.Reader, path string, fromCompose bool) (*domain.Topology, error) {
	if !fromCompose {
		hosts, err := readHosts(stdin, path)
		if err != nil {
			return nil, err
		}
		return compose.Compile(hosts)
	}

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		r = f
	}
	return codec.NewComposeCodec().Parse(r)
}
