package main

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"netlab/internal/codec"
	"netlab/internal/config"
	"netlab/internal/executor"
	"netlab/internal/logging"
	"netlab/internal/repository/sqlite"
	"netlab/internal/service"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "netlab",
		Short:         "Container network lab tool",
		Long:          "Compile host/network declarations into a docker-compose file and run ping and tracepath inside the lab.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: search $NETLAB_CONFIG, ./netlab.yaml, ~/.config/netlab)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newCompileCmd(a),
		newPingCmd(a),
		newTracepathCmd(a),
		newRunCmd(a),
		newParseCmd(a),
		newHistoryCmd(a),
		newSweepCmd(a),
		newConfigCmd(a),
	)

	return root
}

// init loads configuration and builds the logger
func (a *app) init() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, _, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, a.configPath, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}

	logger, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	if a.configPath != "" {
		logger.Debug("config loaded", zap.String("path", a.configPath))
	}
	return nil
}

// newExecutor builds the configured transport
func (a *app) newExecutor() (executor.Executor, error) {
	timeout := a.cfg.Executor.Timeout.Duration()

	switch a.cfg.Executor.Type {
	case config.ExecutorSSH:
		secret, err := a.cfg.SSHSecret()
		if err != nil {
			return nil, err
		}
		a.logger.Debug("ssh credentials", zap.Any("secret", secret.Redacted()))
		ssh := a.cfg.Executor.SSH
		return executor.NewSSHExecutor(ssh.Host, ssh.Port, secret, timeout, a.logger), nil
	case config.ExecutorDocker:
		return executor.NewDockerExecutor(a.cfg.Executor.Docker.Host, timeout, a.logger)
	default:
		return nil, errors.Newf("unknown executor type %q", a.cfg.Executor.Type)
	}
}

// newService wires executor, history database and event logging. The
// returned func releases them.
func (a *app) newService() (*service.LabService, func(), error) {
	exec, err := a.newExecutor()
	if err != nil {
		return nil, nil, err
	}

	repo, err := sqlite.New(a.cfg.Database.Path)
	if err != nil {
		exec.Close()
		return nil, nil, err
	}

	bus := service.NewEventBus()
	events := make(chan service.Event, 16)
	bus.Subscribe(events)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range events {
			a.logger.Debug("event", zap.String("type", string(event.Type)), zap.Any("payload", event.Payload))
		}
	}()

	svc := service.NewLabService(exec, repo,
		service.WithEventBus(bus),
		service.WithLogger(a.logger),
		service.WithPingCount(a.cfg.Diagnostics.PingCount),
	)

	cleanup := func() {
		close(events)
		<-done
		repo.Close()
		exec.Close()
	}
	return svc, cleanup, nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	return codec.NewJSONCodec().Encode(v, w)
}
