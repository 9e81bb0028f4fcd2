package service

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"netlab/internal/diag"
	"netlab/internal/domain"
	"netlab/internal/executor"
	"netlab/internal/repository"
)

// LabService runs and records diagnostics
type LabService struct {
	exec      executor.Executor
	repo      repository.Repository
	events    *EventBus
	logger    *zap.Logger
	pingCount int
	now       func() time.Time
}

// Option configures a LabService
type Option func(*LabService)

// WithEventBus publishes run progress on bus
func WithEventBus(bus *EventBus) Option {
	return func(s *LabService) {
		s.events = bus
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *LabService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPingCount sets how many echo requests Ping sends
func WithPingCount(n int) Option {
	return func(s *LabService) {
		if n > 0 {
			s.pingCount = n
		}
	}
}

// NewLabService creates a service. repo may be nil, in which case runs are
// returned but not stored.
func NewLabService(exec executor.Executor, repo repository.Repository, opts ...Option) *LabService {
	s := &LabService{
		exec:      exec,
		repo:      repo,
		logger:    zap.NewNop(),
		pingCount: diag.DefaultPingCount,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type targetRequest struct {
	Host   string `validate:"required"`
	Target string `validate:"required,hostname_rfc1123|ip"`
}

var validate = validator.New()

// Ping pings target from inside host
func (s *LabService) Ping(ctx context.Context, host, target string) (*domain.DiagnosticRun, error) {
	if err := validate.Struct(targetRequest{Host: host, Target: target}); err != nil {
		return nil, errors.Wrap(err, "invalid ping request")
	}
	return s.execute(ctx, host, domain.DiagnosticPing, target, diag.PingCommand(target, s.pingCount))
}

// Tracepath traces the path to target from inside host
func (s *LabService) Tracepath(ctx context.Context, host, target string) (*domain.DiagnosticRun, error) {
	if err := validate.Struct(targetRequest{Host: host, Target: target}); err != nil {
		return nil, errors.Wrap(err, "invalid tracepath request")
	}
	return s.execute(ctx, host, domain.DiagnosticTracepath, target, diag.TracepathCommand(target))
}

// Exec runs an arbitrary command in host. Ping and tracepath command lines
// are recognised and parsed.
func (s *LabService) Exec(ctx context.Context, host, command string) (*domain.DiagnosticRun, error) {
	command = strings.TrimSpace(command)
	if host == "" || command == "" {
		return nil, errors.New("host and command are required")
	}

	kind := diag.DetectKind(command)
	return s.execute(ctx, host, kind, commandTarget(kind, command), command)
}

// RunCommand runs the command declared for spec. A host without a declared
// command only idles, so there is nothing to run.
func (s *LabService) RunCommand(ctx context.Context, spec domain.HostSpec) (*domain.DiagnosticRun, error) {
	if strings.TrimSpace(spec.Command) == "" {
		return nil, errors.Newf("host %q declares no command", spec.Name)
	}
	return s.Exec(ctx, spec.Name, spec.Command)
}

// History lists recorded runs for host, newest first. An empty host lists
// every host.
func (s *LabService) History(ctx context.Context, host string, limit int) ([]*domain.DiagnosticRun, error) {
	if s.repo == nil {
		return nil, errors.New("no run history configured")
	}
	return s.repo.ListRuns(ctx, host, limit)
}

func (s *LabService) execute(ctx context.Context, host string, kind domain.DiagnosticKind, target, command string) (*domain.DiagnosticRun, error) {
	logger := s.logger.With(zap.String("host", host), zap.String("kind", string(kind)))

	run := &domain.DiagnosticRun{
		Host:      host,
		Kind:      kind,
		Target:    target,
		Command:   command,
		StartedAt: s.now().UTC(),
	}

	s.events.Publish(Event{
		Type:    EventRunStarted,
		Payload: map[string]string{"host": host, "kind": string(kind), "command": command},
	})

	result, err := s.exec.Exec(ctx, host, command)
	if err != nil {
		logger.Error("exec failed", zap.String("command", command), zap.Error(err))
		s.events.Publish(Event{
			Type:    EventRunFailed,
			Payload: map[string]string{"host": host, "command": command, "error": err.Error()},
		})
		return nil, errors.Wrapf(err, "%s in %s", kind, host)
	}

	run.Duration = s.now().UTC().Sub(run.StartedAt)
	run.Output = result.Output()
	run.ExitCode = result.ExitCode
	parse(run)

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, run); err != nil {
			return nil, errors.Wrap(err, "failed to record run")
		}
	}

	logger.Info("run complete",
		zap.Int64("id", run.ID),
		zap.Int("exit_code", run.ExitCode),
		zap.Duration("duration", run.Duration))

	s.events.Publish(Event{Type: EventRunFinished, Payload: run})

	return run, nil
}

// parse fills the typed result for the run's kind
func parse(run *domain.DiagnosticRun) {
	switch run.Kind {
	case domain.DiagnosticPing:
		result := diag.ParsePing(run.Output)
		run.Ping = &result
	case domain.DiagnosticTracepath:
		run.Hops = diag.ParseTracepath(run.Output)
	}
}

// commandTarget takes the last non-flag argument of a ping or tracepath
// command line as its destination
func commandTarget(kind domain.DiagnosticKind, command string) string {
	if kind == domain.DiagnosticCommand {
		return ""
	}
	fields := strings.Fields(command)
	for i := len(fields) - 1; i > 0; i-- {
		if !strings.HasPrefix(fields[i], "-") {
			return fields[i]
		}
	}
	return ""
}
