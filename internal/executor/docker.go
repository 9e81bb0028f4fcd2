package executor

import (
	"bytes"
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"
)

// dockerAPI is the subset of the engine client used for exec
type dockerAPI interface {
	ContainerExecCreate(ctx context.Context, container string, options container.ExecOptions) (container.ExecCreateResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
	Close() error
}

// DockerExecutor runs commands through the docker engine API
type DockerExecutor struct {
	api     dockerAPI
	timeout time.Duration
	logger  *zap.Logger
}

// NewDockerExecutor connects to the engine at host, or to the one named by
// DOCKER_HOST (falling back to the local socket) when host is empty
func NewDockerExecutor(host string, timeout time.Duration, logger *zap.Logger) (*DockerExecutor, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating docker client")
	}

	return newDockerExecutor(cli, timeout, logger), nil
}

func newDockerExecutor(api dockerAPI, timeout time.Duration, logger *zap.Logger) *DockerExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DockerExecutor{
		api:     api,
		timeout: timeout,
		logger:  logger.Named("docker"),
	}
}

// Exec runs command under sh -c inside the container named unit
func (d *DockerExecutor) Exec(ctx context.Context, unit, command string) (*Result, error) {
	if err := checkRequest(unit, command); err != nil {
		return nil, err
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logger := d.logger.With(zap.String("unit", unit), zap.String("command", command))
	logger.Debug("starting exec")

	execResp, err := d.api.ContainerExecCreate(ctx, unit, container.ExecOptions{
		Cmd:          shellCommand(command),
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating exec in %s", unit)
	}

	// Attaching starts the exec
	attachResp, err := d.api.ContainerExecAttach(ctx, execResp.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "attaching to exec in %s", unit)
	}
	defer attachResp.Close()

	var stdout, stderr bytes.Buffer
	copied := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader)
		copied <- err
	}()

	select {
	case err := <-copied:
		if err != nil {
			return nil, errors.Wrapf(err, "reading exec output from %s", unit)
		}
	case <-ctx.Done():
		attachResp.Close()
		<-copied
		return nil, errors.Wrapf(ctx.Err(), "exec in %s", unit)
	}

	inspect, err := d.api.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "inspecting exec in %s", unit)
	}

	logger.Debug("exec complete", zap.Int("exit_code", inspect.ExitCode))

	return &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: inspect.ExitCode,
	}, nil
}

// Close releases the engine client
func (d *DockerExecutor) Close() error {
	return d.api.Close()
}
