package executor

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocker serves one exec whose output is framed the way the engine
// frames non-TTY streams
type fakeDocker struct {
	stdout   string
	stderr   string
	exitCode int
	hang     bool

	createErr error
	gotUnit   string
	gotCmd    []string
	closed    bool
}

func (f *fakeDocker) ContainerExecCreate(_ context.Context, unit string, options container.ExecOptions) (container.ExecCreateResponse, error) {
	f.gotUnit = unit
	f.gotCmd = options.Cmd
	if f.createErr != nil {
		return container.ExecCreateResponse{}, f.createErr
	}
	return container.ExecCreateResponse{ID: "exec-1"}, nil
}

func (f *fakeDocker) ContainerExecAttach(_ context.Context, _ string, _ container.ExecAttachOptions) (types.HijackedResponse, error) {
	server, client := net.Pipe()
	go func() {
		if f.hang {
			return
		}
		defer server.Close()
		if f.stdout != "" {
			stdcopy.NewStdWriter(server, stdcopy.Stdout).Write([]byte(f.stdout))
		}
		if f.stderr != "" {
			stdcopy.NewStdWriter(server, stdcopy.Stderr).Write([]byte(f.stderr))
		}
	}()
	return types.HijackedResponse{Conn: client, Reader: bufio.NewReader(client)}, nil
}

func (f *fakeDocker) ContainerExecInspect(_ context.Context, _ string) (container.ExecInspect, error) {
	return container.ExecInspect{ExitCode: f.exitCode}, nil
}

func (f *fakeDocker) Close() error {
	f.closed = true
	return nil
}

func TestDockerExecutorExec(t *testing.T) {
	api := &fakeDocker{
		stdout:   "4 packets transmitted, 4 received, 0% packet loss\n",
		stderr:   "warning\n",
		exitCode: 0,
	}
	exec := newDockerExecutor(api, time.Second, nil)

	result, err := exec.Exec(context.Background(), "host1", "ping -c 4 10.0.1.2")
	require.NoError(t, err)

	assert.Equal(t, "host1", api.gotUnit)
	assert.Equal(t, []string{"sh", "-c", "ping -c 4 10.0.1.2"}, api.gotCmd)
	assert.Equal(t, "4 packets transmitted, 4 received, 0% packet loss\n", result.Stdout)
	assert.Equal(t, "warning\n", result.Stderr)
	assert.Equal(t, 0, result.ExitCode)

	require.NoError(t, exec.Close())
	assert.True(t, api.closed)
}

func TestDockerExecutorNonZeroExitIsNotError(t *testing.T) {
	api := &fakeDocker{stdout: "4 packets transmitted, 0 received, 100% packet loss\n", exitCode: 1}
	exec := newDockerExecutor(api, time.Second, nil)

	result, err := exec.Exec(context.Background(), "host1", "ping -c 4 10.9.9.9")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode)
}

func TestDockerExecutorCreateError(t *testing.T) {
	api := &fakeDocker{createErr: assert.AnError}
	exec := newDockerExecutor(api, time.Second, nil)

	_, err := exec.Exec(context.Background(), "missing", "true")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDockerExecutorTimeout(t *testing.T) {
	api := &fakeDocker{hang: true}
	exec := newDockerExecutor(api, 50*time.Millisecond, nil)

	_, err := exec.Exec(context.Background(), "host1", "sleep 60")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDockerExecutorRejectsEmptyRequest(t *testing.T) {
	api := &fakeDocker{}
	exec := newDockerExecutor(api, time.Second, nil)

	_, err := exec.Exec(context.Background(), "", "true")
	assert.Error(t, err)

	_, err = exec.Exec(context.Background(), "host1", "   ")
	assert.Error(t, err)

	assert.Empty(t, api.gotUnit, "no exec should be created for an invalid request")
}

func TestResultOutput(t *testing.T) {
	tests := []struct {
		result Result
		want   string
	}{
		{Result{Stdout: "out\n"}, "out\n"},
		{Result{Stderr: "err\n"}, "err\n"},
		{Result{Stdout: "out\n", Stderr: "err\n"}, "out\nerr\n"},
		{Result{Stdout: "out", Stderr: "err"}, "out\nerr"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.result.Output())
	}
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'host1'`, shellQuote("host1"))
	assert.Equal(t, `'echo '\''hi'\'''`, shellQuote("echo 'hi'"))
	assert.Equal(t, `docker exec 'host1' sh -c 'ping -c 4 10.0.1.2'`, dockerExecCommand("host1", "ping -c 4 10.0.1.2"))
}
