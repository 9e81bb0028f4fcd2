// Package executor runs shell commands inside lab containers.
//
// Two transports are provided: DockerExecutor talks to the engine API
// directly, SSHExecutor shells out to `docker exec` on a remote engine host.
// Both report the command's exit code in the Result; only transport failures
// are returned as errors, since ping exits non-zero on total packet loss.
package executor

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Executor runs a command inside a named unit (container)
type Executor interface {
	Exec(ctx context.Context, unit, command string) (*Result, error)
	Close() error
}

// Result is the captured outcome of a command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Output returns stdout followed by stderr
func (r *Result) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" || strings.HasSuffix(r.Stdout, "\n") {
		return r.Stdout + r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// request is validated before any transport work starts
type request struct {
	Unit    string `validate:"required"`
	Command string `validate:"required"`
}

var validate = validator.New()

func checkRequest(unit, command string) error {
	if err := validate.Struct(request{Unit: unit, Command: strings.TrimSpace(command)}); err != nil {
		return errors.Wrap(err, "invalid exec request")
	}
	return nil
}

// shellCommand wraps a command line so it runs under the unit's shell
func shellCommand(command string) []string {
	return []string{"sh", "-c", command}
}

// shellQuote single-quotes s for a POSIX shell
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
