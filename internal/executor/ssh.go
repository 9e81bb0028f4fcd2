package executor

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"netlab/internal/domain"
)

// SSHExecutor runs `docker exec` on a remote engine host over SSH. The
// connection is opened on first use and reused until Close.
type SSHExecutor struct {
	addr    string
	secret  *domain.Secret
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHExecutor creates an executor for the engine host at host:port
func NewSSHExecutor(host string, port int, secret *domain.Secret, timeout time.Duration, logger *zap.Logger) *SSHExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SSHExecutor{
		addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		secret:  secret,
		timeout: timeout,
		logger:  logger.Named("ssh"),
	}
}

// Exec runs command under sh -c inside the container named unit
func (s *SSHExecutor) Exec(ctx context.Context, unit, command string) (*Result, error) {
	if err := checkRequest(unit, command); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	client, err := s.connection(ctx)
	if err != nil {
		return nil, err
	}

	session, err := client.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	remote := dockerExecCommand(unit, command)
	s.logger.Debug("starting exec", zap.String("unit", unit), zap.String("remote", remote))

	done := make(chan error, 1)
	go func() {
		done <- session.Run(remote)
	}()

	select {
	case err := <-done:
		result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if err != nil {
			var exitErr *ssh.ExitError
			if !errors.As(err, &exitErr) {
				return nil, errors.Wrapf(err, "exec in %s", unit)
			}
			result.ExitCode = exitErr.ExitStatus()
		}
		s.logger.Debug("exec complete", zap.String("unit", unit), zap.Int("exit_code", result.ExitCode))
		return result, nil
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		session.Close()
		return nil, errors.Wrapf(ctx.Err(), "exec in %s", unit)
	}
}

// Close drops the SSH connection
func (s *SSHExecutor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *SSHExecutor) connection(ctx context.Context) (*ssh.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

// connect dials the engine host with context support
func (s *SSHExecutor) connect(ctx context.Context) (*ssh.Client, error) {
	config, err := buildSSHConfig(s.secret, s.timeout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build SSH config")
	}

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", s.addr)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, s.addr, config)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to establish SSH connection")
	}

	s.logger.Info("connected", zap.String("addr", s.addr), zap.String("user", config.User))
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// dockerExecCommand builds the remote command line for one unit command
func dockerExecCommand(unit, command string) string {
	return fmt.Sprintf("docker exec %s sh -c %s", shellQuote(unit), shellQuote(command))
}

// buildSSHConfig creates an SSH client config from a secret
func buildSSHConfig(secret *domain.Secret, timeout time.Duration) (*ssh.ClientConfig, error) {
	if secret == nil {
		return nil, errors.New("no SSH credentials")
	}

	username := secret.Data["username"]
	if username == "" {
		return nil, errors.Newf("username not found in %s secret", secret.Type)
	}

	var auth ssh.AuthMethod
	switch secret.Type {
	case domain.SecretTypeSSHKey:
		signer, err := parseSigner(secret)
		if err != nil {
			return nil, err
		}
		auth = ssh.PublicKeys(signer)
	case domain.SecretTypeSSHPassword:
		password := secret.Data["password"]
		if password == "" {
			return nil, errors.New("password not found in SSH password secret")
		}
		auth = ssh.Password(password)
	default:
		return nil, errors.Newf("unsupported secret type: %s", secret.Type)
	}

	// TODO: verify host keys against a known_hosts file from config
	return &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}, nil
}

func parseSigner(secret *domain.Secret) (ssh.Signer, error) {
	privateKey := secret.Data["private_key"]
	if privateKey == "" {
		return nil, errors.New("private_key not found in SSH key secret")
	}

	var (
		signer ssh.Signer
		err    error
	)
	if passphrase := secret.Data["passphrase"]; passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase([]byte(privateKey), []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey([]byte(privateKey))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private key")
	}
	return signer, nil
}
