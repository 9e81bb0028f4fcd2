package config

import (
	"time"
)

// ExecutorType selects how diagnostic commands reach the containers
type ExecutorType string

const (
	ExecutorDocker ExecutorType = "docker" // local or DOCKER_HOST engine API
	ExecutorSSH    ExecutorType = "ssh"    // docker exec on a remote engine host
)

// Config is the root configuration structure
type Config struct {
	Version     int               `yaml:"version"`
	Database    DatabaseConfig    `yaml:"database"`
	Executor    ExecutorConfig    `yaml:"executor"`
	Compose     ComposeConfig     `yaml:"compose"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Sweep       SweepConfig       `yaml:"sweep"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ExecutorConfig holds command execution settings
type ExecutorConfig struct {
	Type    ExecutorType `yaml:"type" validate:"oneof=docker ssh"`
	Timeout Duration     `yaml:"timeout"`
	Docker  DockerConfig `yaml:"docker"`
	SSH     SSHConfig    `yaml:"ssh"`
}

// DockerConfig points at a docker engine; empty host means the environment
// (DOCKER_HOST) or the local socket
type DockerConfig struct {
	Host string `yaml:"host,omitempty"`
}

// SSHConfig describes the remote engine host. Secret values are referenced by
// path rather than stored inline where possible.
type SSHConfig struct {
	Host       string  `yaml:"host,omitempty"`
	Port       int     `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	User       string  `yaml:"user,omitempty"`
	KeyPath    *string `yaml:"key_path,omitempty"`
	Passphrase string  `yaml:"passphrase,omitempty"`
	Password   string  `yaml:"password,omitempty"`
}

// ComposeConfig holds compose file generation settings
type ComposeConfig struct {
	Output string `yaml:"output" validate:"required"`
	Image  string `yaml:"image,omitempty"`
	Strict bool   `yaml:"strict_networks"`
}

// DiagnosticsConfig holds defaults for diagnostic commands
type DiagnosticsConfig struct {
	PingCount int `yaml:"ping_count" validate:"min=1,max=1000"`
}

// SweepConfig holds nmap sweep settings
type SweepConfig struct {
	Timeout Duration `yaml:"timeout"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
