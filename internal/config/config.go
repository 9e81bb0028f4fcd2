// Package config provides configuration management for netlab.
//
// Config file locations (priority order):
//  1. $NETLAB_CONFIG
//  2. ./netlab.yaml
//  3. $XDG_CONFIG_HOME/netlab/config.yaml
//  4. ~/.config/netlab/config.yaml
//  5. /etc/netlab/config.yaml
//
// Missing fields are filled with defaults after loading, so an empty file is
// a valid configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"netlab/internal/domain"
)

const (
	defaultDatabasePath = "./netlab.db"
	defaultComposeFile  = "docker-compose.yml"
	defaultExecTimeout  = 30 * time.Second
	defaultSweepTimeout = 2 * time.Minute
	defaultSSHPort      = 22
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, errors.Wrap(err, "read config")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, errors.Wrap(err, "parse config")
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	if c.Executor.Type == "" {
		c.Executor.Type = ExecutorDocker
	}
	if c.Executor.Timeout == 0 {
		c.Executor.Timeout = Duration(defaultExecTimeout)
	}
	if c.Executor.SSH.Port == 0 {
		c.Executor.SSH.Port = defaultSSHPort
	}
	if c.Compose.Output == "" {
		c.Compose.Output = defaultComposeFile
	}
	if c.Compose.Image == "" {
		c.Compose.Image = domain.DefaultImage
	}
	if c.Diagnostics.PingCount == 0 {
		c.Diagnostics.PingCount = 4
	}
	if c.Sweep.Timeout == 0 {
		c.Sweep.Timeout = Duration(defaultSweepTimeout)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks field values and cross-field requirements
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	if c.Executor.Type == ExecutorSSH {
		ssh := c.Executor.SSH
		if ssh.Host == "" || ssh.User == "" {
			return errors.New("invalid config: executor.ssh requires host and user")
		}
		if ssh.KeyPath == nil && ssh.Password == "" {
			return errors.New("invalid config: executor.ssh requires key_path or password")
		}
	}

	return nil
}

// SSHSecret builds the credentials for the SSH executor, reading the private
// key from disk when a key path is configured
func (c *Config) SSHSecret() (*domain.Secret, error) {
	ssh := c.Executor.SSH

	if ssh.KeyPath != nil {
		key, err := os.ReadFile(*ssh.KeyPath)
		if err != nil {
			return nil, errors.Wrapf(err, "read ssh key %s", *ssh.KeyPath)
		}
		return domain.NewSSHKeySecret("executor.ssh", ssh.User, string(key), ssh.Passphrase), nil
	}

	if ssh.Password != "" {
		return domain.NewSSHPasswordSecret("executor.ssh", ssh.User, ssh.Password), nil
	}

	return nil, errors.New("no ssh credentials configured")
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Executor: %s (timeout %s)\n", c.Executor.Type, c.Executor.Timeout.Duration())
	if c.Executor.Type == ExecutorSSH {
		summary += fmt.Sprintf("SSH: %s@%s:%d\n", c.Executor.SSH.User, c.Executor.SSH.Host, c.Executor.SSH.Port)
	}
	summary += fmt.Sprintf("Database: %s\n", c.Database.Path)
	summary += fmt.Sprintf("Compose: %s (image %s, strict networks %v)", c.Compose.Output, c.Compose.Image, c.Compose.Strict)
	return summary
}
