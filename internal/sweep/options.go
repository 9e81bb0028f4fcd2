package sweep

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Option is a functional option for configuring a Sweeper
type Option func(*Sweeper)

// WithTimeout bounds each subnet scan
func WithTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		s.timeout = d
	}
}

// WithPorts probes the given ports on live hosts instead of a plain ping scan.
// Format: "80,443,8080" or "1-1000" or "22,80-443,8080". Invalid ranges are
// ignored.
func WithPorts(ports string) Option {
	return func(s *Sweeper) {
		if validated, err := parsePorts(ports); err == nil {
			s.ports = validated
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger.Named("sweep")
		}
	}
}

func withScanFunc(fn scanFunc) Option {
	return func(s *Sweeper) {
		s.scan = fn
	}
}

func withClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

// parsePorts validates a port list in nmap format
func parsePorts(portRange string) (string, error) {
	if strings.TrimSpace(portRange) == "" {
		return "", errors.New("empty port range")
	}

	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := parsePort(lo)
			if err != nil {
				return "", err
			}
			end, err := parsePort(hi)
			if err != nil {
				return "", err
			}
			if end < start {
				return "", errors.Newf("invalid port range: %s", part)
			}
			continue
		}
		if _, err := parsePort(part); err != nil {
			return "", err
		}
	}
	return portRange, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 1 || port > 65535 {
		return 0, errors.Newf("invalid port number: %s", s)
	}
	return port, nil
}
