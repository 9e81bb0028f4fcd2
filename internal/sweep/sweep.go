// Package sweep checks which declared lab addresses answer on the wire.
//
// Each network subnet in a compiled topology is ping-scanned with nmap and
// the live hosts are matched back to the interface addresses the topology
// assigned. Addresses nmap did not see are reported down.
package sweep

import (
	"context"
	"net/netip"
	"sort"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"netlab/internal/domain"
)

// AddressStatus is the sweep outcome for one host interface
type AddressStatus struct {
	Host      string `json:"host"`
	Address   string `json:"address"`
	Up        bool   `json:"up"`
	Hostname  string `json:"hostname,omitempty"`
	MAC       string `json:"mac,omitempty"`
	OpenPorts []int  `json:"open_ports,omitempty"`
}

// Report covers one network of the topology
type Report struct {
	Network   string          `json:"network"`
	Subnet    string          `json:"subnet"`
	Addresses []AddressStatus `json:"addresses"`
	Strays    []string        `json:"strays,omitempty"` // live addresses no host declares
	ScannedAt time.Time       `json:"scanned_at"`
	Duration  time.Duration   `json:"duration"`
}

// scanFunc runs one nmap scan against a target
type scanFunc func(ctx context.Context, target string) (*nmap.Run, error)

// Sweeper runs nmap ping sweeps over topology networks
type Sweeper struct {
	timeout time.Duration
	ports   string
	logger  *zap.Logger
	scan    scanFunc
	now     func() time.Time
}

// New creates a sweeper
func New(opts ...Option) *Sweeper {
	s := &Sweeper{
		timeout: 2 * time.Minute,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scan == nil {
		s.scan = s.runNmap
	}
	return s
}

// Available reports whether the nmap binary can be run
func Available(ctx context.Context) bool {
	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets("localhost"),
		nmap.WithListScan(),
	)
	if err != nil {
		return false
	}
	_, _, err = scanner.Run()
	return err == nil
}

// Sweep scans every network of topo in name order. A failed scan aborts the
// sweep; reports for networks already scanned are returned with the error.
func (s *Sweeper) Sweep(ctx context.Context, topo *domain.Topology) ([]Report, error) {
	if topo == nil {
		return nil, errors.New("nil topology")
	}

	names := make([]string, 0, len(topo.Networks))
	for name := range topo.Networks {
		names = append(names, name)
	}
	sort.Strings(names)

	reports := make([]Report, 0, len(names))
	for _, name := range names {
		subnet := topo.Networks[name].Subnet()
		if _, err := netip.ParsePrefix(subnet); err != nil {
			return reports, errors.Wrapf(err, "network %s has no usable subnet", name)
		}

		report, err := s.sweepNetwork(ctx, name, subnet, topo.AddressesOn(name))
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}

func (s *Sweeper) sweepNetwork(ctx context.Context, name, subnet string, declared map[string]string) (Report, error) {
	logger := s.logger.With(zap.String("network", name), zap.String("subnet", subnet))
	logger.Info("sweeping network", zap.Int("declared", len(declared)))

	start := s.now()
	result, err := s.scan(ctx, subnet)
	if err != nil {
		return Report{}, errors.Wrapf(err, "sweep %s (%s)", name, subnet)
	}

	live, err := liveHosts(result)
	if err != nil {
		return Report{}, errors.Wrapf(err, "sweep %s (%s)", name, subnet)
	}

	report := Report{
		Network:   name,
		Subnet:    subnet,
		Addresses: make([]AddressStatus, 0, len(declared)),
		ScannedAt: start,
		Duration:  s.now().Sub(start),
	}

	hosts := make([]string, 0, len(declared))
	for host := range declared {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	claimed := make(map[string]bool, len(declared))
	for _, host := range hosts {
		addr := declared[host]
		claimed[addr] = true

		status := AddressStatus{Host: host, Address: addr}
		if seen, ok := live[addr]; ok {
			status.Up = true
			status.Hostname = seen.Hostname
			status.MAC = seen.MAC
			status.OpenPorts = seen.OpenPorts
		}
		if !status.Up {
			logger.Warn("address not answering", zap.String("host", host), zap.String("address", addr))
		}
		report.Addresses = append(report.Addresses, status)
	}

	for addr := range live {
		if !claimed[addr] {
			report.Strays = append(report.Strays, addr)
		}
	}
	sort.Strings(report.Strays)

	logger.Info("sweep complete",
		zap.Int("live", len(live)),
		zap.Int("strays", len(report.Strays)),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// runNmap ping-scans target, probing ports as well when configured
func (s *Sweeper) runNmap(ctx context.Context, target string) (*nmap.Run, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	opts := []nmap.Option{nmap.WithTargets(target)}
	if s.ports != "" {
		opts = append(opts, nmap.WithPorts(s.ports))
	} else {
		opts = append(opts, nmap.WithPingScan())
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scanner")
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, errors.Wrap(err, "scan failed")
	}
	if warnings != nil && len(*warnings) > 0 {
		s.logger.Warn("nmap warnings", zap.String("target", target), zap.Strings("warnings", *warnings))
	}

	return result, nil
}
