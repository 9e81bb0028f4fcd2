package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"netlab/internal/compose"
	"netlab/internal/domain"
)

func labTopology(t *testing.T) *domain.Topology {
	t.Helper()
	topo, err := compose.Compile([]domain.HostSpec{
		{Name: "host1", Networks: []domain.NetworkSpec{
			{Name: "net1", Subnet: "10.0.1.0/24", Gateway: "10.0.1.100", InterfaceAddress: "10.0.1.1"},
			{Name: "net2", Subnet: "10.0.2.0/24", Gateway: "10.0.2.100", InterfaceAddress: "10.0.2.1"},
		}},
		{Name: "host2", Networks: []domain.NetworkSpec{
			{Name: "net1", Subnet: "10.0.1.0/24", Gateway: "10.0.1.100", InterfaceAddress: "10.0.1.2"},
		}},
	})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return topo
}

func upHost(ip string, ports ...uint16) nmap.Host {
	host := nmap.Host{
		Addresses: []nmap.Address{{Addr: ip, AddrType: "ipv4"}},
		Status:    nmap.Status{State: "up"},
	}
	for _, p := range ports {
		host.Ports = append(host.Ports, nmap.Port{ID: p, Protocol: "tcp", State: nmap.State{State: "open"}})
	}
	return host
}

func fixedClock() func() time.Time {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func TestSweep(t *testing.T) {
	results := map[string]*nmap.Run{
		"10.0.1.0/24": {Hosts: []nmap.Host{
			upHost("10.0.1.1", 22),
			upHost("10.0.1.100"),
			{
				Addresses: []nmap.Address{{Addr: "10.0.1.2", AddrType: "ipv4"}},
				Status:    nmap.Status{State: "down"},
			},
		}},
		"10.0.2.0/24": {Hosts: []nmap.Host{upHost("10.0.2.1")}},
	}

	var scanned []string
	scan := func(_ context.Context, target string) (*nmap.Run, error) {
		scanned = append(scanned, target)
		return results[target], nil
	}

	s := New(withScanFunc(scan), withClock(fixedClock()))
	reports, err := s.Sweep(context.Background(), labTopology(t))
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}

	if len(scanned) != 2 || scanned[0] != "10.0.1.0/24" || scanned[1] != "10.0.2.0/24" {
		t.Errorf("scanned = %v, want subnets in network name order", scanned)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}

	net1 := reports[0]
	if net1.Network != "net1" || net1.Subnet != "10.0.1.0/24" {
		t.Errorf("report 0 = %s %s, want net1 10.0.1.0/24", net1.Network, net1.Subnet)
	}
	if len(net1.Addresses) != 2 {
		t.Fatalf("expected 2 addresses on net1, got %d", len(net1.Addresses))
	}
	if a := net1.Addresses[0]; a.Host != "host1" || a.Address != "10.0.1.1" || !a.Up {
		t.Errorf("host1 on net1 = %+v, want up", a)
	}
	if ports := net1.Addresses[0].OpenPorts; len(ports) != 1 || ports[0] != 22 {
		t.Errorf("host1 open ports = %v, want [22]", ports)
	}
	if a := net1.Addresses[1]; a.Host != "host2" || a.Up {
		t.Errorf("host2 on net1 = %+v, want down", a)
	}
	if len(net1.Strays) != 1 || net1.Strays[0] != "10.0.1.100" {
		t.Errorf("strays = %v, want [10.0.1.100]", net1.Strays)
	}

	net2 := reports[1]
	if len(net2.Addresses) != 1 || !net2.Addresses[0].Up {
		t.Errorf("net2 addresses = %+v, want host1 up", net2.Addresses)
	}
	if len(net2.Strays) != 0 {
		t.Errorf("net2 strays = %v, want none", net2.Strays)
	}
}

func TestSweepScanError(t *testing.T) {
	scanErr := errors.New("nmap exploded")
	calls := 0
	scan := func(_ context.Context, target string) (*nmap.Run, error) {
		calls++
		if target == "10.0.2.0/24" {
			return nil, scanErr
		}
		return &nmap.Run{}, nil
	}

	reports, err := New(withScanFunc(scan)).Sweep(context.Background(), labTopology(t))
	if !errors.Is(err, scanErr) {
		t.Fatalf("Sweep() error = %v, want %v", err, scanErr)
	}
	if len(reports) != 1 {
		t.Errorf("expected the net1 report before the failure, got %d", len(reports))
	}
	if calls != 2 {
		t.Errorf("expected 2 scans, got %d", calls)
	}
}

func TestSweepNilResult(t *testing.T) {
	scan := func(context.Context, string) (*nmap.Run, error) { return nil, nil }

	if _, err := New(withScanFunc(scan)).Sweep(context.Background(), labTopology(t)); err == nil {
		t.Error("expected error for nil scan result")
	}
	if _, err := New(withScanFunc(scan)).Sweep(context.Background(), nil); err == nil {
		t.Error("expected error for nil topology")
	}
}

func TestLiveHosts(t *testing.T) {
	run := &nmap.Run{Hosts: []nmap.Host{
		{
			Addresses: []nmap.Address{
				{Addr: "02:42:ac:11:00:02", AddrType: "mac"},
				{Addr: "10.0.1.1", AddrType: "ipv4"},
			},
			Hostnames: []nmap.Hostname{{Name: "host1.net1"}},
			Status:    nmap.Status{State: "up"},
		},
		{
			Addresses: []nmap.Address{{Addr: "fe80::1", AddrType: "ipv6"}},
			Status:    nmap.Status{State: "up"},
		},
		{Status: nmap.Status{State: "up"}},
	}}

	live, err := liveHosts(run)
	if err != nil {
		t.Fatalf("liveHosts() error: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("expected 1 live host, got %d", len(live))
	}
	seen := live["10.0.1.1"]
	if seen.MAC != "02:42:AC:11:00:02" {
		t.Errorf("MAC = %s, want upper-cased", seen.MAC)
	}
	if seen.Hostname != "host1.net1" {
		t.Errorf("Hostname = %s, want host1.net1", seen.Hostname)
	}
}

func TestOptions(t *testing.T) {
	s := New(WithTimeout(30*time.Second), WithPorts("22,80-443"))
	if s.timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", s.timeout)
	}
	if s.ports != "22,80-443" {
		t.Errorf("ports = %q, want 22,80-443", s.ports)
	}

	s = New(WithPorts("99999"))
	if s.ports != "" {
		t.Errorf("invalid port range should be ignored, got %q", s.ports)
	}
}

func TestParsePorts(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"80", false},
		{"80,443,8080", false},
		{"1-1000", false},
		{"22, 80-443, 8080", false},
		{"", true},
		{"0", true},
		{"65536", true},
		{"443-80", true},
		{"1-2-3", true},
		{"http", true},
	}

	for _, tt := range tests {
		_, err := parsePorts(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePorts(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
