package sweep

import (
	"strings"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/cockroachdb/errors"
)

// liveHost is what nmap reported about one answering address
type liveHost struct {
	Hostname  string
	MAC       string
	OpenPorts []int
}

// liveHosts indexes the hosts nmap saw up by IPv4 address
func liveHosts(result *nmap.Run) (map[string]liveHost, error) {
	if result == nil {
		return nil, errors.New("nil scan result")
	}

	live := make(map[string]liveHost)
	for _, host := range result.Hosts {
		if host.Status.State != "up" {
			continue
		}

		var ip string
		var seen liveHost
		for _, addr := range host.Addresses {
			switch addr.AddrType {
			case "ipv4":
				if ip == "" {
					ip = addr.Addr
				}
			case "mac":
				seen.MAC = strings.ToUpper(addr.Addr)
			}
		}
		if ip == "" {
			continue
		}

		if len(host.Hostnames) > 0 {
			seen.Hostname = host.Hostnames[0].Name
		}
		seen.OpenPorts = openPorts(host.Ports)

		live[ip] = seen
	}

	return live, nil
}

// openPorts extracts the open port numbers
func openPorts(ports []nmap.Port) []int {
	var open []int
	for _, port := range ports {
		if port.State.State == "open" {
			open = append(open, int(port.ID))
		}
	}
	return open
}
