// Package compose compiles host and network declarations into a topology
// document suitable for a docker-compose file.
//
// Compile is pure: it never touches the container runtime or the file
// system, and holds no state between calls. Services are keyed by host name;
// networks are keyed by network name and the last declaration of a network
// wins unless WithStrictNetworks is given.
package compose

import (
	"netlab/internal/domain"
)

// Option configures a compilation
type Option func(*compiler)

// WithImage overrides the image used for every service
func WithImage(image string) Option {
	return func(c *compiler) {
		if image != "" {
			c.image = image
		}
	}
}

// WithStrictNetworks rejects hosts that redeclare a network with a different
// subnet or gateway instead of letting the last declaration win
func WithStrictNetworks() Option {
	return func(c *compiler) {
		c.strict = true
	}
}

type compiler struct {
	image  string
	strict bool
}

// Compile converts host specs into a topology document.
// An empty host list yields an empty document. Any invalid host aborts the
// whole compilation; no partial document is returned.
func Compile(hosts []domain.HostSpec, opts ...Option) (*domain.Topology, error) {
	c := &compiler{image: domain.DefaultImage}
	for _, opt := range opts {
		opt(c)
	}
	return c.compile(hosts)
}

func (c *compiler) compile(hosts []domain.HostSpec) (*domain.Topology, error) {
	topo := domain.NewTopology()

	// first declaration of each network, used for strict comparison
	declared := make(map[string]domain.NetworkSpec)

	for _, host := range hosts {
		if host.Name == "" {
			return nil, &domain.InvalidHostError{Host: host.Name, Reason: "name is required"}
		}
		if _, exists := topo.Services[host.Name]; exists {
			return nil, &domain.DuplicateHostError{Name: host.Name}
		}
		if len(host.Networks) == 0 {
			return nil, &domain.InvalidHostError{Host: host.Name, Reason: "must attach to at least one network"}
		}

		svc := domain.Service{
			ContainerName: host.Name,
			Image:         c.image,
			Command:       host.EffectiveCommand(),
			Networks:      make(map[string]domain.ServiceNetwork, len(host.Networks)),
		}

		for _, network := range host.Networks {
			if err := validateNetwork(host.Name, network); err != nil {
				return nil, err
			}
			if _, attached := svc.Networks[network.Name]; attached {
				return nil, &domain.InvalidNetworkError{
					Host:    host.Name,
					Network: network.Name,
					Field:   "name",
					Value:   network.Name,
					Reason:  "attached more than once",
				}
			}

			if first, ok := declared[network.Name]; ok {
				if c.strict && !first.SameSegment(network) {
					return nil, &domain.NetworkConflictError{
						Network: network.Name,
						Host:    host.Name,
						Want:    first,
						Got:     network,
					}
				}
			} else {
				declared[network.Name] = network
			}

			svc.Networks[network.Name] = domain.ServiceNetwork{IPv4Address: network.InterfaceAddress}
			topo.Networks[network.Name] = domain.NewBridgeNetwork(network.Subnet, network.Gateway)
		}

		topo.Services[host.Name] = svc
	}

	return topo, nil
}
