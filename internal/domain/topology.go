package domain

const (
	// ComposeVersion is the compose file format version the topology targets
	ComposeVersion = "2.4"
	// DefaultImage is the image every service runs unless overridden
	DefaultImage = "alpine"
	// BridgeDriver is the network driver used for every network
	BridgeDriver = "bridge"
)

// Topology is the compiled service and network document
type Topology struct {
	Version  string             `json:"version"`
	Services map[string]Service `json:"services"`
	Networks map[string]Network `json:"networks"`
}

// Service describes a single container
type Service struct {
	ContainerName string                    `json:"container_name"`
	Image         string                    `json:"image"`
	Command       string                    `json:"command"`
	Networks      map[string]ServiceNetwork `json:"networks"`
}

// ServiceNetwork binds a service to a network with a fixed address
type ServiceNetwork struct {
	IPv4Address string `json:"ipv4_address"`
}

// Network describes a network shared by services
type Network struct {
	Driver string `json:"driver"`
	IPAM   IPAM   `json:"ipam"`
}

// IPAM holds address management settings for a network
type IPAM struct {
	Config []IPAMConfig `json:"config"`
}

// IPAMConfig is a single subnet/gateway pool
type IPAMConfig struct {
	Subnet  string `json:"subnet"`
	Gateway string `json:"gateway"`
}

// NewTopology creates an empty topology document
func NewTopology() *Topology {
	return &Topology{
		Version:  ComposeVersion,
		Services: make(map[string]Service),
		Networks: make(map[string]Network),
	}
}

// NewBridgeNetwork creates a bridge network with a single IPAM pool
func NewBridgeNetwork(subnet, gateway string) Network {
	return Network{
		Driver: BridgeDriver,
		IPAM: IPAM{
			Config: []IPAMConfig{{Subnet: subnet, Gateway: gateway}},
		},
	}
}

// Subnet returns the first IPAM subnet, or "" if none is configured
func (n Network) Subnet() string {
	if len(n.IPAM.Config) == 0 {
		return ""
	}
	return n.IPAM.Config[0].Subnet
}

// Gateway returns the first IPAM gateway, or "" if none is configured
func (n Network) Gateway() string {
	if len(n.IPAM.Config) == 0 {
		return ""
	}
	return n.IPAM.Config[0].Gateway
}

// AddressesOn returns the service addresses bound to the named network,
// keyed by service name
func (t *Topology) AddressesOn(network string) map[string]string {
	addrs := make(map[string]string)
	for name, svc := range t.Services {
		if binding, ok := svc.Networks[network]; ok {
			addrs[name] = binding.IPv4Address
		}
	}
	return addrs
}
