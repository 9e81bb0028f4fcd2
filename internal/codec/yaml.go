package codec

import (
	"io"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"netlab/internal/domain"
)

// ComposeCodec handles docker-compose YAML import/export
type ComposeCodec struct{}

// NewComposeCodec creates a new compose codec
func NewComposeCodec() *ComposeCodec {
	return &ComposeCodec{}
}

// Format returns the codec format identifier
func (c *ComposeCodec) Format() string {
	return "compose"
}

// composeFile represents the compose file structure
type composeFile struct {
	Version  string                    `yaml:"version"`
	Services map[string]composeService `yaml:"services"`
	Networks map[string]composeNetwork `yaml:"networks"`
}

type composeService struct {
	ContainerName string                           `yaml:"container_name,omitempty"`
	Image         string                           `yaml:"image"`
	Command       string                           `yaml:"command,omitempty"`
	Networks      map[string]composeServiceNetwork `yaml:"networks,omitempty"`
}

type composeServiceNetwork struct {
	IPv4Address string `yaml:"ipv4_address"`
}

type composeNetwork struct {
	Driver string      `yaml:"driver"`
	IPAM   composeIPAM `yaml:"ipam"`
}

type composeIPAM struct {
	Config []composeIPAMConfig `yaml:"config"`
}

type composeIPAMConfig struct {
	Subnet  string `yaml:"subnet"`
	Gateway string `yaml:"gateway"`
}

// Parse reads a compose file back into a topology
func (c *ComposeCodec) Parse(r io.Reader) (*domain.Topology, error) {
	var cf composeFile
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&cf); err != nil {
		return nil, errors.Wrap(err, "failed to parse compose YAML")
	}

	topo := domain.NewTopology()
	if cf.Version != "" {
		topo.Version = cf.Version
	}

	for name, cs := range cf.Services {
		svc := domain.Service{
			ContainerName: cs.ContainerName,
			Image:         cs.Image,
			Command:       cs.Command,
			Networks:      make(map[string]domain.ServiceNetwork, len(cs.Networks)),
		}
		for network, binding := range cs.Networks {
			svc.Networks[network] = domain.ServiceNetwork{IPv4Address: binding.IPv4Address}
		}
		topo.Services[name] = svc
	}

	for name, cn := range cf.Networks {
		network := domain.Network{Driver: cn.Driver}
		for _, pool := range cn.IPAM.Config {
			network.IPAM.Config = append(network.IPAM.Config, domain.IPAMConfig{
				Subnet:  pool.Subnet,
				Gateway: pool.Gateway,
			})
		}
		topo.Networks[name] = network
	}

	return topo, nil
}

// Export writes the topology as a compose file. Map keys are emitted in
// sorted order so the output is stable.
func (c *ComposeCodec) Export(topo *domain.Topology, w io.Writer) error {
	cf := composeFile{
		Version:  topo.Version,
		Services: make(map[string]composeService, len(topo.Services)),
		Networks: make(map[string]composeNetwork, len(topo.Networks)),
	}

	for name, svc := range topo.Services {
		cs := composeService{
			ContainerName: svc.ContainerName,
			Image:         svc.Image,
			Command:       svc.Command,
		}
		if len(svc.Networks) > 0 {
			cs.Networks = make(map[string]composeServiceNetwork, len(svc.Networks))
			for network, binding := range svc.Networks {
				cs.Networks[network] = composeServiceNetwork{IPv4Address: binding.IPv4Address}
			}
		}
		cf.Services[name] = cs
	}

	for name, network := range topo.Networks {
		cn := composeNetwork{Driver: network.Driver}
		for _, pool := range network.IPAM.Config {
			cn.IPAM.Config = append(cn.IPAM.Config, composeIPAMConfig{
				Subnet:  pool.Subnet,
				Gateway: pool.Gateway,
			})
		}
		cf.Networks[name] = cn
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&cf); err != nil {
		return errors.Wrap(err, "failed to encode compose YAML")
	}

	return nil
}
