package loader

import (
	"bytes"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"netlab/internal/domain"
)

// TopologyYAML represents the topology declaration file
type TopologyYAML struct {
	Networks map[string]*NetworkYAML `yaml:"networks,omitempty" validate:"dive"`
	Hosts    []HostYAML              `yaml:"hosts" validate:"dive"`
}

// NetworkYAML declares a network once so hosts can refer to it by name
type NetworkYAML struct {
	Subnet  string `yaml:"subnet" validate:"required"`
	Gateway string `yaml:"gateway" validate:"required"`
}

// HostYAML represents a host in YAML format
type HostYAML struct {
	Name     string           `yaml:"name" validate:"required"`
	Command  string           `yaml:"command,omitempty"`
	Networks []AttachmentYAML `yaml:"networks" validate:"required,min=1,dive"`
}

// AttachmentYAML attaches a host to a network. Subnet and gateway may be
// omitted when the network is declared in the top-level networks section.
type AttachmentYAML struct {
	Name    string `yaml:"name" validate:"required"`
	Address string `yaml:"address" validate:"required"`
	Subnet  string `yaml:"subnet,omitempty"`
	Gateway string `yaml:"gateway,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadYAML loads host specs from a topology declaration file
func LoadYAML(path string) ([]domain.HostSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}

	return ParseYAML(data)
}

// Parse reads host specs from a reader
func Parse(r io.Reader) ([]domain.HostSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read topology")
	}
	return ParseYAML(data)
}

// ParseYAML parses host specs from YAML bytes, preserving host and network
// order as written
func ParseYAML(data []byte) ([]domain.HostSpec, error) {
	var y TopologyYAML
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&y); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	if err := validate.Struct(&y); err != nil {
		return nil, errors.Wrap(err, "invalid topology")
	}

	return convertYAMLToHosts(&y)
}

func convertYAMLToHosts(y *TopologyYAML) ([]domain.HostSpec, error) {
	hosts := make([]domain.HostSpec, 0, len(y.Hosts))

	for _, h := range y.Hosts {
		host := domain.HostSpec{
			Name:     h.Name,
			Command:  h.Command,
			Networks: make([]domain.NetworkSpec, 0, len(h.Networks)),
		}

		for _, a := range h.Networks {
			spec := domain.NetworkSpec{
				Name:             a.Name,
				Subnet:           a.Subnet,
				Gateway:          a.Gateway,
				InterfaceAddress: a.Address,
			}

			// Fill in from the shared declaration
			if shared, ok := y.Networks[a.Name]; ok && shared != nil {
				if spec.Subnet == "" {
					spec.Subnet = shared.Subnet
				}
				if spec.Gateway == "" {
					spec.Gateway = shared.Gateway
				}
			}

			if spec.Subnet == "" || spec.Gateway == "" {
				return nil, errors.Newf("host %q: network %q has no subnet/gateway and is not declared in networks", h.Name, a.Name)
			}

			host.Networks = append(host.Networks, spec)
		}

		hosts = append(hosts, host)
	}

	return hosts, nil
}
