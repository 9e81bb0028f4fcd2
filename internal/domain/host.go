package domain

// DefaultCommand keeps a unit alive so diagnostics can be executed inside it
const DefaultCommand = "tail -f /dev/null"

// NetworkSpec describes a network attachment of a single host.
// Entries sharing a Name describe the same logical network and are expected
// to agree on Subnet and Gateway; InterfaceAddress is per host.
type NetworkSpec struct {
	Name             string `json:"name" yaml:"name"`
	Subnet           string `json:"subnet" yaml:"subnet"`
	Gateway          string `json:"gateway" yaml:"gateway"`
	InterfaceAddress string `json:"interface_address" yaml:"interface_address"`
}

// HostSpec describes a unit to be provisioned
type HostSpec struct {
	Name     string        `json:"name" yaml:"name"`
	Command  string        `json:"command,omitempty" yaml:"command,omitempty"`
	Networks []NetworkSpec `json:"networks" yaml:"networks"`
}

// EffectiveCommand returns the declared command or DefaultCommand when empty
func (h HostSpec) EffectiveCommand() string {
	if h.Command == "" {
		return DefaultCommand
	}
	return h.Command
}

// SameSegment reports whether two specs agree on the shared network fields
func (n NetworkSpec) SameSegment(other NetworkSpec) bool {
	return n.Name == other.Name && n.Subnet == other.Subnet && n.Gateway == other.Gateway
}
