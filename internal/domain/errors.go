package domain

import "fmt"

// DuplicateHostError is returned when two host specs share a name
type DuplicateHostError struct {
	Name string
}

func (e *DuplicateHostError) Error() string {
	return fmt.Sprintf("duplicate host %q", e.Name)
}

// InvalidHostError is returned for a host that cannot be compiled
type InvalidHostError struct {
	Host   string
	Reason string
}

func (e *InvalidHostError) Error() string {
	return fmt.Sprintf("invalid host %q: %s", e.Host, e.Reason)
}

// InvalidNetworkError is returned for a malformed or out-of-subnet address
type InvalidNetworkError struct {
	Host    string
	Network string
	Field   string // subnet, gateway, interface_address or name
	Value   string
	Reason  string
	Err     error
}

func (e *InvalidNetworkError) Error() string {
	msg := fmt.Sprintf("host %q network %q: invalid %s %q: %s", e.Host, e.Network, e.Field, e.Value, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidNetworkError) Unwrap() error {
	return e.Err
}

// NetworkConflictError is returned in strict mode when two hosts declare the
// same network with a different subnet or gateway
type NetworkConflictError struct {
	Network string
	Host    string
	Want    NetworkSpec
	Got     NetworkSpec
}

func (e *NetworkConflictError) Error() string {
	return fmt.Sprintf("network %q redeclared by host %q as %s via %s, previously %s via %s",
		e.Network, e.Host, e.Got.Subnet, e.Got.Gateway, e.Want.Subnet, e.Want.Gateway)
}
