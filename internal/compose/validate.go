package compose

import (
	"fmt"
	"net/netip"
	"reflect"

	"github.com/go-playground/validator/v10"

	"netlab/internal/domain"
)

// networkFields mirrors domain.NetworkSpec for shape validation
type networkFields struct {
	Name             string `field:"name" validate:"required"`
	Subnet           string `field:"subnet" validate:"required,cidrv4"`
	Gateway          string `field:"gateway" validate:"required,ipv4"`
	InterfaceAddress string `field:"interface_address" validate:"required,ipv4"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("field")
	})
	return v
}

// validateNetwork checks address syntax and subnet membership
func validateNetwork(host string, n domain.NetworkSpec) error {
	fields := networkFields{
		Name:             n.Name,
		Subnet:           n.Subnet,
		Gateway:          n.Gateway,
		InterfaceAddress: n.InterfaceAddress,
	}
	if err := validate.Struct(fields); err != nil {
		return shapeError(host, n, err)
	}

	invalid := func(field, value, reason string, err error) error {
		return &domain.InvalidNetworkError{
			Host:    host,
			Network: n.Name,
			Field:   field,
			Value:   value,
			Reason:  reason,
			Err:     err,
		}
	}

	prefix, err := netip.ParsePrefix(n.Subnet)
	if err != nil {
		return invalid("subnet", n.Subnet, "not an IPv4 CIDR", err)
	}
	if prefix.Masked() != prefix {
		return invalid("subnet", n.Subnet, fmt.Sprintf("host bits set, expected %s", prefix.Masked()), nil)
	}

	gateway, err := netip.ParseAddr(n.Gateway)
	if err != nil {
		return invalid("gateway", n.Gateway, "not an IPv4 address", err)
	}
	gateway = gateway.Unmap()
	if !prefix.Contains(gateway) {
		return invalid("gateway", n.Gateway, "not in subnet "+n.Subnet, nil)
	}

	addr, err := netip.ParseAddr(n.InterfaceAddress)
	if err != nil {
		return invalid("interface_address", n.InterfaceAddress, "not an IPv4 address", err)
	}
	addr = addr.Unmap()
	if !prefix.Contains(addr) {
		return invalid("interface_address", n.InterfaceAddress, "not in subnet "+n.Subnet, nil)
	}
	if addr == gateway {
		return invalid("interface_address", n.InterfaceAddress, "equals the gateway", nil)
	}

	return nil
}

// shapeError converts the first validator failure into an InvalidNetworkError
func shapeError(host string, n domain.NetworkSpec, err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &domain.InvalidNetworkError{Host: host, Network: n.Name, Reason: "validation failed", Err: err}
	}

	fe := verrs[0]
	reason := "failed " + fe.Tag()
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "cidrv4":
		reason = "not an IPv4 CIDR"
	case "ipv4":
		reason = "not an IPv4 address"
	}

	return &domain.InvalidNetworkError{
		Host:    host,
		Network: n.Name,
		Field:   fe.Field(),
		Value:   fmt.Sprint(fe.Value()),
		Reason:  reason,
	}
}
