// Package domain holds the core data model shared by the configuration
// parsers, migrators, and resolver comparison engines. Types here carry no
// dependencies on infrastructure; they are plain values with constructors
// and validation.
package domain

import "fmt"

// ResolverType identifies one of the two supported DNS resolver daemons.
type ResolverType string

const (
	ResolverCoreDNS ResolverType = "coredns"
	ResolverUnbound ResolverType = "unbound"
)

// IsValid returns true if the ResolverType is a known resolver.
func (r ResolverType) IsValid() bool {
	return r == ResolverCoreDNS || r == ResolverUnbound
}

// String returns the resolver name as used in logs and serialized plans.
func (r ResolverType) String() string {
	return string(r)
}

// ParseResolverType converts a string into a ResolverType.
func ParseResolverType(s string) (ResolverType, error) {
	switch s {
	case "coredns":
		return ResolverCoreDNS, nil
	case "unbound":
		return ResolverUnbound, nil
	default:
		return "", fmt.Errorf("unknown resolver type: %q", s)
	}
}
