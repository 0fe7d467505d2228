// Package corefile parses and generates CoreDNS Corefile configuration text.
//
// A Corefile is a sequence of server blocks, each declaring the zones and
// port it serves followed by a brace-delimited list of plugin directives.
// Parsing produces a structured document; generation renders one back to
// text. Round-tripping preserves structure (zones, directives) but not
// byte-exact formatting.
package corefile

import (
	"strconv"
	"strings"
)

// Directive is one plugin line inside a server block. Block holds the raw
// text of a nested sub-block when the directive opens one; nested content is
// captured verbatim, not interpreted.
type Directive struct {
	Name  string   `json:"name"`
	Args  []string `json:"args,omitempty"`
	Block string   `json:"block,omitempty"`
}

// ServerBlock is one server declaration and its directives.
type ServerBlock struct {
	Zones      []string    `json:"zones"`
	Port       int         `json:"port"`
	Protocol   string      `json:"protocol"`
	Directives []Directive `json:"directives,omitempty"`
}

// Corefile is a parsed CoreDNS configuration. Imports and snippet
// definitions are recognized and stored but never expanded.
type Corefile struct {
	Servers  []ServerBlock     `json:"servers"`
	Imports  []string          `json:"imports,omitempty"`
	Snippets map[string]string `json:"snippets,omitempty"`
}

// Directives returns every directive across all server blocks, in document
// order. This is the walk the migration analyzers iterate.
func (c *Corefile) Directives() []Directive {
	var out []Directive
	for _, s := range c.Servers {
		out = append(out, s.Directives...)
	}
	return out
}

// HasDirective reports whether any server block carries the named directive.
func (c *Corefile) HasDirective(name string) bool {
	for _, s := range c.Servers {
		for _, d := range s.Directives {
			if d.Name == name {
				return true
			}
		}
	}
	return false
}

// parseServerDecl splits a server declaration like ".:53", "dns://.:53" or
// "example.com:5353 example.net" into zones, port and protocol.
func parseServerDecl(decl string) (zones []string, port int, protocol string) {
	port = 53
	protocol = "dns"

	if idx := strings.Index(decl, "://"); idx >= 0 {
		protocol = decl[:idx]
		decl = decl[idx+3:]
	}

	for _, part := range strings.Fields(decl) {
		if idx := strings.LastIndex(part, ":"); idx >= 0 {
			zone, portStr := part[:idx], part[idx+1:]
			if p, err := strconv.Atoi(portStr); err == nil {
				zones = append(zones, zone)
				port = p
				continue
			}
		}
		zones = append(zones, part)
	}

	if len(zones) == 0 {
		zones = []string{"."}
	}
	return zones, port, protocol
}
