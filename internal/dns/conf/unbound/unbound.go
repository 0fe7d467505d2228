// Package unbound parses and generates unbound.conf configuration text.
//
// An unbound.conf is a flat sequence of clause headers (server:,
// forward-zone:, remote-control:, ...) each followed by indented
// "key: value" attribute lines. Attributes repeat freely, so sections are
// modeled as ordered multimaps. Round-tripping preserves attributes and
// their order but not comments or byte-exact formatting.
package unbound

// Config is a parsed unbound.conf. Server and RemoteControl appear at most
// once (repeated headers merge); zone clauses and views repeat. Anything
// else lands in Other keyed by clause name.
type Config struct {
	Server        *Section
	RemoteControl *Section
	ForwardZones  []*Section
	StubZones     []*Section
	AuthZones     []*Section
	Views         []*Section
	Other         map[string]*Section
}

// NewConfig returns an empty configuration with an allocated server section.
func NewConfig() *Config {
	return &Config{
		Server: NewSection(),
		Other:  map[string]*Section{},
	}
}

// DefaultConfig returns a conservative recursive-resolver baseline, the
// starting point migrators extend with translated settings.
func DefaultConfig() *Config {
	cfg := NewConfig()
	s := cfg.Server
	s.Add("verbosity", "1")
	s.Add("interface", "0.0.0.0")
	s.Add("port", "53")
	s.Add("do-ip4", "yes")
	s.Add("do-ip6", "yes")
	s.Add("do-udp", "yes")
	s.Add("do-tcp", "yes")
	s.Add("access-control", "127.0.0.0/8 allow")
	s.Add("hide-identity", "yes")
	s.Add("hide-version", "yes")
	s.Add("harden-glue", "yes")
	s.Add("harden-dnssec-stripped", "yes")
	s.Add("prefetch", "yes")
	s.Add("qname-minimisation", "yes")
	return cfg
}

// section returns the destination for attributes under the named clause
// header, creating or merging as the clause type requires.
func (c *Config) section(name string) *Section {
	switch name {
	case "server":
		if c.Server == nil {
			c.Server = NewSection()
		}
		return c.Server
	case "remote-control":
		if c.RemoteControl == nil {
			c.RemoteControl = NewSection()
		}
		return c.RemoteControl
	case "forward-zone":
		s := NewSection()
		c.ForwardZones = append(c.ForwardZones, s)
		return s
	case "stub-zone":
		s := NewSection()
		c.StubZones = append(c.StubZones, s)
		return s
	case "auth-zone":
		s := NewSection()
		c.AuthZones = append(c.AuthZones, s)
		return s
	case "view":
		s := NewSection()
		c.Views = append(c.Views, s)
		return s
	default:
		if c.Other == nil {
			c.Other = map[string]*Section{}
		}
		if s, ok := c.Other[name]; ok {
			return s
		}
		s := NewSection()
		c.Other[name] = s
		return s
	}
}
