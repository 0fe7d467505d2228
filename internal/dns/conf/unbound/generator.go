package unbound

import (
	"fmt"
	"sort"
	"strings"
)

// quotedKeys always take a quoted value in generated output, matching the
// style of unbound's shipped example configuration.
var quotedKeys = map[string]struct{}{
	"name": {}, "zonefile": {}, "logfile": {}, "directory": {},
	"pidfile": {}, "chroot": {}, "username": {}, "root-hints": {},
	"auto-trust-anchor-file": {}, "trust-anchor-file": {},
	"tls-cert-bundle": {}, "server-key-file": {}, "server-cert-file": {},
	"control-key-file": {}, "control-cert-file": {},
}

// Generate renders a Config back to unbound.conf text. Sections are emitted
// in a fixed order (server, remote-control, zones, views, then any other
// clauses sorted by name) so output is deterministic.
func Generate(c *Config) string {
	var b strings.Builder

	if c.Server != nil && c.Server.Len() > 0 {
		writeSection(&b, "server", c.Server)
	}
	if c.RemoteControl != nil && c.RemoteControl.Len() > 0 {
		writeSection(&b, "remote-control", c.RemoteControl)
	}
	for _, z := range c.ForwardZones {
		writeSection(&b, "forward-zone", z)
	}
	for _, z := range c.StubZones {
		writeSection(&b, "stub-zone", z)
	}
	for _, z := range c.AuthZones {
		writeSection(&b, "auth-zone", z)
	}
	for _, v := range c.Views {
		writeSection(&b, "view", v)
	}

	names := make([]string, 0, len(c.Other))
	for name := range c.Other {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeSection(&b, name, c.Other[name])
	}

	return b.String()
}

func writeSection(b *strings.Builder, name string, s *Section) {
	fmt.Fprintf(b, "%s:\n", name)
	for _, e := range s.entries {
		fmt.Fprintf(b, "    %s: %s\n", e.key, renderValue(e.key, e.value))
	}
	b.WriteString("\n")
}

// renderValue quotes values for path-like keys and for anything containing
// whitespace, so generated files re-parse to the same attributes.
func renderValue(key, value string) string {
	if _, ok := quotedKeys[key]; ok {
		return fmt.Sprintf("%q", value)
	}
	if strings.ContainsAny(value, " \t") && key != "access-control" &&
		key != "local-zone" && key != "private-address" {
		return fmt.Sprintf("%q", value)
	}
	return value
}
