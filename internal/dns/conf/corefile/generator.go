package corefile

import (
	"fmt"
	"sort"
	"strings"
)

// Generate renders a structured Corefile back to configuration text.
// Output is deterministic: snippets are emitted in sorted order, everything
// else in document order.
func Generate(cf *Corefile) string {
	var b strings.Builder

	for _, imp := range cf.Imports {
		fmt.Fprintf(&b, "import %s\n", imp)
	}
	if len(cf.Imports) > 0 {
		b.WriteString("\n")
	}

	names := make([]string, 0, len(cf.Snippets))
	for name := range cf.Snippets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "(%s) {\n", name)
		for _, line := range strings.Split(cf.Snippets[name], "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
		b.WriteString("}\n\n")
	}

	for _, srv := range cf.Servers {
		b.WriteString(serverDecl(srv))
		b.WriteString(" {\n")
		for _, d := range srv.Directives {
			writeDirective(&b, d)
		}
		b.WriteString("}\n\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// serverDecl renders a server declaration line. Only the first zone carries
// the port; additional zones inherit it.
func serverDecl(srv ServerBlock) string {
	zones := srv.Zones
	if len(zones) == 0 {
		zones = []string{"."}
	}
	port := srv.Port
	if port == 0 {
		port = 53
	}

	if srv.Protocol != "" && srv.Protocol != "dns" {
		return fmt.Sprintf("%s://%s:%d", srv.Protocol, zones[0], port)
	}

	parts := make([]string, len(zones))
	for i, z := range zones {
		if i == 0 {
			parts[i] = fmt.Sprintf("%s:%d", z, port)
		} else {
			parts[i] = z
		}
	}
	return strings.Join(parts, " ")
}

func writeDirective(b *strings.Builder, d Directive) {
	line := d.Name
	if len(d.Args) > 0 {
		line += " " + strings.Join(d.Args, " ")
	}
	if d.Block == "" {
		fmt.Fprintf(b, "    %s\n", line)
		return
	}
	fmt.Fprintf(b, "    %s {\n", line)
	for _, bl := range strings.Split(strings.TrimSpace(d.Block), "\n") {
		fmt.Fprintf(b, "        %s\n", strings.TrimSpace(bl))
	}
	b.WriteString("    }\n")
}
