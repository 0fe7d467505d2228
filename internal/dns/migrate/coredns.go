package migrate

import (
	"fmt"
	"strings"

	"github.com/haukened/rr-shift/internal/dns/conf/corefile"
	"github.com/haukened/rr-shift/internal/dns/conf/unbound"
	"github.com/haukened/rr-shift/internal/dns/domain"
)

// CoreDNSToUnbound translates Corefiles into unbound.conf.
type CoreDNSToUnbound struct{}

func (CoreDNSToUnbound) SourceType() domain.ResolverType { return domain.ResolverCoreDNS }
func (CoreDNSToUnbound) TargetType() domain.ResolverType { return domain.ResolverUnbound }

// unboundEmitter translates one Corefile directive into attributes on the
// structured Unbound config under construction.
type unboundEmitter func(cfg *unbound.Config, d corefile.Directive)

// corednsEmitters holds the per-feature conversion logic. Directives mapped
// in the analysis table but absent here (acl, hosts, prometheus) need manual
// translation; the analysis warnings say so.
var corednsEmitters = map[string]unboundEmitter{
	"forward": emitForwardZone,
	"cache": func(cfg *unbound.Config, _ corefile.Directive) {
		// CoreDNS cache capacity is TTL-based, not byte-based; start from
		// a sane default size
		cfg.Server.Set("msg-cache-size", "4m")
		cfg.Server.Set("rrset-cache-size", "4m")
	},
	"log": func(cfg *unbound.Config, _ corefile.Directive) {
		cfg.Server.Set("log-queries", "yes")
	},
	"errors": func(cfg *unbound.Config, _ corefile.Directive) {
		cfg.Server.Set("log-servfail", "yes")
	},
	"dnssec": func(cfg *unbound.Config, _ corefile.Directive) {
		cfg.Server.Set("auto-trust-anchor-file", "/var/lib/unbound/root.key")
	},
	"loadbalance": func(cfg *unbound.Config, _ corefile.Directive) {
		cfg.Server.Set("rrset-roundrobin", "yes")
	},
	"loop": func(cfg *unbound.Config, _ corefile.Directive) {
		cfg.Server.Set("harden-glue", "yes")
		cfg.Server.Set("harden-dnssec-stripped", "yes")
	},
	"bind": func(cfg *unbound.Config, d corefile.Directive) {
		for _, addr := range d.Args {
			cfg.Server.Add("interface", addr)
		}
	},
}

// emitForwardZone converts one forward directive into a forward-zone clause.
// TLS upstreams (tls://host) become forward-addr host@853 with
// forward-tls-upstream enabled.
func emitForwardZone(cfg *unbound.Config, d corefile.Directive) {
	if len(d.Args) == 0 {
		return
	}
	zone := d.Args[0]
	upstreams := d.Args[1:]
	if len(upstreams) == 0 {
		upstreams = []string{"8.8.8.8"}
	}

	fz := unbound.NewSection()
	fz.Add("name", zone)
	tls := false
	for _, up := range upstreams {
		if addr, ok := strings.CutPrefix(up, "tls://"); ok {
			fz.Add("forward-addr", addr+"@853")
			tls = true
		} else {
			fz.Add("forward-addr", up)
		}
	}
	if tls {
		fz.Add("forward-tls-upstream", "yes")
	}
	cfg.ForwardZones = append(cfg.ForwardZones, fz)
}

// AnalyzeConfig walks every directive in document order and looks it up in
// the mapping table. Unmapped directives are unsupported. A kubernetes
// directive additionally gets a fixed warning about external sync, since no
// Unbound-side configuration can replace it.
func (CoreDNSToUnbound) AnalyzeConfig(config string) (Analysis, error) {
	cf, err := corefile.Parse(config)
	if err != nil {
		return Analysis{}, err
	}

	var features []string
	for _, d := range cf.Directives() {
		features = append(features, d.Name)
	}
	a := analyzeFeatures(features, corednsToUnbound, "No known Unbound equivalent")

	if cf.HasDirective("kubernetes") {
		a.Warnings = append(a.Warnings,
			"Kubernetes plugin detected. You'll need to set up external DNS sync "+
				"or use k8s_gateway/external-dns with Unbound.")
	}
	return a, nil
}

// GenerateTargetConfig builds an unbound.conf from a Corefile. Same input
// always yields identical output; only the leading provenance header is
// outside the structured document.
func (m CoreDNSToUnbound) GenerateTargetConfig(config string) (string, error) {
	cf, err := corefile.Parse(config)
	if err != nil {
		return "", err
	}

	cfg := unbound.NewConfig()
	for _, srv := range cf.Servers {
		cfg.Server.Set("port", fmt.Sprintf("%d", srv.Port))
	}
	cfg.Server.Set("interface", "0.0.0.0")
	cfg.Server.Add("access-control", "0.0.0.0/0 allow")
	cfg.Server.Add("access-control", "::0/0 allow")

	for _, d := range cf.Directives() {
		if emit, ok := corednsEmitters[d.Name]; ok {
			emit(cfg, d)
		}
	}

	header := "# Generated by rr-shift\n# Source: CoreDNS Corefile\n\n"
	return header + unbound.Generate(cfg), nil
}

// GenerateMigrationSteps returns the fixed CoreDNS-to-Unbound step template
// with the config texts embedded.
func (CoreDNSToUnbound) GenerateMigrationSteps(sourceConfig, targetConfig string) []domain.MigrationStep {
	return []domain.MigrationStep{
		{Order: 0, Action: "backup_config", Description: "Backup current CoreDNS configuration",
			SourceConfig: sourceConfig, Reversible: true},
		{Order: 1, Action: "validate_source", Description: "Validate current CoreDNS is healthy",
			Reversible: true},
		{Order: 2, Action: "write_target_config", Description: "Write Unbound configuration file",
			TargetConfig: targetConfig, Reversible: true},
		{Order: 3, Action: "start_target", Description: "Start Unbound service", Reversible: true},
		{Order: 4, Action: "validate_parallel", Description: "Run parallel validation (both resolvers active)",
			Reversible: true},
		{Order: 5, Action: "switch_traffic", Description: "Switch DNS traffic to Unbound",
			Reversible: true, ManualRequired: true},
		{Order: 6, Action: "monitor", Description: "Monitor Unbound for stability (shadow mode)",
			Reversible: true},
		{Order: 7, Action: "stop_source", Description: "Stop CoreDNS service", Reversible: true},
		{Order: 8, Action: "cleanup", Description: "Clean up old CoreDNS configuration (optional)",
			Reversible: false},
	}
}
