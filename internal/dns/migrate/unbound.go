package migrate

import (
	"strconv"
	"strings"

	"github.com/haukened/rr-shift/internal/dns/conf/corefile"
	"github.com/haukened/rr-shift/internal/dns/conf/unbound"
	"github.com/haukened/rr-shift/internal/dns/domain"
)

// UnboundToCoreDNS translates unbound.conf into Corefiles.
type UnboundToCoreDNS struct{}

func (UnboundToCoreDNS) SourceType() domain.ResolverType { return domain.ResolverUnbound }
func (UnboundToCoreDNS) TargetType() domain.ResolverType { return domain.ResolverCoreDNS }

// AnalyzeConfig looks up every distinct server option plus the zone and
// remote-control clauses present. Unmapped server options are ordinary
// tuning knobs with no CoreDNS meaning, so they are skipped rather than
// reported as unsupported.
func (UnboundToCoreDNS) AnalyzeConfig(config string) (Analysis, error) {
	cfg, err := unbound.Parse(config)
	if err != nil {
		return Analysis{}, err
	}

	features := cfg.Server.Keys()
	if len(cfg.ForwardZones) > 0 {
		features = append(features, "forward-zone")
	}
	if len(cfg.StubZones) > 0 {
		features = append(features, "stub-zone")
	}
	if len(cfg.AuthZones) > 0 {
		features = append(features, "auth-zone")
	}
	if cfg.RemoteControl != nil && cfg.RemoteControl.Len() > 0 {
		features = append(features, "remote-control")
	}

	a := analyzeFeatures(features, unboundToCoreDNS, "")

	if cfg.RemoteControl != nil && cfg.RemoteControl.Len() > 0 {
		a.Warnings = append(a.Warnings,
			"remote-control section found. CoreDNS doesn't have equivalent. "+
				"Consider using kubectl/API for control.")
	}
	return a, nil
}

// GenerateTargetConfig builds a single-server Corefile from an unbound.conf.
func (m UnboundToCoreDNS) GenerateTargetConfig(config string) (string, error) {
	cfg, err := unbound.Parse(config)
	if err != nil {
		return "", err
	}

	cf := &corefile.Corefile{
		Servers: []corefile.ServerBlock{m.buildServerBlock(cfg)},
	}
	header := "# Generated by rr-shift\n# Source: unbound.conf\n\n"
	return header + corefile.Generate(cf), nil
}

// buildServerBlock assembles the directive list. CoreDNS deployments lean on
// a standard plugin baseline (errors, health, ready, loop, reload,
// prometheus) that Unbound has no notion of, so those are always included.
func (UnboundToCoreDNS) buildServerBlock(cfg *unbound.Config) corefile.ServerBlock {
	port := 53
	if v, ok := cfg.Server.Get("port"); ok {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}

	var directives []corefile.Directive
	directives = append(directives,
		corefile.Directive{Name: "errors"},
		corefile.Directive{Name: "health"},
		corefile.Directive{Name: "ready"},
	)

	if v, _ := cfg.Server.Get("log-queries"); v == "yes" {
		directives = append(directives, corefile.Directive{Name: "log"})
	}

	// Unbound sizes its cache in bytes, CoreDNS in seconds of TTL; there is
	// no faithful conversion, so use the CoreDNS default
	directives = append(directives, corefile.Directive{Name: "cache", Args: []string{"30"}})

	if v, _ := cfg.Server.Get("rrset-roundrobin"); v == "yes" {
		directives = append(directives, corefile.Directive{Name: "loadbalance"})
	}
	if cfg.Server.Has("auto-trust-anchor-file") {
		directives = append(directives, corefile.Directive{Name: "dnssec"})
	}

	interfaces := cfg.Server.GetAll("interface")
	if len(interfaces) > 0 && !(len(interfaces) == 1 && interfaces[0] == "0.0.0.0") {
		directives = append(directives, corefile.Directive{Name: "bind", Args: interfaces})
	}

	for _, fz := range cfg.ForwardZones {
		zone, ok := fz.Get("name")
		if !ok {
			zone = "."
		}
		addrs := fz.GetAll("forward-addr")
		if tls, _ := fz.Get("forward-tls-upstream"); tls == "yes" {
			for i, addr := range addrs {
				addrs[i] = "tls://" + strings.TrimSuffix(addr, "@853")
			}
		}
		directives = append(directives, corefile.Directive{
			Name: "forward",
			Args: append([]string{zone}, addrs...),
		})
	}

	directives = append(directives,
		corefile.Directive{Name: "loop"},
		corefile.Directive{Name: "reload"},
		corefile.Directive{Name: "prometheus", Args: []string{":9153"}},
	)

	return corefile.ServerBlock{
		Zones:      []string{"."},
		Port:       port,
		Protocol:   "dns",
		Directives: directives,
	}
}

// GenerateMigrationSteps returns the fixed Unbound-to-CoreDNS step template.
// It carries one more step than the reverse direction: CoreDNS deployments
// usually sit in Kubernetes and need cluster configuration first.
func (UnboundToCoreDNS) GenerateMigrationSteps(sourceConfig, targetConfig string) []domain.MigrationStep {
	return []domain.MigrationStep{
		{Order: 0, Action: "backup_config", Description: "Backup current Unbound configuration",
			SourceConfig: sourceConfig, Reversible: true},
		{Order: 1, Action: "validate_source", Description: "Validate current Unbound is healthy",
			Reversible: true},
		{Order: 2, Action: "write_target_config", Description: "Write CoreDNS Corefile",
			TargetConfig: targetConfig, Reversible: true},
		{Order: 3, Action: "configure_k8s", Description: "Configure Kubernetes for CoreDNS (if applicable)",
			Reversible: true, ManualRequired: true},
		{Order: 4, Action: "start_target", Description: "Start CoreDNS service", Reversible: true},
		{Order: 5, Action: "validate_parallel", Description: "Run parallel validation (both resolvers active)",
			Reversible: true},
		{Order: 6, Action: "switch_traffic", Description: "Switch DNS traffic to CoreDNS",
			Reversible: true, ManualRequired: true},
		{Order: 7, Action: "monitor", Description: "Monitor CoreDNS for stability", Reversible: true},
		{Order: 8, Action: "stop_source", Description: "Stop Unbound service", Reversible: true},
		{Order: 9, Action: "cleanup", Description: "Clean up old Unbound configuration (optional)",
			Reversible: false},
	}
}
