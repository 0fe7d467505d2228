package migrate

import "github.com/haukened/rr-shift/internal/dns/domain"

// Mapping tables are immutable reference data: one entry per source feature,
// looked up by the generic analysis walk. Conversion logic that genuinely
// needs bespoke output lives in the emitter tables next to each migrator,
// never in per-feature branches inside the walk.

// corednsToUnbound maps CoreDNS plugin names to their Unbound counterparts.
var corednsToUnbound = map[string]domain.FeatureMapping{
	"forward": {
		CoreDNSPlugin:  "forward",
		UnboundFeature: "forward-zone",
		Notes:          "Direct mapping. Convert 'forward . 8.8.8.8' to forward-zone with forward-addr.",
		Supported:      true,
	},
	"cache": {
		CoreDNSPlugin:  "cache",
		UnboundFeature: "msg-cache-size / rrset-cache-size",
		Notes:          "Map cache size. TTL settings differ.",
		Supported:      true,
	},
	"log": {
		CoreDNSPlugin:  "log",
		UnboundFeature: "log-queries: yes",
		Notes:          "Enable query logging in unbound.",
		Supported:      true,
	},
	"errors": {
		CoreDNSPlugin:  "errors",
		UnboundFeature: "log-servfail: yes",
		Notes:          "Partial mapping - only logs SERVFAIL.",
		Supported:      true,
	},
	"health": {
		CoreDNSPlugin:  "health",
		Notes:          "No direct equivalent. Use external health checks.",
		Supported:      false,
		RequiresManual: true,
	},
	"ready": {
		CoreDNSPlugin:  "ready",
		Notes:          "No direct equivalent. Use external readiness checks.",
		Supported:      false,
		RequiresManual: true,
	},
	"kubernetes": {
		CoreDNSPlugin:  "kubernetes",
		UnboundFeature: "stub-zone + external sync",
		Notes:          "Complex. Requires custom solution or external sync.",
		Supported:      false,
		RequiresManual: true,
	},
	"hosts": {
		CoreDNSPlugin:  "hosts",
		UnboundFeature: "local-data",
		Notes:          "Convert hosts entries to local-data directives.",
		Supported:      true,
	},
	"file": {
		CoreDNSPlugin:  "file",
		UnboundFeature: "auth-zone",
		Notes:          "Zone files are compatible. Update path in config.",
		Supported:      true,
	},
	"reload": {
		CoreDNSPlugin:  "reload",
		UnboundFeature: "unbound-control reload",
		Notes:          "Use unbound-control for reloads instead.",
		Supported:      false,
		RequiresManual: true,
	},
	"loop": {
		CoreDNSPlugin:  "loop",
		UnboundFeature: "harden-* options",
		Notes:          "Different approach to loop prevention.",
		Supported:      true,
	},
	"dnssec": {
		CoreDNSPlugin:  "dnssec",
		UnboundFeature: "auto-trust-anchor-file",
		Notes:          "DNSSEC validation built-in. Configure trust anchors.",
		Supported:      true,
	},
	"prometheus": {
		CoreDNSPlugin:  "prometheus",
		UnboundFeature: "extended-statistics: yes",
		Notes:          "Use unbound-control stats or Prometheus exporter.",
		Supported:      true,
		RequiresManual: true,
	},
	"rewrite": {
		CoreDNSPlugin:  "rewrite",
		UnboundFeature: "local-zone / local-data",
		Notes:          "Limited rewrite capability. May need custom solution.",
		Supported:      false,
		RequiresManual: true,
	},
	"bind": {
		CoreDNSPlugin:  "bind",
		UnboundFeature: "interface",
		Notes:          "Map bind addresses to interface directives.",
		Supported:      true,
	},
	"acl": {
		CoreDNSPlugin:  "acl",
		UnboundFeature: "access-control",
		Notes:          "Convert ACL rules to access-control format.",
		Supported:      true,
	},
	"loadbalance": {
		CoreDNSPlugin:  "loadbalance",
		UnboundFeature: "rrset-roundrobin: yes",
		Notes:          "Enable round-robin for load balancing.",
		Supported:      true,
	},
}

// unboundToCoreDNS maps Unbound features to CoreDNS plugins.
var unboundToCoreDNS = map[string]domain.FeatureMapping{
	"forward-zone": {
		CoreDNSPlugin:  "forward",
		UnboundFeature: "forward-zone",
		Notes:          "Convert forward-zone blocks to forward plugin.",
		Supported:      true,
	},
	"msg-cache-size": {
		CoreDNSPlugin:  "cache",
		UnboundFeature: "msg-cache-size",
		Notes:          "Map cache sizes. CoreDNS uses TTL-based caching.",
		Supported:      true,
	},
	"log-queries": {
		CoreDNSPlugin:  "log",
		UnboundFeature: "log-queries",
		Notes:          "Map to log plugin.",
		Supported:      true,
	},
	"log-servfail": {
		CoreDNSPlugin:  "errors",
		UnboundFeature: "log-servfail",
		Notes:          "Map to errors plugin.",
		Supported:      true,
	},
	"auto-trust-anchor-file": {
		CoreDNSPlugin:  "dnssec",
		UnboundFeature: "auto-trust-anchor-file",
		Notes:          "Map to dnssec plugin with key file.",
		Supported:      true,
	},
	"rrset-roundrobin": {
		CoreDNSPlugin:  "loadbalance",
		UnboundFeature: "rrset-roundrobin",
		Notes:          "Map to loadbalance plugin.",
		Supported:      true,
	},
	"access-control": {
		CoreDNSPlugin:  "acl",
		UnboundFeature: "access-control",
		Notes:          "Convert access-control to acl plugin.",
		Supported:      true,
	},
	"interface": {
		CoreDNSPlugin:  "bind",
		UnboundFeature: "interface",
		Notes:          "Convert interface to bind plugin.",
		Supported:      true,
	},
	"local-data": {
		CoreDNSPlugin:  "hosts",
		UnboundFeature: "local-data",
		Notes:          "Convert local-data to hosts file format.",
		Supported:      true,
	},
	"auth-zone": {
		CoreDNSPlugin:  "file",
		UnboundFeature: "auth-zone",
		Notes:          "Convert auth-zone to file plugin with zone file.",
		Supported:      true,
	},
	"stub-zone": {
		CoreDNSPlugin:  "forward",
		UnboundFeature: "stub-zone",
		Notes:          "Convert stub-zone to forward plugin for specific zone.",
		Supported:      true,
	},
	"private-address": {
		CoreDNSPlugin:  "rewrite",
		UnboundFeature: "private-address",
		Notes:          "May need rewrite plugin for private address filtering.",
		Supported:      false,
		RequiresManual: true,
	},
	"remote-control": {
		UnboundFeature: "remote-control",
		Notes:          "No direct equivalent. CoreDNS uses different control mechanisms.",
		Supported:      false,
	},
}
