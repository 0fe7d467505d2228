package unbound

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

var sectionRe = regexp.MustCompile(`^([a-z0-9-]+):\s*$`)

// knownSections is the clause-header vocabulary used for validation
// warnings. Unbound adds clauses over time, so unknown headers are flagged
// but still parsed into Config.Other.
var knownSections = map[string]struct{}{
	"server": {}, "remote-control": {}, "forward-zone": {}, "stub-zone": {},
	"auth-zone": {}, "view": {}, "python": {}, "dynlib": {}, "dnstap": {},
	"cachedb": {}, "ipset": {}, "rpz": {},
}

// knownServerOptions covers the commonly used server: attributes. It is an
// allow-list for warnings only; unbound has hundreds of options and an
// unrecognized one must never reject a working config.
var knownServerOptions = map[string]struct{}{
	"verbosity": {}, "statistics-interval": {}, "extended-statistics": {},
	"num-threads": {}, "interface": {}, "port": {}, "outgoing-range": {},
	"do-ip4": {}, "do-ip6": {}, "do-udp": {}, "do-tcp": {},
	"access-control": {}, "chroot": {}, "username": {}, "directory": {},
	"logfile": {}, "use-syslog": {}, "log-queries": {}, "log-replies": {},
	"log-servfail": {}, "pidfile": {}, "root-hints": {},
	"hide-identity": {}, "hide-version": {}, "identity": {}, "version": {},
	"harden-glue": {}, "harden-dnssec-stripped": {}, "harden-referral-path": {},
	"use-caps-for-id": {}, "private-address": {}, "private-domain": {},
	"domain-insecure": {}, "prefetch": {}, "prefetch-key": {},
	"rrset-roundrobin": {}, "minimal-responses": {}, "qname-minimisation": {},
	"aggressive-nsec": {}, "serve-expired": {}, "msg-cache-size": {},
	"msg-cache-slabs": {}, "rrset-cache-size": {}, "rrset-cache-slabs": {},
	"cache-min-ttl": {}, "cache-max-ttl": {}, "infra-cache-numhosts": {},
	"num-queries-per-thread": {}, "so-rcvbuf": {}, "so-sndbuf": {},
	"edns-buffer-size": {}, "do-daemonize": {}, "module-config": {},
	"auto-trust-anchor-file": {}, "trust-anchor-file": {},
	"val-permissive-mode": {}, "val-log-level": {}, "local-zone": {},
	"local-data": {}, "local-data-ptr": {}, "tls-cert-bundle": {},
	"tls-upstream": {}, "tls-service-key": {}, "tls-service-pem": {},
	"interface-automatic": {}, "unwanted-reply-threshold": {},
}

// Parse converts unbound.conf text into a structured Config. Malformed input
// returns a *domain.ParseError listing every offending line.
func Parse(text string) (*Config, error) {
	cfg := &Config{Other: map[string]*Section{}}
	issues := []domain.ValidationIssue{}

	var cur *Section
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			cur = cfg.section(m[1])
			continue
		}

		idx := strings.Index(line, ":")
		if idx < 0 {
			issues = append(issues, domain.ValidationIssue{
				Line:     n + 1,
				Message:  fmt.Sprintf("expected 'key: value', got %q", line),
				Severity: domain.SeverityError,
			})
			continue
		}
		if cur == nil {
			issues = append(issues, domain.ValidationIssue{
				Line:     n + 1,
				Message:  fmt.Sprintf("attribute %q before any clause header", strings.TrimSpace(line[:idx])),
				Severity: domain.SeverityError,
			})
			continue
		}
		cur.Add(strings.TrimSpace(line[:idx]), unquote(strings.TrimSpace(line[idx+1:])))
	}

	if len(issues) > 0 {
		return nil, &domain.ParseError{Issues: issues}
	}
	if cfg.Server == nil {
		cfg.Server = NewSection()
	}
	return cfg, nil
}

// Validate checks unbound.conf text for structural errors, unknown clause
// headers and unknown server options. Structural problems are errors;
// unrecognized names are warnings only.
func Validate(text string) domain.ValidationResult {
	result := domain.ValidationResult{Valid: true}

	section := ""
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			section = m[1]
			if _, ok := knownSections[section]; !ok {
				result.AddWarning(n+1, fmt.Sprintf("unknown clause: %s", section))
			}
			continue
		}

		idx := strings.Index(line, ":")
		if idx < 0 {
			result.AddError(n+1, fmt.Sprintf("expected 'key: value', got %q", line))
			continue
		}
		key := strings.TrimSpace(line[:idx])
		if section == "" {
			result.AddError(n+1, fmt.Sprintf("attribute %q before any clause header", key))
			continue
		}
		if section == "server" {
			if _, ok := knownServerOptions[key]; !ok {
				result.AddWarning(n+1, fmt.Sprintf("unknown server option: %s", key))
			}
		}
	}

	return result
}

// stripComment drops a trailing '#' comment, honoring double quotes so that
// local-data values containing '#' survive.
func stripComment(line string) string {
	inQuote := false
	for i, r := range line {
		switch r {
		case '"':
			inQuote = !inQuote
		case '#':
			if !inQuote {
				return line[:i]
			}
		}
	}
	return line
}

// unquote strips one pair of surrounding double quotes.
func unquote(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return v[1 : len(v)-1]
	}
	return v
}
