package corefile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

// knownPlugins is the allow-list used for validation warnings. Unknown
// directive names are flagged but never rejected; CoreDNS ships external
// plugins we cannot enumerate.
var knownPlugins = map[string]struct{}{
	"acl": {}, "any": {}, "autopath": {}, "bind": {}, "bufsize": {},
	"cache": {}, "cancel": {}, "chaos": {}, "clouddns": {}, "debug": {},
	"dns64": {}, "dnssec": {}, "dnstap": {}, "erratic": {}, "errors": {},
	"etcd": {}, "file": {}, "forward": {}, "grpc": {}, "health": {},
	"hosts": {}, "k8s_external": {}, "kubernetes": {}, "loadbalance": {},
	"local": {}, "log": {}, "loop": {}, "metadata": {}, "minimal": {},
	"nsid": {}, "pprof": {}, "prometheus": {}, "ready": {}, "reload": {},
	"rewrite": {}, "root": {}, "route53": {}, "secondary": {}, "sign": {},
	"template": {}, "tls": {}, "trace": {}, "transfer": {}, "whoami": {},
}

// IsKnownPlugin reports whether name is in the known-plugin vocabulary.
func IsKnownPlugin(name string) bool {
	_, ok := knownPlugins[name]
	return ok
}

// Parse converts Corefile text into a structured document. A malformed
// document returns a *domain.ParseError carrying the issue list; Parse never
// panics on bad input.
func Parse(text string) (*Corefile, error) {
	cf := &Corefile{Snippets: map[string]string{}}
	issues := []domain.ValidationIssue{}

	lines := strings.Split(text, "\n")
	depth := 0

	var server *ServerBlock  // block being assembled, nil at depth 0
	var directive *Directive // directive with an open sub-block, nil otherwise
	var blockLines []string  // captured sub-block content

	closeDirective := func() {
		directive.Block = strings.Join(blockLines, "\n")
		server.Directives = append(server.Directives, *directive)
		directive = nil
		blockLines = nil
	}

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		if line == "" || strings.HasPrefix(line, "#") {
			i++
			continue
		}

		if depth == 0 {
			switch {
			case strings.HasPrefix(line, "import "):
				cf.Imports = append(cf.Imports, strings.TrimSpace(line[len("import "):]))

			case strings.HasPrefix(line, "(") && strings.Contains(line, ")"):
				// snippet definition: capture until the closing ")"
				name := line[1:strings.Index(line, ")")]
				var body []string
				i++
				for i < len(lines) && !snippetEnd(lines[i]) {
					body = append(body, lines[i])
					i++
				}
				if i >= len(lines) {
					issues = append(issues, domain.ValidationIssue{
						Message:  fmt.Sprintf("unterminated snippet definition: (%s)", name),
						Severity: domain.SeverityError,
					})
				}
				cf.Snippets[name] = strings.Join(body, "\n")

			default:
				// server block declaration
				decl := strings.TrimSpace(strings.TrimSuffix(line, "{"))
				zones, port, protocol := parseServerDecl(decl)
				server = &ServerBlock{Zones: zones, Port: port, Protocol: protocol}
				if strings.HasSuffix(line, "{") {
					depth = 1
				} else {
					// the opening brace must follow on its own line
					j := i + 1
					for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
						j++
					}
					if j < len(lines) && strings.TrimSpace(lines[j]) == "{" {
						depth = 1
						i = j
					} else {
						issues = append(issues, domain.ValidationIssue{
							Line:     i + 1,
							Message:  fmt.Sprintf("expected '{' after server declaration %q", decl),
							Severity: domain.SeverityError,
						})
						server = nil
					}
				}
			}
			i++
			continue
		}

		// inside an open directive sub-block: capture verbatim until the
		// matching close brace, tracking nesting by brace count
		if directive != nil {
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			if depth <= 1 {
				closeDirective()
			} else {
				blockLines = append(blockLines, line)
			}
			i++
			continue
		}

		// inside a server block at depth 1
		if line == "}" {
			cf.Servers = append(cf.Servers, *server)
			server = nil
			depth = 0
			i++
			continue
		}

		d := parseDirectiveLine(line)
		if d != nil {
			if strings.HasSuffix(line, "{") && !strings.Contains(line, "}") {
				directive = d
				blockLines = nil
				depth++
			} else {
				server.Directives = append(server.Directives, *d)
			}
		}
		i++
	}

	if depth != 0 || server != nil || directive != nil {
		issues = append(issues, domain.ValidationIssue{
			Message:  "unbalanced braces: block not closed before end of file",
			Severity: domain.SeverityError,
		})
	}

	if len(issues) > 0 {
		return nil, &domain.ParseError{Issues: issues}
	}
	return cf, nil
}

// snippetEnd reports whether a line terminates a snippet definition.
func snippetEnd(raw string) bool {
	line := strings.TrimSpace(raw)
	return line == "}" || strings.HasPrefix(line, ")")
}

// parseDirectiveLine splits one plugin line into name and args, dropping a
// trailing block-open brace.
func parseDirectiveLine(line string) *Directive {
	line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), "{"))
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	return &Directive{Name: fields[0], Args: fields[1:]}
}

// Validate checks Corefile text for structural errors and unknown
// directives. Unbalanced braces are always an error; a directive name
// outside the known-plugin vocabulary is only a warning, since it may be an
// external plugin. Never returns an error for malformed input.
func Validate(text string) domain.ValidationResult {
	result := domain.ValidationResult{Valid: true}

	braces := 0
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		braces += strings.Count(line, "{") - strings.Count(line, "}")

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if IsKnownPlugin(name) {
			continue
		}
		// server declarations and structural tokens are not plugins
		if strings.ContainsAny(name, ".:/") || name == "import" || name == "{" || name == "}" ||
			strings.HasPrefix(name, "(") || strings.HasPrefix(name, ")") {
			continue
		}
		result.AddWarning(n+1, fmt.Sprintf("unknown plugin or directive: %s", name))
	}

	if braces != 0 {
		result.AddError(0, fmt.Sprintf("unbalanced braces: %d unclosed", braces))
	}

	// structural walk catches what brace counting alone cannot
	if _, err := Parse(text); err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) {
			for _, is := range pe.Issues {
				if is.Severity == domain.SeverityError && !hasIssue(result.Errors, is.Message) {
					result.AddError(is.Line, is.Message)
				}
			}
		} else {
			result.AddError(0, err.Error())
		}
	}

	return result
}

func hasIssue(issues []domain.ValidationIssue, msg string) bool {
	for _, is := range issues {
		if is.Message == msg {
			return true
		}
	}
	return false
}
