package domain

import (
	"fmt"
	"strings"
)

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationIssue is one diagnostic produced while parsing or validating a
// configuration text. Line is 1-based; zero means the issue applies to the
// document as a whole.
type ValidationIssue struct {
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// ValidationResult collects the diagnostics for one configuration text.
// Validation never panics or returns a bare error; malformed input is
// reported here.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// AddError appends an error-severity issue and marks the result invalid.
func (r *ValidationResult) AddError(line int, msg string) {
	r.Errors = append(r.Errors, ValidationIssue{Line: line, Message: msg, Severity: SeverityError})
	r.Valid = false
}

// AddWarning appends a warning-severity issue. Warnings do not affect Valid.
func (r *ValidationResult) AddWarning(line int, msg string) {
	r.Warnings = append(r.Warnings, ValidationIssue{Line: line, Message: msg, Severity: SeverityWarning})
}

// ParseError is returned by the config parsers when a document is malformed.
// It carries the structured issue list rather than a single opaque message.
type ParseError struct {
	Issues []ValidationIssue
}

func (e *ParseError) Error() string {
	if len(e.Issues) == 0 {
		return "parse error"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Line > 0 {
			parts = append(parts, fmt.Sprintf("line %d: %s", is.Line, is.Message))
		} else {
			parts = append(parts, is.Message)
		}
	}
	return "parse error: " + strings.Join(parts, "; ")
}
