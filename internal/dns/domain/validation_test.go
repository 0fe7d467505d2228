package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationResult_AddError(t *testing.T) {
	r := ValidationResult{Valid: true}
	r.AddError(3, "unbalanced braces")
	assert.False(t, r.Valid)
	assert.Len(t, r.Errors, 1)
	assert.Equal(t, SeverityError, r.Errors[0].Severity)
	assert.Equal(t, 3, r.Errors[0].Line)
}

func TestValidationResult_AddWarning(t *testing.T) {
	r := ValidationResult{Valid: true}
	r.AddWarning(7, "unknown plugin")
	assert.True(t, r.Valid, "warnings must not invalidate the result")
	assert.Len(t, r.Warnings, 1)
}

func TestParseError_Error(t *testing.T) {
	err := &ParseError{Issues: []ValidationIssue{
		{Line: 2, Message: "bad line", Severity: SeverityError},
		{Message: "unbalanced braces", Severity: SeverityError},
	}}
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "line 2: bad line"))
	assert.True(t, strings.Contains(msg, "unbalanced braces"))

	empty := &ParseError{}
	assert.Equal(t, "parse error", empty.Error())
}
