package corefile

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

const sampleCorefile = `
# primary zone
.:53 {
    errors
    health
    forward . 8.8.8.8 8.8.4.4
    cache 30
    loop
}

example.com:5353 {
    file /etc/coredns/db.example.com
    log
}
`

func TestParse_Basic(t *testing.T) {
	cf, err := Parse(sampleCorefile)
	require.NoError(t, err)
	require.Len(t, cf.Servers, 2)

	first := cf.Servers[0]
	assert.Equal(t, []string{"."}, first.Zones)
	assert.Equal(t, 53, first.Port)
	assert.Equal(t, "dns", first.Protocol)
	require.Len(t, first.Directives, 5)
	assert.Equal(t, "forward", first.Directives[2].Name)
	assert.Equal(t, []string{".", "8.8.8.8", "8.8.4.4"}, first.Directives[2].Args)

	second := cf.Servers[1]
	assert.Equal(t, []string{"example.com"}, second.Zones)
	assert.Equal(t, 5353, second.Port)
}

func TestParse_DirectiveBlock(t *testing.T) {
	text := `.:53 {
    forward . 1.1.1.1 {
        policy sequential
        max_fails 3
    }
    errors
}
`
	cf, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, cf.Servers, 1)
	require.Len(t, cf.Servers[0].Directives, 2)

	fwd := cf.Servers[0].Directives[0]
	assert.Equal(t, "forward", fwd.Name)
	assert.Contains(t, fwd.Block, "policy sequential")
	assert.Contains(t, fwd.Block, "max_fails 3")
	assert.Equal(t, "errors", cf.Servers[0].Directives[1].Name)
}

func TestParse_ProtocolPrefix(t *testing.T) {
	cf, err := Parse("tls://.:853 {\n    forward . 9.9.9.9\n}\n")
	require.NoError(t, err)
	require.Len(t, cf.Servers, 1)
	assert.Equal(t, "tls", cf.Servers[0].Protocol)
	assert.Equal(t, 853, cf.Servers[0].Port)
}

func TestParse_ImportsAndSnippets(t *testing.T) {
	text := `import common.conf

(shared) {
    errors
    log
}

.:53 {
    forward . 8.8.8.8
}
`
	cf, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"common.conf"}, cf.Imports)
	require.Contains(t, cf.Snippets, "shared")
	assert.Contains(t, cf.Snippets["shared"], "errors")
	require.Len(t, cf.Servers, 1)
}

func TestParse_BraceOnFollowingLine(t *testing.T) {
	text := ".:53\n{\n    errors\n}\n"
	cf, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, cf.Servers, 1)
	assert.Equal(t, "errors", cf.Servers[0].Directives[0].Name)
}

func TestParse_UnterminatedBlock(t *testing.T) {
	_, err := Parse(".:53 {\n    errors\n")
	require.Error(t, err)

	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
	assert.NotEmpty(t, pe.Issues)
	assert.Contains(t, pe.Error(), "unbalanced braces")
}

func TestValidate_UnbalancedBraces(t *testing.T) {
	result := Validate(".:53 {\n    errors\n")
	assert.False(t, result.Valid)

	found := false
	for _, e := range result.Errors {
		if strings.Contains(e.Message, "unbalanced braces") {
			found = true
		}
	}
	assert.True(t, found, "expected an unbalanced-braces error, got %v", result.Errors)
}

func TestValidate_UnknownPluginIsWarning(t *testing.T) {
	result := Validate(".:53 {\n    frobnicate on\n    errors\n}\n")
	assert.True(t, result.Valid, "unknown plugin must not invalidate the config")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "frobnicate")
}

func TestValidate_CleanConfig(t *testing.T) {
	result := Validate(sampleCorefile)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestParse_CommentsAndBlankLines(t *testing.T) {
	text := "# leading comment\n\n.:53 {\n    # inner comment\n    errors\n\n}\n"
	cf, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, cf.Servers, 1)
	require.Len(t, cf.Servers[0].Directives, 1)
}

func TestHasDirective(t *testing.T) {
	cf, err := Parse(sampleCorefile)
	require.NoError(t, err)
	assert.True(t, cf.HasDirective("forward"))
	assert.True(t, cf.HasDirective("log"))
	assert.False(t, cf.HasDirective("kubernetes"))
}
