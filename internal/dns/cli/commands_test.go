package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

const testCorefile = `.:53 {
    forward . 8.8.8.8 8.8.4.4
    cache 30
    errors
    prometheus :9153
}
`

const testUnboundConf = `server:
    interface: 0.0.0.0
    port: 53

forward-zone:
    name: "."
    forward-addr: 8.8.8.8
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateCommand_ValidCorefile(t *testing.T) {
	path := writeTemp(t, "Corefile", testCorefile)
	out, err := runCommand(t, NewValidateCommand(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
}

func TestValidateCommand_InvalidCorefile(t *testing.T) {
	path := writeTemp(t, "Corefile", ".:53 {\n    forward . 8.8.8.8\n")
	out, err := runCommand(t, NewValidateCommand(), path)
	assert.Error(t, err)
	assert.Contains(t, out, "error:")
}

func TestValidateCommand_UnboundDialect(t *testing.T) {
	path := writeTemp(t, "unbound.conf", testUnboundConf)
	out, err := runCommand(t, NewValidateCommand(), "--type", "unbound", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
}

func TestValidateCommand_UnknownDialect(t *testing.T) {
	path := writeTemp(t, "named.conf", "zone .")
	_, err := runCommand(t, NewValidateCommand(), "--type", "bind9", path)
	assert.Error(t, err)
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := runCommand(t, NewValidateCommand(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestAnalyzeCommand_CoreDNSToUnbound(t *testing.T) {
	path := writeTemp(t, "Corefile", testCorefile)
	out, err := runCommand(t, NewAnalyzeCommand(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "coredns -> unbound")
	assert.Contains(t, out, "forward")
	assert.Contains(t, out, "Warnings:")
	assert.Contains(t, out, "prometheus")
}

func TestAnalyzeCommand_ReverseDirection(t *testing.T) {
	path := writeTemp(t, "unbound.conf", testUnboundConf)
	out, err := runCommand(t, NewAnalyzeCommand(), "--from", "unbound", "--to", "coredns", path)
	require.NoError(t, err)
	assert.Contains(t, out, "unbound -> coredns")
}

func TestAnalyzeCommand_SameDirectionRejected(t *testing.T) {
	path := writeTemp(t, "Corefile", testCorefile)
	_, err := runCommand(t, NewAnalyzeCommand(), "--from", "coredns", "--to", "coredns", path)
	assert.Error(t, err)
}

func TestConvertCommand_ToStdout(t *testing.T) {
	path := writeTemp(t, "Corefile", testCorefile)
	out, err := runCommand(t, NewConvertCommand(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "forward-zone:")
	assert.Contains(t, out, "forward-addr: 8.8.8.8")
}

func TestConvertCommand_ToFile(t *testing.T) {
	path := writeTemp(t, "Corefile", testCorefile)
	outPath := filepath.Join(t.TempDir(), "unbound.conf")

	out, err := runCommand(t, NewConvertCommand(), "-o", outPath, path)
	require.NoError(t, err)
	assert.NotContains(t, out, "forward-zone:")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "forward-zone:")
}

func TestConvertCommand_BadSource(t *testing.T) {
	path := writeTemp(t, "Corefile", ".:53 {\n    cache\n")
	_, err := runCommand(t, NewConvertCommand(), path)
	assert.Error(t, err)
}

func TestDescribeMapping(t *testing.T) {
	supported := describeMapping(domain.FeatureMapping{
		CoreDNSPlugin: "forward", UnboundFeature: "forward-zone", Supported: true,
	})
	assert.Contains(t, supported, "forward")
	assert.Contains(t, supported, "[supported]")

	manual := describeMapping(domain.FeatureMapping{
		CoreDNSPlugin: "rewrite", UnboundFeature: "local-zone", Supported: true, RequiresManual: true,
	})
	assert.Contains(t, manual, "[manual]")

	unsupported := describeMapping(domain.FeatureMapping{
		CoreDNSPlugin: "prometheus", Supported: false,
	})
	assert.Contains(t, unsupported, "(none)")
	assert.Contains(t, unsupported, "[unsupported]")
}
