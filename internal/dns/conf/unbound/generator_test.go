package unbound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Basic(t *testing.T) {
	cfg := NewConfig()
	cfg.Server.Add("verbosity", "1")
	cfg.Server.Add("access-control", "127.0.0.0/8 allow")

	zone := NewSection()
	zone.Add("name", ".")
	zone.Add("forward-addr", "8.8.8.8")
	cfg.ForwardZones = append(cfg.ForwardZones, zone)

	out := Generate(cfg)
	assert.Contains(t, out, "server:\n")
	assert.Contains(t, out, "    verbosity: 1\n")
	assert.Contains(t, out, "    access-control: 127.0.0.0/8 allow\n")
	assert.Contains(t, out, "forward-zone:\n")
	assert.Contains(t, out, `    name: "."`)
	assert.Contains(t, out, "    forward-addr: 8.8.8.8\n")
}

func TestGenerate_QuotesValuesWithSpaces(t *testing.T) {
	cfg := NewConfig()
	cfg.Server.Add("local-data", "example.local. A 10.0.0.5")
	assert.Contains(t, Generate(cfg), `    local-data: "example.local. A 10.0.0.5"`)
}

func TestGenerate_OtherClausesSorted(t *testing.T) {
	cfg := NewConfig()
	cfg.Server.Add("port", "53")
	cfg.Other["python"] = NewSection()
	cfg.Other["python"].Add("python-script", "hook.py")
	cfg.Other["dnstap"] = NewSection()
	cfg.Other["dnstap"].Add("dnstap-enable", "yes")

	out := Generate(cfg)
	assert.Less(t, indexOf(out, "dnstap:"), indexOf(out, "python:"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg.Server)
	assert.True(t, cfg.Server.Has("access-control"))
	v, _ := cfg.Server.Get("port")
	assert.Equal(t, "53", v)
}

// Round-trip property: parse → generate → parse preserves every section's
// attributes and their order.
func TestRoundTrip_PreservesAttributes(t *testing.T) {
	first, err := Parse(sampleConf)
	require.NoError(t, err)

	second, err := Parse(Generate(first))
	require.NoError(t, err)

	assert.Equal(t, first.Server.entries, second.Server.entries)
	require.Len(t, second.ForwardZones, len(first.ForwardZones))
	for i := range first.ForwardZones {
		assert.Equal(t, first.ForwardZones[i].entries, second.ForwardZones[i].entries)
	}
	require.NotNil(t, second.RemoteControl)
	assert.Equal(t, first.RemoteControl.entries, second.RemoteControl.entries)
}
