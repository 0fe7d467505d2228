package client

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	mdns "github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-shift/internal/dns/common/clock"
	"github.com/haukened/rr-shift/internal/dns/common/log"
	"github.com/haukened/rr-shift/internal/dns/compare"
	"github.com/haukened/rr-shift/internal/dns/domain"
)

var _ compare.ResolverClient = (*Client)(nil)

// fakeRunner records invocations and returns a scripted result.
type fakeRunner struct {
	stdout string
	stderr string
	err    error

	name string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, string, error) {
	f.name = name
	f.args = args
	return f.stdout, f.stderr, f.err
}

func newTestClient(t *testing.T, rtype domain.ResolverType, runner Runner, configPath string) *Client {
	t.Helper()
	c, err := New(rtype, Options{
		ConfigPath: configPath,
		Runner:     runner,
		Logger:     log.NewNoopLogger(),
		Clock:      &clock.MockClock{CurrentTime: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsUnknownType(t *testing.T) {
	_, err := New(domain.ResolverType("bind9"), Options{})
	assert.Error(t, err)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Corefile")
	c := newTestClient(t, domain.ResolverCoreDNS, &fakeRunner{}, path)

	require.NoError(t, c.ApplyConfig(context.Background(), ".:53 {\n    errors\n}\n"))
	got, err := c.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ".:53 {\n    errors\n}\n", got)
}

func TestGetConfig_MissingFile(t *testing.T) {
	c := newTestClient(t, domain.ResolverUnbound, &fakeRunner{},
		filepath.Join(t.TempDir(), "absent.conf"))
	_, err := c.GetConfig(context.Background())
	assert.Error(t, err)
}

func TestControl_Success(t *testing.T) {
	runner := &fakeRunner{stdout: "ok\n"}
	c := newTestClient(t, domain.ResolverUnbound, runner, "unused")

	result := c.Reload(context.Background())
	assert.True(t, result.Success)
	assert.Equal(t, "reload", result.Action)
	assert.Equal(t, "ok", result.Message)
	assert.Equal(t, "unbound-control", runner.name)
	assert.Equal(t, []string{"reload"}, runner.args)
	assert.False(t, result.Timestamp.IsZero())
}

func TestControl_FailureCarriesStderr(t *testing.T) {
	runner := &fakeRunner{stderr: "unit not found\n", err: errors.New("exit status 5")}
	c := newTestClient(t, domain.ResolverCoreDNS, runner, "unused")

	result := c.Start(context.Background())
	assert.False(t, result.Success)
	assert.Equal(t, "unit not found", result.Message)
	assert.Equal(t, "systemctl", runner.name)
	assert.Equal(t, []string{"start", "coredns"}, runner.args)
}

func TestControl_FailureFallsBackToError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("executable not found")}
	c := newTestClient(t, domain.ResolverUnbound, runner, "unused")

	result := c.Stop(context.Background())
	assert.False(t, result.Success)
	assert.Equal(t, "executable not found", result.Message)
}

func TestReload_CoreDNSIsImplicit(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestClient(t, domain.ResolverCoreDNS, runner, "unused")

	result := c.Reload(context.Background())
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "reload plugin")
	assert.Empty(t, runner.name, "no command should run")
}

func TestQuery_FailureIsSyntheticServfail(t *testing.T) {
	// reserved TEST-NET address with a tiny timeout: the exchange must fail
	c, err := New(domain.ResolverUnbound, Options{
		Server: "192.0.2.1",
		Port:   53,
		Logger: log.NewNoopLogger(),
	})
	require.NoError(t, err)

	q, err := domain.NewDNSQuery("example.com", domain.RecordTypeA)
	require.NoError(t, err)
	q.Timeout = 50 * time.Millisecond

	resp := c.Query(context.Background(), q)
	assert.True(t, resp.Failed())
	assert.Equal(t, domain.RCodeServFail, resp.RCode)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, net.JoinHostPort("192.0.2.1", "53"), resp.Server)
}

func TestRecordTypeCode(t *testing.T) {
	assert.Equal(t, mdns.TypeA, recordTypeCode(domain.RecordTypeA))
	assert.Equal(t, mdns.TypeAAAA, recordTypeCode(domain.RecordTypeAAAA))
	assert.Equal(t, mdns.TypeMX, recordTypeCode(domain.RecordTypeMX))
	assert.Equal(t, mdns.TypeSRV, recordTypeCode(domain.RecordTypeSRV))
	assert.Equal(t, mdns.TypeA, recordTypeCode(domain.RecordType("BOGUS")), "unknown types fall back to A")
}

func TestRcodeName(t *testing.T) {
	assert.Equal(t, domain.RCodeNoError, rcodeName(mdns.RcodeSuccess))
	assert.Equal(t, domain.RCodeNXDomain, rcodeName(mdns.RcodeNameError))
	assert.Equal(t, domain.RCodeServFail, rcodeName(mdns.RcodeServerFailure))
}

func TestParseAnswers(t *testing.T) {
	reply := new(mdns.Msg)
	reply.Answer = []mdns.RR{
		&mdns.A{
			Hdr: mdns.RR_Header{Name: "example.com.", Rrtype: mdns.TypeA, Class: mdns.ClassINET, Ttl: 300},
			A:   net.ParseIP("93.184.216.34"),
		},
		&mdns.MX{
			Hdr:        mdns.RR_Header{Name: "example.com.", Rrtype: mdns.TypeMX, Class: mdns.ClassINET, Ttl: 3600},
			Preference: 10,
			Mx:         "mail.example.com.",
		},
		&mdns.SRV{
			Hdr:      mdns.RR_Header{Name: "_sip._tcp.example.com.", Rrtype: mdns.TypeSRV, Class: mdns.ClassINET, Ttl: 60},
			Priority: 5,
			Weight:   20,
			Port:     5060,
			Target:   "sip.example.com.",
		},
		&mdns.TXT{
			Hdr: mdns.RR_Header{Name: "example.com.", Rrtype: mdns.TypeTXT, Class: mdns.ClassINET, Ttl: 60},
			Txt: []string{"v=spf1", "-all"},
		},
	}

	records := parseAnswers(reply)
	require.Len(t, records, 4)

	assert.Equal(t, domain.RecordTypeA, records[0].Type)
	assert.Equal(t, "93.184.216.34", records[0].Value)
	assert.Equal(t, uint32(300), records[0].TTL)

	assert.Equal(t, domain.RecordTypeMX, records[1].Type)
	assert.Equal(t, "mail.example.com.", records[1].Value)
	assert.Equal(t, 10, records[1].Priority)

	assert.Equal(t, "sip.example.com.", records[2].Value)
	assert.Equal(t, 5, records[2].Priority)
	assert.Equal(t, 20, records[2].Weight)
	assert.Equal(t, 5060, records[2].Port)

	assert.Equal(t, "v=spf1 -all", records[3].Value)
}
