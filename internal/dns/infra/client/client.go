// Package client provides the concrete resolver clients: DNS queries over
// the wire via miekg/dns, configuration through the resolver's config file,
// and service control by shelling out to systemctl / unbound-control.
package client

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	mdns "github.com/miekg/dns"

	"github.com/haukened/rr-shift/internal/dns/common/clock"
	"github.com/haukened/rr-shift/internal/dns/common/log"
	"github.com/haukened/rr-shift/internal/dns/domain"
)

const defaultTimeout = 5 * time.Second

// Options configure a resolver client.
type Options struct {
	Server     string // resolver address, default 127.0.0.1
	Port       int    // default 53
	ConfigPath string // default per resolver type
	Runner     Runner
	Logger     log.Logger
	Clock      clock.Clock
}

// Client talks to one running resolver. It satisfies compare.ResolverClient:
// Query never returns an error, failures come back as synthetic SERVFAIL
// responses.
type Client struct {
	rtype      domain.ResolverType
	server     string
	port       int
	configPath string
	udp        *mdns.Client
	tcp        *mdns.Client
	runner     Runner
	commands   controlCommands
	log        log.Logger
	clock      clock.Clock
}

// New builds a client for the given resolver type.
func New(rtype domain.ResolverType, opts Options) (*Client, error) {
	if !rtype.IsValid() {
		return nil, fmt.Errorf("unknown resolver type: %q", rtype)
	}
	if opts.Server == "" {
		opts.Server = "127.0.0.1"
	}
	if opts.Port == 0 {
		opts.Port = 53
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = defaultConfigPath(rtype)
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}

	return &Client{
		rtype:      rtype,
		server:     opts.Server,
		port:       opts.Port,
		configPath: opts.ConfigPath,
		udp:        &mdns.Client{Timeout: defaultTimeout},
		tcp:        &mdns.Client{Net: "tcp", Timeout: defaultTimeout},
		runner:     opts.Runner,
		commands:   commandsFor(rtype),
		log:        opts.Logger,
		clock:      opts.Clock,
	}, nil
}

func defaultConfigPath(rtype domain.ResolverType) string {
	if rtype == domain.ResolverCoreDNS {
		return "/etc/coredns/Corefile"
	}
	return "/etc/unbound/unbound.conf"
}

// Type returns the resolver implementation behind this client.
func (c *Client) Type() domain.ResolverType { return c.rtype }

// GetConfig reads the resolver's configuration file.
func (c *Client) GetConfig(_ context.Context) (string, error) {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return "", fmt.Errorf("reading %s config: %w", c.rtype, err)
	}
	return string(data), nil
}

// ApplyConfig writes new configuration text. The resolver picks it up on its
// next reload or restart.
func (c *Client) ApplyConfig(_ context.Context, config string) error {
	if err := os.WriteFile(c.configPath, []byte(config), 0o644); err != nil {
		return fmt.Errorf("writing %s config: %w", c.rtype, err)
	}
	return nil
}

// Query sends one DNS query to the resolver. All failures are folded into a
// synthetic SERVFAIL response with the error text attached.
func (c *Client) Query(ctx context.Context, q domain.DNSQuery) domain.DNSResponse {
	server := c.server
	if q.Server != "" {
		server = q.Server
	}
	port := c.port
	if q.Port != 0 {
		port = q.Port
	}
	addr := net.JoinHostPort(server, strconv.Itoa(port))

	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(q.Name), recordTypeCode(q.Type))
	msg.RecursionDesired = true
	if q.DNSSEC {
		msg.SetEdns0(4096, true)
	}

	transport := c.udp
	if q.UseTCP {
		transport = c.tcp
	}
	if q.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.Timeout)
		defer cancel()
	}

	start := c.clock.Now()
	reply, rtt, err := transport.ExchangeContext(ctx, msg, addr)
	if err != nil {
		c.log.Debug(map[string]any{
			"resolver": c.rtype,
			"query":    q.Name,
			"error":    err.Error(),
		}, "dns query failed")
		resp := domain.NewErrorResponse(q, addr, err.Error())
		resp.Timestamp = start
		return resp
	}

	resp := domain.DNSResponse{
		Query:     q,
		Records:   parseAnswers(reply),
		RCode:     rcodeName(reply.Rcode),
		QueryTime: rtt,
		Server:    addr,
		Timestamp: start,
	}
	if q.DNSSEC {
		ad := reply.AuthenticatedData
		resp.DNSSECValid = &ad
	}
	return resp
}

// parseAnswers converts wire answers to presentation-form records.
func parseAnswers(reply *mdns.Msg) []domain.DNSRecord {
	var records []domain.DNSRecord
	for _, answer := range reply.Answer {
		hdr := answer.Header()
		record := domain.DNSRecord{
			Name: hdr.Name,
			Type: domain.RecordType(mdns.TypeToString[hdr.Rrtype]),
			TTL:  hdr.Ttl,
		}

		switch rr := answer.(type) {
		case *mdns.A:
			record.Value = rr.A.String()
		case *mdns.AAAA:
			record.Value = rr.AAAA.String()
		case *mdns.CNAME:
			record.Value = rr.Target
		case *mdns.MX:
			record.Value = rr.Mx
			record.Priority = int(rr.Preference)
		case *mdns.NS:
			record.Value = rr.Ns
		case *mdns.TXT:
			record.Value = strings.Join(rr.Txt, " ")
		case *mdns.PTR:
			record.Value = rr.Ptr
		case *mdns.SOA:
			record.Value = fmt.Sprintf("%s %s %d %d %d %d %d",
				rr.Ns, rr.Mbox, rr.Serial, rr.Refresh, rr.Retry, rr.Expire, rr.Minttl)
		case *mdns.SRV:
			record.Value = rr.Target
			record.Priority = int(rr.Priority)
			record.Weight = int(rr.Weight)
			record.Port = int(rr.Port)
		default:
			record.Value = answer.String()
		}
		records = append(records, record)
	}
	return records
}

// recordTypeCode maps presentation record types to wire codes.
func recordTypeCode(t domain.RecordType) uint16 {
	if code, ok := mdns.StringToType[string(t)]; ok {
		return code
	}
	return mdns.TypeA
}

// rcodeName maps a wire rcode to its presentation name.
func rcodeName(rcode int) domain.RCode {
	if name, ok := mdns.RcodeToString[rcode]; ok {
		return domain.RCode(name)
	}
	return domain.RCode(fmt.Sprintf("RCODE%d", rcode))
}
