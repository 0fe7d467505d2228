package domain

import (
	"fmt"
	"time"
)

// DNSQuery describes a single DNS question to be issued against a resolver.
// Server and Port are optional overrides; a zero value means "use the
// client's configured endpoint".
type DNSQuery struct {
	Name    string        `json:"name"`
	Type    RecordType    `json:"type"`
	Server  string        `json:"server,omitempty"`
	Port    int           `json:"port,omitempty"`
	UseTCP  bool          `json:"use_tcp,omitempty"`
	DNSSEC  bool          `json:"dnssec,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// NewDNSQuery constructs a DNSQuery with defaults applied (type A, 5s timeout)
// and validates the result.
func NewDNSQuery(name string, rtype RecordType) (DNSQuery, error) {
	if rtype == "" {
		rtype = RecordTypeA
	}
	q := DNSQuery{
		Name:    name,
		Type:    rtype,
		Timeout: 5 * time.Second,
	}
	if err := q.Validate(); err != nil {
		return DNSQuery{}, err
	}
	return q, nil
}

// Validate checks whether the query fields are usable.
func (q DNSQuery) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("query name must not be empty")
	}
	if !q.Type.IsValid() {
		return fmt.Errorf("invalid record type: %q", q.Type)
	}
	if q.Port < 0 || q.Port > 65535 {
		return fmt.Errorf("invalid port: %d", q.Port)
	}
	return nil
}
