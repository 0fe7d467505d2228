package domain

import "time"

// DNSResponse is the outcome of one DNSQuery against one resolver.
//
// A response is always produced, even on failure: resolver-side errors are
// folded into a SERVFAIL-shaped response with Error set, so comparison logic
// never has to handle a missing leg.
type DNSResponse struct {
	Query       DNSQuery      `json:"query"`
	Records     []DNSRecord   `json:"records,omitempty"`
	RCode       RCode         `json:"rcode"`
	QueryTime   time.Duration `json:"query_time"`
	Server      string        `json:"server"`
	DNSSECValid *bool         `json:"dnssec_valid,omitempty"`
	Timestamp   time.Time     `json:"timestamp,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// NewErrorResponse builds the synthetic SERVFAIL response used when a
// resolver leg fails. The original error text is preserved for reporting.
func NewErrorResponse(query DNSQuery, server string, errText string) DNSResponse {
	return DNSResponse{
		Query:  query,
		RCode:  RCodeServFail,
		Server: server,
		Error:  errText,
	}
}

// Failed returns true if this response was synthesized from a resolver error.
func (r DNSResponse) Failed() bool {
	return r.Error != ""
}
