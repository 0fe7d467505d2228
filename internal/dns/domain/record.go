package domain

// DNSRecord is a single answer record as returned by a resolver. Value holds
// the record data in presentation form; Priority/Weight/Port are only
// populated for record types that carry them (MX, SRV).
type DNSRecord struct {
	Name     string     `json:"name"`
	Type     RecordType `json:"type"`
	TTL      uint32     `json:"ttl"`
	Value    string     `json:"value"`
	Priority int        `json:"priority,omitempty"`
	Weight   int        `json:"weight,omitempty"`
	Port     int        `json:"port,omitempty"`
}
