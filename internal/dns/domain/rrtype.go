package domain

// RecordType is a DNS record type by its presentation name ("A", "MX", ...).
// The wire-level numeric mapping lives with the DNS client, not here.
type RecordType string

const (
	RecordTypeA      RecordType = "A"
	RecordTypeAAAA   RecordType = "AAAA"
	RecordTypeCNAME  RecordType = "CNAME"
	RecordTypeMX     RecordType = "MX"
	RecordTypeNS     RecordType = "NS"
	RecordTypePTR    RecordType = "PTR"
	RecordTypeSOA    RecordType = "SOA"
	RecordTypeSRV    RecordType = "SRV"
	RecordTypeTXT    RecordType = "TXT"
	RecordTypeCAA    RecordType = "CAA"
	RecordTypeDNSKEY RecordType = "DNSKEY"
	RecordTypeDS     RecordType = "DS"
	RecordTypeRRSIG  RecordType = "RRSIG"
	RecordTypeNSEC   RecordType = "NSEC"
	RecordTypeNSEC3  RecordType = "NSEC3"
	RecordTypeANY    RecordType = "ANY"
)

var recordTypes = map[RecordType]struct{}{
	RecordTypeA: {}, RecordTypeAAAA: {}, RecordTypeCNAME: {}, RecordTypeMX: {},
	RecordTypeNS: {}, RecordTypePTR: {}, RecordTypeSOA: {}, RecordTypeSRV: {},
	RecordTypeTXT: {}, RecordTypeCAA: {}, RecordTypeDNSKEY: {}, RecordTypeDS: {},
	RecordTypeRRSIG: {}, RecordTypeNSEC: {}, RecordTypeNSEC3: {}, RecordTypeANY: {},
}

// IsValid returns true if the RecordType is one of the supported types.
func (t RecordType) IsValid() bool {
	_, ok := recordTypes[t]
	return ok
}

// String returns the presentation name of the record type.
func (t RecordType) String() string {
	return string(t)
}
