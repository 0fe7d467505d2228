package domain

// RCode is a DNS response code by its presentation name. String codes keep
// diffs, plans, and reports directly readable when serialized to JSON.
type RCode string

const (
	RCodeNoError  RCode = "NOERROR"
	RCodeFormErr  RCode = "FORMERR"
	RCodeServFail RCode = "SERVFAIL"
	RCodeNXDomain RCode = "NXDOMAIN"
	RCodeNotImp   RCode = "NOTIMP"
	RCodeRefused  RCode = "REFUSED"
)

// IsError returns true if the code indicates anything other than success.
func (r RCode) IsError() bool {
	return r != RCodeNoError
}

// String returns the presentation name of the response code.
func (r RCode) String() string {
	return string(r)
}
