package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDNSQuery_Defaults(t *testing.T) {
	q, err := NewDNSQuery("example.com", "")
	assert.NoError(t, err)
	assert.Equal(t, RecordTypeA, q.Type)
	assert.Equal(t, 5*time.Second, q.Timeout)
	assert.Empty(t, q.Server)
}

func TestNewDNSQuery_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		qname string
		rtype RecordType
	}{
		{"empty name", "", RecordTypeA},
		{"bad type", "example.com", "BOGUS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDNSQuery(tc.qname, tc.rtype)
			assert.Error(t, err)
		})
	}
}

func TestDNSQuery_Validate_Port(t *testing.T) {
	q, err := NewDNSQuery("example.com", RecordTypeA)
	assert.NoError(t, err)

	q.Port = 70000
	assert.Error(t, q.Validate())

	q.Port = 5353
	assert.NoError(t, q.Validate())
}

func TestNewErrorResponse(t *testing.T) {
	q, _ := NewDNSQuery("example.com", RecordTypeA)
	resp := NewErrorResponse(q, "unbound", "connection refused")
	assert.Equal(t, RCodeServFail, resp.RCode)
	assert.True(t, resp.Failed())
	assert.Empty(t, resp.Records)
	assert.Equal(t, "connection refused", resp.Error)
}
