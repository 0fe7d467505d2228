// Package compare runs the same queries against two resolvers and measures
// how far apart their answers are. It produces per-query diffs, aggregate
// comparison results with a confidence score, and a shadow mode that samples
// live traffic against a candidate resolver.
package compare

import (
	"context"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

// ResolverClient abstracts one running resolver under test. Query never
// returns an error: failures are folded into the response as a synthetic
// SERVFAIL with the Error field set, so comparison loops stay uniform.
type ResolverClient interface {
	// Type identifies the resolver implementation behind this client.
	Type() domain.ResolverType

	// GetConfig reads the resolver's current configuration text.
	GetConfig(ctx context.Context) (string, error)

	// ApplyConfig writes new configuration text to the resolver.
	ApplyConfig(ctx context.Context, config string) error

	// Query executes one DNS query against the resolver.
	Query(ctx context.Context, q domain.DNSQuery) domain.DNSResponse

	// Lifecycle operations for the resolver process.
	Start(ctx context.Context) domain.ControlResult
	Stop(ctx context.Context) domain.ControlResult
	Restart(ctx context.Context) domain.ControlResult
	Reload(ctx context.Context) domain.ControlResult
}
