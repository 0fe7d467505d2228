package compare

import (
	"fmt"
	"strings"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

// DifferOptions tune how strictly two responses are compared.
type DifferOptions struct {
	// IgnoreTTL skips TTL comparison entirely.
	IgnoreTTL bool
	// TTLTolerance allows TTLs to differ by up to this many seconds before
	// being flagged. Caching resolvers decrement TTLs, so exact equality is
	// rarely meaningful.
	TTLTolerance uint32
	// CaseSensitive flags record values that differ only in case. Matching
	// is always case-insensitive; this only adds a field diff.
	CaseSensitive bool
}

// Differ compares DNS responses record by record.
type Differ struct {
	opts DifferOptions
}

// NewDiffer returns a differ with the given options.
func NewDiffer(opts DifferOptions) *Differ {
	return &Differ{opts: opts}
}

// recordKey identifies a record across responses. Names and values are
// normalized so cosmetic differences (case, trailing dot) do not count.
type recordKey struct {
	name  string
	rtype domain.RecordType
	value string
}

func makeKey(r domain.DNSRecord) recordKey {
	return recordKey{
		name:  normalizeName(r.Name),
		rtype: r.Type,
		value: strings.ToLower(strings.TrimSuffix(r.Value, ".")),
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}

// Compare diffs two responses to the same query. The result's TimingDiff is
// target minus source.
func (d *Differ) Compare(source, target domain.DNSResponse) domain.ResponseDiff {
	diff := domain.ResponseDiff{
		Query:            source.Query,
		RCodeMatch:       source.RCode == target.RCode,
		RecordCountMatch: len(source.Records) == len(target.Records),
		TimingDiff:       target.QueryTime - source.QueryTime,
		SourceResponse:   source,
		TargetResponse:   target,
	}

	srcByKey := map[recordKey]domain.DNSRecord{}
	for _, r := range source.Records {
		srcByKey[makeKey(r)] = r
	}
	tgtByKey := map[recordKey]domain.DNSRecord{}
	for _, r := range target.Records {
		tgtByKey[makeKey(r)] = r
	}

	for _, r := range source.Records {
		key := makeKey(r)
		tr, ok := tgtByKey[key]
		if !ok {
			diff.MissingInTarget = append(diff.MissingInTarget, r)
			continue
		}
		diff.RecordDiffs = append(diff.RecordDiffs, d.fieldDiffs(r, tr)...)
	}
	for _, r := range target.Records {
		if _, ok := srcByKey[makeKey(r)]; !ok {
			diff.MissingInSource = append(diff.MissingInSource, r)
		}
	}

	diff.RecordsMatch = len(diff.RecordDiffs) == 0 &&
		len(diff.MissingInSource) == 0 && len(diff.MissingInTarget) == 0
	diff.Match = diff.RCodeMatch && diff.RecordsMatch
	return diff
}

// fieldDiffs compares two records already matched by key.
func (d *Differ) fieldDiffs(src, tgt domain.DNSRecord) []domain.RecordDiff {
	var diffs []domain.RecordDiff

	if !d.opts.IgnoreTTL && !ttlWithin(src.TTL, tgt.TTL, d.opts.TTLTolerance) {
		diffs = append(diffs, domain.RecordDiff{
			Field:       fmt.Sprintf("%s/%s ttl", normalizeName(src.Name), src.Type),
			SourceValue: fmt.Sprintf("%d", src.TTL),
			TargetValue: fmt.Sprintf("%d", tgt.TTL),
		})
	}
	if d.opts.CaseSensitive && src.Value != tgt.Value {
		diffs = append(diffs, domain.RecordDiff{
			Field:       fmt.Sprintf("%s/%s value", normalizeName(src.Name), src.Type),
			SourceValue: src.Value,
			TargetValue: tgt.Value,
		})
	}
	return diffs
}

func ttlWithin(a, b, tolerance uint32) bool {
	if a > b {
		return a-b <= tolerance
	}
	return b-a <= tolerance
}
