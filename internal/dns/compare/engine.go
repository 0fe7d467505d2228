package compare

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haukened/rr-shift/internal/dns/common/clock"
	"github.com/haukened/rr-shift/internal/dns/common/log"
	"github.com/haukened/rr-shift/internal/dns/domain"
)

const (
	// DefaultRetries is how many attempts each resolver gets per query.
	DefaultRetries = 3
	// retryBaseDelay doubles on each failed attempt.
	retryBaseDelay = 100 * time.Millisecond
)

// Confidence score shape: start from the raw match ratio, subtract a small
// penalty when answers are slow, add a small bonus for large sample sizes.
const (
	slowTimingThresholdMs = 100.0
	timingPenaltyCap      = 0.1
	timingPenaltyDivisor  = 1000.0
	largeSampleSize       = 1000
	largeSampleBonus      = 0.05
	smallSampleSize       = 100
	smallSampleBonus      = 0.02
)

// EngineOptions configure a comparison engine. Zero values get sensible
// defaults from NewEngine.
type EngineOptions struct {
	Differ      DifferOptions
	Retries     int
	MaxInFlight int // bulk concurrency cap, 0 means unbounded
	Logger      log.Logger
	Clock       clock.Clock
}

// Engine runs identical queries against a source and target resolver and
// aggregates the differences.
type Engine struct {
	source      ResolverClient
	target      ResolverClient
	differ      *Differ
	retries     int
	maxInFlight int
	log         log.Logger
	clock       clock.Clock
}

// NewEngine wires a comparison engine over two resolver clients.
func NewEngine(source, target ResolverClient, opts EngineOptions) (*Engine, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("compare engine requires both source and target clients")
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &Engine{
		source:      source,
		target:      target,
		differ:      NewDiffer(opts.Differ),
		retries:     opts.Retries,
		maxInFlight: opts.MaxInFlight,
		log:         opts.Logger,
		clock:       opts.Clock,
	}, nil
}

// CompareSingle runs one query against both resolvers concurrently and diffs
// the answers.
func (e *Engine) CompareSingle(ctx context.Context, q domain.DNSQuery) domain.ResponseDiff {
	var src, tgt domain.DNSResponse
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		src = e.queryWithRetry(ctx, e.source, q)
	}()
	go func() {
		defer wg.Done()
		tgt = e.queryWithRetry(ctx, e.target, q)
	}()
	wg.Wait()

	return e.differ.Compare(src, tgt)
}

// queryWithRetry retries failed queries with exponential backoff. After the
// final attempt the last failure response is returned as-is, so callers
// always see a synthetic SERVFAIL rather than an error.
func (e *Engine) queryWithRetry(ctx context.Context, c ResolverClient, q domain.DNSQuery) domain.DNSResponse {
	var resp domain.DNSResponse
	for attempt := 0; attempt < e.retries; attempt++ {
		resp = c.Query(ctx, q)
		if !resp.Failed() {
			return resp
		}
		if attempt == e.retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return resp
		case <-time.After(retryBaseDelay << attempt):
		}
	}
	e.log.Debug(map[string]any{
		"resolver": c.Type(),
		"query":    q.Name,
		"error":    resp.Error,
	}, "query failed after retries")
	return resp
}

// CompareBulk fans queries out across both resolvers and aggregates the
// diffs. Only mismatches are retained in the result. A panicking comparison
// goroutine is recovered and counted as a mismatch.
func (e *Engine) CompareBulk(ctx context.Context, queries []domain.DNSQuery) domain.CompareResult {
	diffs := make([]domain.ResponseDiff, len(queries))

	var sem chan struct{}
	if e.maxInFlight > 0 {
		sem = make(chan struct{}, e.maxInFlight)
	}

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q domain.DNSQuery) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.log.Error(map[string]any{"query": q.Name, "panic": r}, "comparison panicked")
					diffs[i] = domain.ResponseDiff{Query: q}
				}
			}()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			diffs[i] = e.CompareSingle(ctx, q)
		}(i, q)
	}
	wg.Wait()

	result := domain.CompareResult{
		Source:        e.source.Type(),
		Target:        e.target.Type(),
		QueriesTested: len(queries),
		Timestamp:     e.clock.Now(),
	}

	var totalAbsTiming time.Duration
	for _, d := range diffs {
		if d.Match {
			result.Matches++
		} else {
			result.Mismatches++
			result.Diffs = append(result.Diffs, d)
		}
		if d.TimingDiff < 0 {
			totalAbsTiming -= d.TimingDiff
		} else {
			totalAbsTiming += d.TimingDiff
		}
	}

	if result.QueriesTested > 0 {
		result.MatchRatio = float64(result.Matches) / float64(result.QueriesTested)
		result.AvgTimingDiff = totalAbsTiming / time.Duration(result.QueriesTested)
	}
	result.ConfidenceScore = Confidence(result.MatchRatio, result.AvgTimingDiff, result.QueriesTested)
	return result
}

// CompareFromFile loads a query list from path and runs CompareBulk over it.
func (e *Engine) CompareFromFile(ctx context.Context, path string) (domain.CompareResult, error) {
	queries, err := LoadQueryFile(path)
	if err != nil {
		return domain.CompareResult{}, fmt.Errorf("loading query file: %w", err)
	}
	return e.CompareBulk(ctx, queries), nil
}

// Confidence turns a match ratio into a migration-readiness score in [0,1].
// Slow average response diffs shave up to 0.1 off the ratio; sample sizes of
// 100 and 1000 queries earn small bonuses.
func Confidence(matchRatio float64, avgTimingDiff time.Duration, queries int) float64 {
	score := matchRatio

	avgMs := float64(avgTimingDiff) / float64(time.Millisecond)
	if avgMs > slowTimingThresholdMs {
		penalty := avgMs / timingPenaltyDivisor
		if penalty > timingPenaltyCap {
			penalty = timingPenaltyCap
		}
		score -= penalty
	}

	switch {
	case queries >= largeSampleSize:
		score += largeSampleBonus
	case queries >= smallSampleSize:
		score += smallSampleBonus
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
