package compare

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/haukened/rr-shift/internal/dns/common/clock"
	"github.com/haukened/rr-shift/internal/dns/common/log"
	"github.com/haukened/rr-shift/internal/dns/domain"
)

func defaultRandFloat() float64 { return rand.Float64() }

// minAlertQueries is the sample floor below which the mismatch rate is too
// noisy to alert on.
const minAlertQueries = 100

// Shadow samples live queries against both resolvers and accumulates a
// report. It is safe for concurrent ProcessQuery calls.
type Shadow struct {
	cfg    domain.ShadowConfig
	engine *Engine
	log    log.Logger
	clock  clock.Clock

	mu        sync.Mutex
	report    domain.ShadowReport
	callbacks []func(domain.ResponseDiff)
	lastAlert time.Time

	// test seams
	randFloat func() float64
	alertFn   func(report domain.ShadowReport)
}

// NewShadow builds a shadow session over an existing comparison engine.
func NewShadow(engine *Engine, cfg domain.ShadowConfig, started time.Time) (*Shadow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Shadow{
		cfg:       cfg,
		engine:    engine,
		log:       engine.log,
		clock:     engine.clock,
		report:    domain.ShadowReport{Config: cfg, StartedAt: started},
		randFloat: defaultRandFloat,
	}, nil
}

// OnMismatch registers a callback invoked for every sampled mismatch. A
// panicking callback is recovered and logged; it never takes down the
// session.
func (s *Shadow) OnMismatch(fn func(domain.ResponseDiff)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// ProcessQuery samples one query. Returns the diff and true when the query
// was sampled, or a zero diff and false when the sampling rate skipped it.
func (s *Shadow) ProcessQuery(ctx context.Context, q domain.DNSQuery) (domain.ResponseDiff, bool) {
	if s.randFloat() >= s.cfg.SampleRate {
		return domain.ResponseDiff{}, false
	}

	diff := s.engine.CompareSingle(ctx, q)

	s.mu.Lock()
	s.report.Observe(diff)
	if diff.SourceResponse.Failed() || diff.TargetResponse.Failed() {
		s.report.Errors++
	}
	callbacks := s.callbacks
	shouldAlert := s.shouldAlertLocked()
	report := s.report
	s.mu.Unlock()

	if !diff.Match {
		for _, fn := range callbacks {
			s.invokeCallback(fn, diff)
		}
	}
	if shouldAlert {
		s.alert(report)
	}
	return diff, true
}

// shouldAlertLocked evaluates the alert condition and claims the cooldown
// window. Callers must hold s.mu.
func (s *Shadow) shouldAlertLocked() bool {
	if !s.cfg.AlertOnMismatch {
		return false
	}
	if s.report.QueriesProcessed < minAlertQueries {
		return false
	}
	if s.report.MismatchRate <= s.cfg.AlertThreshold {
		return false
	}
	now := s.clock.Now()
	if s.cfg.AlertCooldown > 0 && now.Sub(s.lastAlert) < s.cfg.AlertCooldown {
		return false
	}
	s.lastAlert = now
	return true
}

func (s *Shadow) alert(report domain.ShadowReport) {
	s.log.Warn(map[string]any{
		"mismatch_rate": report.MismatchRate,
		"threshold":     s.cfg.AlertThreshold,
		"queries":       report.QueriesProcessed,
	}, "shadow mismatch rate over threshold")
	if s.alertFn != nil {
		s.alertFn(report)
	}
}

func (s *Shadow) invokeCallback(fn func(domain.ResponseDiff), diff domain.ResponseDiff) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(map[string]any{"panic": r}, "mismatch callback panicked")
		}
	}()
	fn(diff)
}

// Run consumes queries until the channel closes, the context is canceled, or
// the configured session duration elapses. Sampled mismatches are delivered
// on the returned channel, which is closed when the session ends.
func (s *Shadow) Run(ctx context.Context, queries <-chan domain.DNSQuery) <-chan domain.ResponseDiff {
	out := make(chan domain.ResponseDiff)

	go func() {
		defer close(out)
		defer s.finish()

		var deadline <-chan time.Time
		if s.cfg.Duration > 0 {
			timer := time.NewTimer(s.cfg.Duration)
			defer timer.Stop()
			deadline = timer.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-deadline:
				return
			case q, ok := <-queries:
				if !ok {
					return
				}
				diff, sampled := s.ProcessQuery(ctx, q)
				if !sampled || diff.Match {
					continue
				}
				select {
				case out <- diff:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Report returns a snapshot of the session so far.
func (s *Shadow) Report() domain.ShadowReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

func (s *Shadow) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ended := s.clock.Now()
	s.report.EndedAt = &ended
}
