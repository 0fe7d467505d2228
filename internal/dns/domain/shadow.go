package domain

import (
	"fmt"
	"time"
)

// MaxShadowSamples caps the mismatch samples retained in a ShadowReport.
// Once the cap is reached new samples are dropped; nothing is evicted.
const MaxShadowSamples = 100

// ShadowConfig controls a shadow-mode comparison session.
//
// AlertCooldown is the minimum time between alerts once the mismatch rate is
// over threshold. Zero means alert on every over-threshold evaluation, which
// matches the historical behavior.
type ShadowConfig struct {
	Source          ResolverType  `json:"source"`
	Target          ResolverType  `json:"target"`
	SampleRate      float64       `json:"sample_rate"`
	AlertOnMismatch bool          `json:"alert_on_mismatch"`
	AlertThreshold  float64       `json:"alert_threshold"`
	AlertCooldown   time.Duration `json:"alert_cooldown,omitempty"`
	Duration        time.Duration `json:"duration,omitempty"`
}

// NewShadowConfig returns a config with the standard defaults: sample
// everything, alert above a 1% mismatch rate.
func NewShadowConfig(source, target ResolverType) ShadowConfig {
	return ShadowConfig{
		Source:          source,
		Target:          target,
		SampleRate:      1.0,
		AlertOnMismatch: true,
		AlertThreshold:  0.01,
	}
}

// Validate checks the config for usable values.
func (c ShadowConfig) Validate() error {
	if !c.Source.IsValid() || !c.Target.IsValid() {
		return fmt.Errorf("shadow config requires valid source and target resolvers")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample rate must be in [0,1], got %v", c.SampleRate)
	}
	if c.AlertThreshold < 0 || c.AlertThreshold > 1 {
		return fmt.Errorf("alert threshold must be in [0,1], got %v", c.AlertThreshold)
	}
	return nil
}

// ShadowReport accumulates results over one shadow-mode session. A report is
// owned by exactly one shadow session and mutated only by it; it is never
// shared across sessions.
type ShadowReport struct {
	Config           ShadowConfig   `json:"config"`
	StartedAt        time.Time      `json:"started_at"`
	EndedAt          *time.Time     `json:"ended_at,omitempty"`
	QueriesProcessed int            `json:"queries_processed"`
	Matches          int            `json:"matches"`
	Mismatches       int            `json:"mismatches"`
	Errors           int            `json:"errors"`
	MismatchRate     float64        `json:"mismatch_rate"`
	SampleMismatches []ResponseDiff `json:"sample_mismatches,omitempty"`
}

// Observe records one comparison outcome and refreshes the running mismatch
// rate. Mismatch samples are kept up to MaxShadowSamples.
func (r *ShadowReport) Observe(diff ResponseDiff) {
	r.QueriesProcessed++
	if diff.Match {
		r.Matches++
	} else {
		r.Mismatches++
		if len(r.SampleMismatches) < MaxShadowSamples {
			r.SampleMismatches = append(r.SampleMismatches, diff)
		}
	}
	if total := r.Matches + r.Mismatches; total > 0 {
		r.MismatchRate = float64(r.Mismatches) / float64(total)
	}
}
