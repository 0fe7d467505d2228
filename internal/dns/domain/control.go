package domain

import "time"

// ControlResult reports the outcome of a service control operation
// (start, stop, restart, reload, apply_config). Failures talking to the
// resolver are folded in here; they never surface as errors past the
// resolver client boundary.
type ControlResult struct {
	Action    string    `json:"action"`
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
