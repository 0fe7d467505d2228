package domain

import (
	"fmt"
	"time"
)

// MigrationState tracks where a migration is in its lifecycle.
type MigrationState string

const (
	MigrationPlanned    MigrationState = "planned"
	MigrationInProgress MigrationState = "in_progress"
	MigrationValidating MigrationState = "validating"
	MigrationCompleted  MigrationState = "completed"
	MigrationFailed     MigrationState = "failed"
	MigrationRolledBack MigrationState = "rolled_back"
)

// RiskLevel classifies a migration plan's estimated risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// MigrationStep is one ordered unit of work in a plan. Steps form a linear
// sequence; there is no branching. A step with ManualRequired set is reported
// as successful without any automated action.
type MigrationStep struct {
	Order          int    `json:"order"`
	Action         string `json:"action"`
	Description    string `json:"description"`
	SourceConfig   string `json:"source_config,omitempty"`
	TargetConfig   string `json:"target_config,omitempty"`
	Reversible     bool   `json:"reversible"`
	ManualRequired bool   `json:"manual_required,omitempty"`
}

// MigrationPlan is the full output of planning one migration. It is
// immutable after creation except as embedded inside a MigrationStatus.
type MigrationPlan struct {
	Source              ResolverType     `json:"source"`
	Target              ResolverType     `json:"target"`
	Steps               []MigrationStep  `json:"steps"`
	Mappings            []FeatureMapping `json:"mappings,omitempty"`
	Warnings            []string         `json:"warnings,omitempty"`
	UnsupportedFeatures []string         `json:"unsupported_features,omitempty"`
	EstimatedRisk       RiskLevel        `json:"estimated_risk"`
	CreatedAt           time.Time        `json:"created_at"`
}

// Validate checks structural soundness of the plan.
func (p MigrationPlan) Validate() error {
	if !p.Source.IsValid() {
		return fmt.Errorf("invalid source resolver: %q", p.Source)
	}
	if !p.Target.IsValid() {
		return fmt.Errorf("invalid target resolver: %q", p.Target)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}
	for i, s := range p.Steps {
		if s.Action == "" {
			return fmt.Errorf("step %d has no action", i)
		}
	}
	return nil
}

// MigrationStatus wraps a plan with its execution state.
type MigrationStatus struct {
	State            MigrationState `json:"state"`
	Plan             MigrationPlan  `json:"plan"`
	CurrentStep      int            `json:"current_step"`
	CompletedSteps   []int          `json:"completed_steps,omitempty"`
	FailedStep       *int           `json:"failed_step,omitempty"`
	Error            string         `json:"error,omitempty"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	ValidationResult *CompareResult `json:"validation_result,omitempty"`
}

// RollbackInfo holds what is needed to undo a migration: the on-disk backup
// location, the original source config text, and the reversed step list.
type RollbackInfo struct {
	BackupPath     string          `json:"backup_path"`
	OriginalConfig string          `json:"original_config"`
	RollbackSteps  []MigrationStep `json:"rollback_steps"`
	CreatedAt      time.Time       `json:"created_at"`
}
