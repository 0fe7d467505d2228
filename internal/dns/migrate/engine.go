package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/haukened/rr-shift/internal/dns/common/clock"
	"github.com/haukened/rr-shift/internal/dns/common/log"
	"github.com/haukened/rr-shift/internal/dns/compare"
	"github.com/haukened/rr-shift/internal/dns/domain"
)

// Contract violations surfaced as sentinel errors.
var (
	ErrNotPlanned = errors.New("no migration planned; call Plan first")
	ErrNoRollback = errors.New("no rollback information available")
)

// Confidence gates. The final validation after all steps is stricter than
// the mid-plan validate step.
const (
	ValidationConfidenceGate = 0.95
	stepValidationGate       = 0.90
)

const DefaultBackupDir = "/var/lib/rr-shift/backups"

// EngineOptions configure a migration engine.
type EngineOptions struct {
	BackupDir         string
	ValidationQueries []domain.DNSQuery
	Comparer          *compare.Engine // built from the clients when nil
	Logger            log.Logger
	Clock             clock.Clock
}

// Engine orchestrates one migration end to end: plan, execute with backup,
// validate by live comparison, and roll back on demand.
type Engine struct {
	source   compare.ResolverClient
	target   compare.ResolverClient
	migrator Migrator
	comparer *compare.Engine

	backupDir         string
	validationQueries []domain.DNSQuery
	handlers          map[string]stepHandler
	log               log.Logger
	clock             clock.Clock

	mu       sync.Mutex
	status   *domain.MigrationStatus
	rollback *domain.RollbackInfo
}

type stepHandler func(ctx context.Context, step domain.MigrationStep) bool

// NewEngine wires a migration engine over two resolver clients and a
// direction-specific migrator.
func NewEngine(source, target compare.ResolverClient, migrator Migrator, opts EngineOptions) (*Engine, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("migration engine requires both source and target clients")
	}
	if migrator == nil {
		return nil, fmt.Errorf("migration engine requires a migrator")
	}
	if opts.BackupDir == "" {
		opts.BackupDir = DefaultBackupDir
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Comparer == nil {
		c, err := compare.NewEngine(source, target, compare.EngineOptions{
			Logger: opts.Logger,
			Clock:  opts.Clock,
		})
		if err != nil {
			return nil, err
		}
		opts.Comparer = c
	}
	if len(opts.ValidationQueries) == 0 {
		opts.ValidationQueries = DefaultValidationQueries()
	}

	e := &Engine{
		source:            source,
		target:            target,
		migrator:          migrator,
		comparer:          opts.Comparer,
		backupDir:         opts.BackupDir,
		validationQueries: opts.ValidationQueries,
		log:               opts.Logger,
		clock:             opts.Clock,
	}
	e.handlers = map[string]stepHandler{
		"backup_config":       func(context.Context, domain.MigrationStep) bool { return true },
		"validate_source":     func(context.Context, domain.MigrationStep) bool { return true },
		"write_target_config": e.stepWriteTargetConfig,
		"start_target":        e.stepStartTarget,
		"stop_source":         e.stepStopSource,
		"reload_target":       e.stepReloadTarget,
		"validate":            e.stepValidate,
		"validate_parallel":   e.stepValidate,
	}
	return e, nil
}

// DefaultValidationQueries is the standard post-migration probe set: a mix
// of high-traffic names and record types both resolvers must agree on.
func DefaultValidationQueries() []domain.DNSQuery {
	specs := []struct {
		name  string
		rtype domain.RecordType
	}{
		{"google.com", domain.RecordTypeA},
		{"google.com", domain.RecordTypeAAAA},
		{"cloudflare.com", domain.RecordTypeA},
		{"amazon.com", domain.RecordTypeA},
		{"microsoft.com", domain.RecordTypeA},
		{"github.com", domain.RecordTypeA},
		{"example.com", domain.RecordTypeA},
		{"example.com", domain.RecordTypeMX},
		{"example.com", domain.RecordTypeTXT},
	}
	queries := make([]domain.DNSQuery, 0, len(specs))
	for _, s := range specs {
		q, err := domain.NewDNSQuery(s.name, s.rtype)
		if err != nil {
			continue
		}
		queries = append(queries, q)
	}
	return queries
}

// Status returns a copy of the current migration status, or nil before Plan.
func (e *Engine) Status() *domain.MigrationStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == nil {
		return nil
	}
	s := *e.status
	return &s
}

// Plan reads the source configuration, analyzes it, generates the target
// config and step list, and estimates risk. The engine transitions to the
// planned state.
func (e *Engine) Plan(ctx context.Context) (domain.MigrationPlan, error) {
	sourceConfig, err := e.source.GetConfig(ctx)
	if err != nil {
		return domain.MigrationPlan{}, fmt.Errorf("reading source config: %w", err)
	}

	analysis, err := e.migrator.AnalyzeConfig(sourceConfig)
	if err != nil {
		return domain.MigrationPlan{}, fmt.Errorf("analyzing source config: %w", err)
	}
	targetConfig, err := e.migrator.GenerateTargetConfig(sourceConfig)
	if err != nil {
		return domain.MigrationPlan{}, fmt.Errorf("generating target config: %w", err)
	}
	steps := e.migrator.GenerateMigrationSteps(sourceConfig, targetConfig)

	plan := domain.MigrationPlan{
		Source:              e.migrator.SourceType(),
		Target:              e.migrator.TargetType(),
		Steps:               steps,
		Mappings:            analysis.Mappings,
		Warnings:            analysis.Warnings,
		UnsupportedFeatures: analysis.Unsupported,
		EstimatedRisk:       EstimateRisk(analysis.Mappings, analysis.Unsupported, len(steps)),
		CreatedAt:           e.clock.Now(),
	}
	if err := plan.Validate(); err != nil {
		return domain.MigrationPlan{}, err
	}

	e.mu.Lock()
	e.status = &domain.MigrationStatus{
		State:       domain.MigrationPlanned,
		Plan:        plan,
		CurrentStep: 0,
	}
	e.mu.Unlock()

	e.log.Info(map[string]any{
		"source": plan.Source,
		"target": plan.Target,
		"steps":  len(plan.Steps),
		"risk":   plan.EstimatedRisk,
	}, "migration planned")
	return plan, nil
}

// ValidateBaseline compares the two resolvers before migrating, establishing
// the expected behavior. With no queries given, the default probe set runs.
func (e *Engine) ValidateBaseline(ctx context.Context, queries []domain.DNSQuery) domain.CompareResult {
	if len(queries) == 0 {
		queries = e.validationQueries
	}
	return e.comparer.CompareBulk(ctx, queries)
}

// ExecuteOptions control one Execute run.
type ExecuteOptions struct {
	// DryRun walks the plan without touching either resolver. The backup is
	// simulated: rollback info is assembled in memory but nothing is written
	// to disk.
	DryRun bool
}

// Execute runs the planned steps in order. The first failing step halts the
// run and marks the migration failed. After all steps pass, responses from
// both resolvers are compared and the migration only completes when the
// confidence score clears the validation gate.
func (e *Engine) Execute(ctx context.Context, opts ExecuteOptions) (domain.MigrationStatus, error) {
	e.mu.Lock()
	if e.status == nil || e.status.State != domain.MigrationPlanned {
		e.mu.Unlock()
		return domain.MigrationStatus{}, ErrNotPlanned
	}
	status := e.status
	status.State = domain.MigrationInProgress
	started := e.clock.Now()
	status.StartedAt = &started
	e.mu.Unlock()

	if err := e.createBackup(ctx, opts.DryRun); err != nil {
		e.failWith(status, fmt.Sprintf("backup failed: %v", err))
		return e.snapshot(), nil
	}

	for i, step := range status.Plan.Steps {
		e.mu.Lock()
		status.CurrentStep = i
		e.mu.Unlock()

		if opts.DryRun {
			e.log.Info(map[string]any{"step": i + 1, "action": step.Action}, "dry run: skipping execution")
			e.markCompleted(status, i)
			continue
		}

		if !e.executeStep(ctx, step) {
			e.mu.Lock()
			status.State = domain.MigrationFailed
			failed := i
			status.FailedStep = &failed
			e.mu.Unlock()
			e.log.Error(map[string]any{"step": i, "action": step.Action}, "migration step failed")
			return e.snapshot(), nil
		}
		e.markCompleted(status, i)
	}

	e.mu.Lock()
	status.State = domain.MigrationValidating
	e.mu.Unlock()

	validation := e.comparer.CompareBulk(ctx, e.validationQueries)

	e.mu.Lock()
	status.ValidationResult = &validation
	if validation.ConfidenceScore >= ValidationConfidenceGate {
		status.State = domain.MigrationCompleted
	} else {
		status.State = domain.MigrationFailed
		status.Error = fmt.Sprintf("validation failed: %.2f confidence below %.2f gate",
			validation.ConfidenceScore, ValidationConfidenceGate)
	}
	completed := e.clock.Now()
	status.CompletedAt = &completed
	state := status.State
	e.mu.Unlock()

	e.log.Info(map[string]any{
		"state":      state,
		"confidence": validation.ConfidenceScore,
	}, "migration finished")
	return e.snapshot(), nil
}

// Rollback restores the original source configuration and walks the recorded
// rollback steps.
func (e *Engine) Rollback(ctx context.Context) (domain.MigrationStatus, error) {
	e.mu.Lock()
	if e.status == nil {
		e.mu.Unlock()
		return domain.MigrationStatus{}, ErrNotPlanned
	}
	rollback := e.rollback
	status := e.status
	e.mu.Unlock()

	if rollback == nil {
		return domain.MigrationStatus{}, ErrNoRollback
	}

	if err := e.source.ApplyConfig(ctx, rollback.OriginalConfig); err != nil {
		e.mu.Lock()
		status.Error = fmt.Sprintf("rollback failed: %v", err)
		e.mu.Unlock()
		return e.snapshot(), fmt.Errorf("restoring original config: %w", err)
	}

	for _, step := range rollback.RollbackSteps {
		e.executeStep(ctx, step)
	}

	e.mu.Lock()
	status.State = domain.MigrationRolledBack
	completed := e.clock.Now()
	status.CompletedAt = &completed
	e.mu.Unlock()

	e.log.Info(map[string]any{"backup": rollback.BackupPath}, "migration rolled back")
	return e.snapshot(), nil
}

// createBackup snapshots the source configuration under a timestamped
// directory and records rollback info. In dry-run mode nothing touches disk.
func (e *Engine) createBackup(ctx context.Context, dryRun bool) error {
	sourceConfig, err := e.source.GetConfig(ctx)
	if err != nil {
		return err
	}

	backupPath := filepath.Join(e.backupDir,
		"backup_"+e.clock.Now().UTC().Format("20060102_150405"))

	if !dryRun {
		if err := os.MkdirAll(backupPath, 0o755); err != nil {
			return err
		}
		file := filepath.Join(backupPath, "source_config.txt")
		if err := os.WriteFile(file, []byte(sourceConfig), 0o644); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.rollback = &domain.RollbackInfo{
		BackupPath:     backupPath,
		OriginalConfig: sourceConfig,
		RollbackSteps:  e.reverseSteps(e.status.Plan.Steps),
		CreatedAt:      e.clock.Now(),
	}
	e.mu.Unlock()
	return nil
}

// reverseSteps builds the rollback sequence: reversible steps in reverse
// order, with source and target configs swapped.
func (e *Engine) reverseSteps(steps []domain.MigrationStep) []domain.MigrationStep {
	var out []domain.MigrationStep
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		if !s.Reversible {
			continue
		}
		out = append(out, domain.MigrationStep{
			Order:        len(out),
			Action:       "rollback_" + s.Action,
			Description:  "Rollback: " + s.Description,
			SourceConfig: s.TargetConfig,
			TargetConfig: s.SourceConfig,
			Reversible:   false,
		})
	}
	return out
}

// executeStep dispatches one step. Manual steps are reported successful
// without automated action; unknown actions are logged and skipped rather
// than failing the plan, so templates can grow actions older engines ignore.
func (e *Engine) executeStep(ctx context.Context, step domain.MigrationStep) bool {
	e.log.Info(map[string]any{"action": step.Action}, step.Description)

	if step.ManualRequired {
		e.log.Warn(map[string]any{"action": step.Action}, "manual action required")
		return true
	}

	handler, ok := e.handlers[step.Action]
	if !ok {
		e.log.Warn(map[string]any{"action": step.Action}, "unknown migration action, skipping")
		return true
	}
	return handler(ctx, step)
}

func (e *Engine) stepWriteTargetConfig(ctx context.Context, step domain.MigrationStep) bool {
	if step.TargetConfig == "" {
		return true
	}
	if err := e.target.ApplyConfig(ctx, step.TargetConfig); err != nil {
		e.log.Error(map[string]any{"error": err.Error()}, "applying target config failed")
		return false
	}
	return true
}

func (e *Engine) stepStartTarget(ctx context.Context, _ domain.MigrationStep) bool {
	return e.target.Start(ctx).Success
}

func (e *Engine) stepStopSource(ctx context.Context, _ domain.MigrationStep) bool {
	return e.source.Stop(ctx).Success
}

func (e *Engine) stepReloadTarget(ctx context.Context, _ domain.MigrationStep) bool {
	return e.target.Reload(ctx).Success
}

func (e *Engine) stepValidate(ctx context.Context, _ domain.MigrationStep) bool {
	result := e.comparer.CompareBulk(ctx, e.validationQueries)
	return result.ConfidenceScore >= stepValidationGate
}

func (e *Engine) markCompleted(status *domain.MigrationStatus, step int) {
	e.mu.Lock()
	status.CompletedSteps = append(status.CompletedSteps, step)
	e.mu.Unlock()
}

func (e *Engine) failWith(status *domain.MigrationStatus, msg string) {
	e.mu.Lock()
	status.State = domain.MigrationFailed
	status.Error = msg
	e.mu.Unlock()
}

func (e *Engine) snapshot() domain.MigrationStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.status
}
