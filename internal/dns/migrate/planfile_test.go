package migrate

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

func TestPlanFile_RoundTrip(t *testing.T) {
	m := CoreDNSToUnbound{}
	target, err := m.GenerateTargetConfig(forwardOnlyCorefile)
	require.NoError(t, err)

	plan := domain.MigrationPlan{
		Source:        domain.ResolverCoreDNS,
		Target:        domain.ResolverUnbound,
		Steps:         m.GenerateMigrationSteps(forwardOnlyCorefile, target),
		Warnings:      []string{"something to review"},
		EstimatedRisk: domain.RiskLow,
		CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, SavePlan(path, plan))

	loaded, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, plan.Source, loaded.Source)
	assert.Equal(t, plan.Target, loaded.Target)
	assert.Equal(t, plan.Steps, loaded.Steps)
	assert.Equal(t, plan.Warnings, loaded.Warnings)
	assert.True(t, plan.CreatedAt.Equal(loaded.CreatedAt))
}

func TestLoadPlan_RejectsInvalidPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, SavePlan(path, domain.MigrationPlan{}))

	_, err := LoadPlan(path)
	assert.Error(t, err)
}

func TestLoadPlan_MissingFile(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
