package migrate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

// SavePlan writes a plan to path as indented JSON, so operators can review
// and check it into change control before executing.
func SavePlan(path string, plan domain.MigrationPlan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadPlan reads a plan back and validates its structure.
func LoadPlan(path string) (domain.MigrationPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.MigrationPlan{}, err
	}
	var plan domain.MigrationPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return domain.MigrationPlan{}, fmt.Errorf("decoding plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return domain.MigrationPlan{}, fmt.Errorf("invalid plan: %w", err)
	}
	return plan, nil
}
