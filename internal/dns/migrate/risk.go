package migrate

import "github.com/haukened/rr-shift/internal/dns/domain"

// Risk scoring weights and thresholds. The weights are tunable; the
// thresholds are part of the planning contract and covered by tests.
const (
	UnsupportedWeight = 2.0
	ManualWeight      = 1.5
	LongPlanPenalty   = 1.0
	LongPlanSteps     = 10

	HighRiskScore   = 5.0
	MediumRiskScore = 2.0
)

// EstimateRisk scores a plan from its unsupported features, the mappings
// that need manual work, and the step count.
func EstimateRisk(mappings []domain.FeatureMapping, unsupported []string, stepCount int) domain.RiskLevel {
	score := float64(len(unsupported)) * UnsupportedWeight

	for _, m := range mappings {
		if m.RequiresManual {
			score += ManualWeight
		}
	}
	if stepCount > LongPlanSteps {
		score += LongPlanPenalty
	}

	switch {
	case score >= HighRiskScore:
		return domain.RiskHigh
	case score >= MediumRiskScore:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
