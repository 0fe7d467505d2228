// Package migrate translates resolver configurations between the CoreDNS and
// Unbound dialects and orchestrates the migration itself: planning, staged
// execution with backups, validation against live query comparison, and
// rollback.
package migrate

import (
	"fmt"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

// Migrator is a one-direction configuration translator.
type Migrator interface {
	SourceType() domain.ResolverType
	TargetType() domain.ResolverType

	// AnalyzeConfig inspects source configuration text and reports which
	// features translate, which need manual work, and which do not carry
	// over at all.
	AnalyzeConfig(config string) (Analysis, error)

	// GenerateTargetConfig translates source configuration text into the
	// target dialect. Output is deterministic for a given input.
	GenerateTargetConfig(config string) (string, error)

	// GenerateMigrationSteps produces the ordered step plan, embedding the
	// given config texts into the relevant steps.
	GenerateMigrationSteps(sourceConfig, targetConfig string) []domain.MigrationStep
}

// Analysis is the outcome of AnalyzeConfig.
type Analysis struct {
	Mappings    []domain.FeatureMapping
	Warnings    []string
	Unsupported []string
}

// ForDirection returns the migrator translating source into target.
func ForDirection(source, target domain.ResolverType) (Migrator, error) {
	switch {
	case source == domain.ResolverCoreDNS && target == domain.ResolverUnbound:
		return CoreDNSToUnbound{}, nil
	case source == domain.ResolverUnbound && target == domain.ResolverCoreDNS:
		return UnboundToCoreDNS{}, nil
	default:
		return nil, fmt.Errorf("no migrator for %s -> %s", source, target)
	}
}

// analyzeFeatures is the single generic walk shared by both directions: every
// present feature name is looked up in the direction's table. A missNote, if
// non-empty, sends unmapped names to the unsupported list; an empty missNote
// skips them, for dialects where unmapped options are routine tuning knobs
// rather than features.
func analyzeFeatures(features []string, table map[string]domain.FeatureMapping, missNote string) Analysis {
	var a Analysis
	for _, name := range features {
		mapping, ok := table[name]
		if !ok {
			if missNote != "" {
				a.Unsupported = append(a.Unsupported, fmt.Sprintf("%s: %s", name, missNote))
			}
			continue
		}
		a.Mappings = append(a.Mappings, mapping)
		if !mapping.Supported {
			a.Unsupported = append(a.Unsupported, fmt.Sprintf("%s: %s", name, mapping.Notes))
		} else if mapping.RequiresManual {
			a.Warnings = append(a.Warnings, fmt.Sprintf("%s: Requires manual configuration - %s", name, mapping.Notes))
		}
	}
	return a
}
