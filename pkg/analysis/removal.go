package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlas-kg/atlas/pkg/logger"
	"github.com/atlas-kg/atlas/pkg/traversal"
)

// maxListedCriticalEntities bounds how many critical entity names a
// recommendation spells out.
const maxListedCriticalEntities = 3

// RemovalImpact buckets the entities affected by a simulated removal.
// DirectlyAffected and IndirectlyAffected partition the impacted set by
// distance; CriticallyAffected overlaps them, holding every impacted entity
// whose importance reaches the critical cutoff regardless of distance.
type RemovalImpact struct {
	DirectlyAffected   []ScoredDependency `json:"directly_affected"`
	IndirectlyAffected []ScoredDependency `json:"indirectly_affected"`
	CriticallyAffected []ScoredDependency `json:"critically_affected"`
}

// RemovalReport is the outcome of a removal simulation.
type RemovalReport struct {
	SimulatedEntity string        `json:"simulated_entity"`
	Action          string        `json:"action"`
	Impact          RemovalImpact `json:"impact"`
	RiskLevel       RiskLevel     `json:"risk_level"`
	Recommendation  string        `json:"recommendation"`
}

// SimulateRemoval discovers everything that would be affected if the named
// entity were removed and buckets it by severity. The downstream traversal
// is cross-checked against a direct edge count, since a dependent reachable
// over several path lengths is still a direct dependent when an edge leads
// straight to it. A collaborator failure on either query yields an empty
// impact at low risk with a recommendation noting the analysis was
// incomplete; the call never fails for collaborator reasons.
func (a *Analyzer) SimulateRemoval(ctx context.Context, entityName string, opts *Options) (*RemovalReport, error) {
	resolved, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	report := &RemovalReport{
		SimulatedEntity: entityName,
		Action:          "removal",
		Impact: RemovalImpact{
			DirectlyAffected:   []ScoredDependency{},
			IndirectlyAffected: []ScoredDependency{},
			CriticallyAffected: []ScoredDependency{},
		},
		RiskLevel: RiskLow,
	}

	downstream := a.analyzeDirection(ctx, entityName, traversal.Downstream, resolved)
	if downstream.Failed() {
		report.Recommendation = incompleteRecommendation(entityName, downstream.Metadata.Error)
		return report, nil
	}

	directCounts, err := a.reader.CountDirectDependents(ctx, entityName)
	if err != nil {
		logger.Warn("Direct edge count failed, removal analysis incomplete",
			"entity", entityName,
			"err", err,
		)
		report.Recommendation = incompleteRecommendation(entityName, err.Error())
		return report, nil
	}

	for _, dep := range downstream.Dependencies {
		if dep.Depth == 1 || directCounts[dep.ID] > 0 {
			report.Impact.DirectlyAffected = append(report.Impact.DirectlyAffected, dep)
		} else {
			report.Impact.IndirectlyAffected = append(report.Impact.IndirectlyAffected, dep)
		}
		if dep.Importance >= CriticalImportance {
			report.Impact.CriticallyAffected = append(report.Impact.CriticallyAffected, dep)
		}
	}

	total := len(downstream.Dependencies)
	criticalCount := len(report.Impact.CriticallyAffected)
	report.RiskLevel = a.thresholds.Level(total, criticalCount)
	report.Recommendation = recommend(entityName, report.RiskLevel, total, report.Impact.CriticallyAffected)
	return report, nil
}

func recommend(entityName string, level RiskLevel, total int, critical []ScoredDependency) string {
	switch level {
	case RiskLow:
		if total == 0 {
			return fmt.Sprintf("No dependents found. %s is safe to remove.", entityName)
		}
		return fmt.Sprintf("Removing %s affects %d entities of low importance. Safe to remove with standard review.", entityName, total)
	case RiskMedium:
		return fmt.Sprintf("Removing %s affects %d entities. Review the impacted entities before proceeding.", entityName, total)
	case RiskHigh:
		return fmt.Sprintf("Removing %s affects %d entities including critical ones. Coordinate with owners of the affected entities first.", entityName, total)
	default:
		names := make([]string, 0, maxListedCriticalEntities)
		for _, dep := range critical {
			if len(names) == maxListedCriticalEntities {
				break
			}
			names = append(names, dep.Name)
		}
		return fmt.Sprintf(
			"Do not remove %s without a migration plan: %d entities are affected, %d of them critical (%s).",
			entityName, total, len(critical), strings.Join(names, ", "),
		)
	}
}

func incompleteRecommendation(entityName, cause string) string {
	return fmt.Sprintf("Impact analysis for %s was incomplete (%s). Re-run before acting on this result.", entityName, cause)
}
