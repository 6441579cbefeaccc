package analysis

import (
	"context"

	"github.com/atlas-kg/atlas/pkg/traversal"

	"golang.org/x/sync/errgroup"
)

// ImpactSummary aggregates both directions of an impact analysis into a
// single categorical assessment.
type ImpactSummary struct {
	RiskLevel        RiskLevel          `json:"risk_level"`
	CriticalCount    int                `json:"critical_count"`
	CriticalEntities []ScoredDependency `json:"critical_entities"`
	TypeDistribution map[string]int     `json:"type_distribution"`
}

// ImpactReport combines upstream and downstream results with their summary.
type ImpactReport struct {
	Upstream   *ImpactResult `json:"upstream"`
	Downstream *ImpactResult `json:"downstream"`
	Summary    ImpactSummary `json:"summary"`
}

// AnalyzeImpact runs the upstream and downstream analyses for the named
// entity and summarizes them. The two sides are independent and run in
// parallel. A collaborator failure on either side degrades that side to an
// empty result; the summary covers whatever succeeded and the call never
// fails for collaborator reasons.
func (a *Analyzer) AnalyzeImpact(ctx context.Context, entityName string, opts *Options) (*ImpactReport, error) {
	resolved, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	report := &ImpactReport{}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		report.Upstream = a.analyzeDirection(gCtx, entityName, traversal.Upstream, resolved)
		return nil
	})
	eg.Go(func() error {
		report.Downstream = a.analyzeDirection(gCtx, entityName, traversal.Downstream, resolved)
		return nil
	})
	// The sides degrade internally and never return an error.
	_ = eg.Wait()

	report.Summary = a.summarize(report.Upstream, report.Downstream)
	return report, nil
}

func (a *Analyzer) summarize(upstream, downstream *ImpactResult) ImpactSummary {
	summary := ImpactSummary{
		CriticalEntities: []ScoredDependency{},
		TypeDistribution: make(map[string]int),
	}

	total := 0
	seenCritical := make(map[string]struct{})
	for _, side := range []*ImpactResult{upstream, downstream} {
		for _, dep := range side.Dependencies {
			total++
			// An entity appearing on both sides counts once per side.
			summary.TypeDistribution[dep.Type]++

			if dep.Importance < CriticalImportance {
				continue
			}
			if _, ok := seenCritical[dep.ID]; ok {
				continue
			}
			seenCritical[dep.ID] = struct{}{}
			summary.CriticalEntities = append(summary.CriticalEntities, dep)
		}
	}

	summary.CriticalCount = len(summary.CriticalEntities)
	summary.RiskLevel = a.thresholds.Level(total, summary.CriticalCount)
	return summary
}
