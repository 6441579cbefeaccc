package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/atlas-kg/atlas/pkg/common"
	"github.com/atlas-kg/atlas/pkg/logger"
	"github.com/atlas-kg/atlas/pkg/score"
	"github.com/atlas-kg/atlas/pkg/store"
	"github.com/atlas-kg/atlas/pkg/traversal"
)

// ScoredDependency is one row of an upstream or downstream result.
type ScoredDependency struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
	Depth       int     `json:"depth"`
	ImpactScore float64 `json:"impact_score"`
}

// ResultMetadata carries counters for an ImpactResult. Error is set only
// when the graph collaborator failed and the result degraded to an empty
// list; the shape stays valid either way.
type ResultMetadata struct {
	TotalDependencies int    `json:"total_dependencies"`
	MaxDepth          int    `json:"max_depth"`
	Error             string `json:"error,omitempty"`
}

// ImpactResult is the outcome of one directional dependency analysis.
type ImpactResult struct {
	SourceEntity string              `json:"source_entity"`
	Direction    traversal.Direction `json:"direction"`
	Dependencies []ScoredDependency  `json:"dependencies"`
	Description  string              `json:"description"`
	Metadata     ResultMetadata      `json:"metadata"`
}

// Failed reports whether this result degraded due to a collaborator
// failure.
func (r *ImpactResult) Failed() bool {
	return r.Metadata.Error != ""
}

// Analyzer answers impact questions about single entities: what they depend
// on, what depends on them, and what removing them would break. Results of
// the directional analyses are memoized in a TTL cache.
//
// An Analyzer is safe for concurrent use.
type Analyzer struct {
	reader     store.GraphReader
	cache      *resultCache
	thresholds RiskThresholds
}

// NewAnalyzerParams configures a new Analyzer.
//
// CacheTTL bounds how long a cached directional result stays valid;
// zero selects the default. Thresholds overrides the risk scale; a zero
// value selects the default scale.
type NewAnalyzerParams struct {
	Reader     store.GraphReader
	CacheTTL   time.Duration
	Thresholds RiskThresholds
}

// NewAnalyzer creates an Analyzer reading from the given graph collaborator.
func NewAnalyzer(params NewAnalyzerParams) (*Analyzer, error) {
	if params.Reader == nil {
		return nil, fmt.Errorf("analysis: graph reader is required")
	}
	thresholds := params.Thresholds
	if thresholds == (RiskThresholds{}) {
		thresholds = DefaultRiskThresholds
	}
	return &Analyzer{
		reader:     params.Reader,
		cache:      newResultCache(params.CacheTTL),
		thresholds: thresholds,
	}, nil
}

// GetUpstreamDependencies returns everything the named entity depends on,
// scored by distance-decayed importance. A collaborator failure degrades to
// an empty result carrying the diagnostic in Metadata.Error; only invalid
// options produce an error.
func (a *Analyzer) GetUpstreamDependencies(ctx context.Context, entityName string, opts *Options) (*ImpactResult, error) {
	resolved, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	return a.analyzeDirection(ctx, entityName, traversal.Upstream, resolved), nil
}

// GetDownstreamImpact returns everything that depends on the named entity,
// scored by distance-decayed importance. Failure semantics match
// GetUpstreamDependencies.
func (a *Analyzer) GetDownstreamImpact(ctx context.Context, entityName string, opts *Options) (*ImpactResult, error) {
	resolved, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	return a.analyzeDirection(ctx, entityName, traversal.Downstream, resolved), nil
}

func (a *Analyzer) analyzeDirection(ctx context.Context, entityName string, direction traversal.Direction, opts Options) *ImpactResult {
	result := &ImpactResult{
		SourceEntity: entityName,
		Direction:    direction,
		Dependencies: []ScoredDependency{},
	}

	query, err := traversal.NewQuery(entityName, direction, opts.MaxDepth, opts.MaxEntities)
	if err != nil {
		result.Metadata.Error = err.Error()
		result.Description = describeResult(entityName, direction, 0)
		return result
	}

	paths, err := a.reader.SubmitTraversal(ctx, query)
	if err != nil {
		logger.Warn("Traversal failed, degrading to empty result",
			"entity", entityName,
			"direction", direction,
			"err", err,
		)
		result.Metadata.Error = fmt.Sprintf("traversal failed: %v", err)
		result.Description = describeResult(entityName, direction, 0)
		return result
	}

	result.Dependencies = scorePaths(paths, opts)
	result.Metadata.TotalDependencies = len(result.Dependencies)
	for _, dep := range result.Dependencies {
		if dep.Depth > result.Metadata.MaxDepth {
			result.Metadata.MaxDepth = dep.Depth
		}
	}
	result.Description = describeResult(entityName, direction, len(result.Dependencies))
	return result
}

// scorePaths flattens traversal paths into one deduplicated, scored row per
// entity. An entity reached by several paths keeps the shortest distance
// found, since the impact score decays with distance.
func scorePaths(paths []common.Path, opts Options) []ScoredDependency {
	type occurrence struct {
		entity common.Entity
		depth  int
	}
	closest := make(map[string]occurrence)

	for _, path := range paths {
		for i := 1; i < len(path.Vertices); i++ {
			v := path.Vertices[i]
			if prev, ok := closest[v.ID]; ok && prev.depth <= i {
				continue
			}
			closest[v.ID] = occurrence{entity: v, depth: i}
		}
	}

	deps := make([]ScoredDependency, 0, len(closest))
	for _, occ := range closest {
		importance := 0.0
		base := 1.0
		if opts.IncludeImportance {
			importance = score.DefaultImportance
			if occ.entity.Importance != nil {
				importance = *occ.entity.Importance
			}
			base = importance
		}
		deps = append(deps, ScoredDependency{
			ID:          occ.entity.ID,
			Name:        occ.entity.Name,
			Type:        occ.entity.Type,
			Importance:  importance,
			Depth:       occ.depth,
			ImpactScore: score.ImpactScore(occ.depth, base, opts.DecayFactor),
		})
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].ImpactScore != deps[j].ImpactScore {
			return deps[i].ImpactScore > deps[j].ImpactScore
		}
		if deps[i].Depth != deps[j].Depth {
			return deps[i].Depth < deps[j].Depth
		}
		return deps[i].Name < deps[j].Name
	})
	return deps
}

func describeResult(entityName string, direction traversal.Direction, count int) string {
	if direction == traversal.Upstream {
		return fmt.Sprintf("%s depends on %d entities", entityName, count)
	}
	return fmt.Sprintf("%d entities depend on %s", count, entityName)
}
