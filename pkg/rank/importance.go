package rank

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/atlas-kg/atlas/pkg/common"
	"github.com/atlas-kg/atlas/pkg/logger"
	"github.com/atlas-kg/atlas/pkg/rank/centrality"
	"github.com/atlas-kg/atlas/pkg/score"
	"github.com/atlas-kg/atlas/pkg/store"
)

// weightSumTolerance absorbs float rounding when checking that the
// component weights sum to 1.0.
const weightSumTolerance = 1e-9

// Components holds the normalized signals blended into a composite
// importance score, each in [0,1].
type Components struct {
	PageRank         float64 `json:"page_rank"`
	Betweenness      float64 `json:"betweenness"`
	MentionFrequency float64 `json:"mention_frequency"`
}

// ImportanceRecord is the full importance assessment of one entity. Rank is
// 1-based and dense; ties in the composite score are broken by ascending id
// so the ordering is deterministic.
type ImportanceRecord struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Importance   float64    `json:"importance"`
	Rank         int        `json:"rank"`
	Percentile   float64    `json:"percentile"`
	MentionCount int        `json:"mention_count"`
	Components   Components `json:"components"`
}

// Metadata carries counters for a ranking run. Error is set only when the
// graph collaborator failed and the result degraded to an empty ranking.
type Metadata struct {
	NodeCount int    `json:"node_count"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of one full importance computation.
type Result struct {
	Scores         map[string]float64 `json:"scores"`
	RankedEntities []ImportanceRecord `json:"ranked_entities"`
	Metadata       Metadata           `json:"metadata"`
}

// Config tunes a ranking run. The weights must sum to 1.0.
type Config struct {
	Weights score.Weights
}

// CentralityFunc computes a centrality score mapping over a graph snapshot.
type CentralityFunc func(*common.Graph) *centrality.Result

// Ranker computes composite importance scores over the whole graph by
// blending externally computed centrality signals with mention frequency.
// Every call recomputes from a fresh snapshot; nothing is persisted.
type Ranker struct {
	reader      store.GraphReader
	pageRank    CentralityFunc
	betweenness CentralityFunc
}

// NewRankerParams configures a new Ranker. PageRank and Betweenness
// override the centrality collaborators; nil selects the built-in
// implementations.
type NewRankerParams struct {
	Reader      store.GraphReader
	PageRank    CentralityFunc
	Betweenness CentralityFunc
}

// NewRanker creates a Ranker reading from the given graph collaborator.
func NewRanker(params NewRankerParams) (*Ranker, error) {
	if params.Reader == nil {
		return nil, fmt.Errorf("rank: graph reader is required")
	}
	r := &Ranker{
		reader:      params.Reader,
		pageRank:    params.PageRank,
		betweenness: params.Betweenness,
	}
	if r.pageRank == nil {
		r.pageRank = centrality.PageRank
	}
	if r.betweenness == nil {
		r.betweenness = centrality.Betweenness
	}
	return r, nil
}

// CalculateImportance reads a full snapshot, runs both centrality
// collaborators over it, and blends the normalized signals into one ranked
// importance score per entity. A nil config selects the default weights.
// Invalid weights produce an error; a collaborator failure degrades to an
// empty result carrying the diagnostic in Metadata.Error.
func (r *Ranker) CalculateImportance(ctx context.Context, cfg *Config) (*Result, error) {
	weights := score.DefaultWeights
	if cfg != nil {
		weights = cfg.Weights
	}
	if err := validateWeights(weights); err != nil {
		return nil, err
	}

	result := &Result{
		Scores:         map[string]float64{},
		RankedEntities: []ImportanceRecord{},
	}

	g, err := r.reader.GetAllEntities(ctx)
	if err != nil {
		logger.Warn("Snapshot read failed, degrading to empty ranking", "err", err)
		result.Metadata.Error = fmt.Sprintf("snapshot read failed: %v", err)
		return result, nil
	}
	if g == nil || len(g.Entities) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(g.Entities))
	mentions := make(map[string]float64, len(g.Entities))
	for _, e := range g.Entities {
		ids = append(ids, e.ID)
		count := e.MentionCount
		if count <= 0 {
			count = 1
		}
		mentions[e.ID] = float64(count)
	}

	// Both collaborators run over the same snapshot so the node sets agree.
	pageRank := score.Normalize(ids, r.pageRank(g).Scores)
	betweenness := score.Normalize(ids, r.betweenness(g).Scores)
	mentionFreq := score.Normalize(ids, mentions)

	records := make([]ImportanceRecord, 0, len(g.Entities))
	for _, e := range g.Entities {
		components := Components{
			PageRank:         pageRank[e.ID],
			Betweenness:      betweenness[e.ID],
			MentionFrequency: mentionFreq[e.ID],
		}
		composite := score.Composite(weights, components.PageRank, components.Betweenness, components.MentionFrequency)

		count := e.MentionCount
		if count <= 0 {
			count = 1
		}
		records = append(records, ImportanceRecord{
			ID:           e.ID,
			Name:         e.Name,
			Type:         e.Type,
			Importance:   composite,
			MentionCount: count,
			Components:   components,
		})
		result.Scores[e.ID] = composite
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Importance != records[j].Importance {
			return records[i].Importance > records[j].Importance
		}
		return records[i].ID < records[j].ID
	})

	n := len(records)
	for i := range records {
		records[i].Rank = i + 1
		records[i].Percentile = float64(n-records[i].Rank+1) / float64(n)
	}

	result.RankedEntities = records
	result.Metadata.NodeCount = n
	return result, nil
}

// GetTopEntitiesByImportance returns the n highest-ranked entities, or all
// of them when the graph holds fewer.
func (r *Ranker) GetTopEntitiesByImportance(ctx context.Context, n int) ([]ImportanceRecord, error) {
	if n <= 0 {
		return []ImportanceRecord{}, nil
	}
	result, err := r.CalculateImportance(ctx, nil)
	if err != nil {
		return nil, err
	}
	if n > len(result.RankedEntities) {
		n = len(result.RankedEntities)
	}
	return result.RankedEntities[:n], nil
}

// GetEntityImportance returns the importance record for one entity, or nil
// when the id is absent from the current graph.
func (r *Ranker) GetEntityImportance(ctx context.Context, id string) (*ImportanceRecord, error) {
	result, err := r.CalculateImportance(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range result.RankedEntities {
		if result.RankedEntities[i].ID == id {
			return &result.RankedEntities[i], nil
		}
	}
	return nil, nil
}

func validateWeights(w score.Weights) error {
	if w.PageRank < 0 || w.Betweenness < 0 || w.MentionFrequency < 0 {
		return fmt.Errorf("rank: importance weights must be non-negative, got %+v", w)
	}
	sum := w.PageRank + w.Betweenness + w.MentionFrequency
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("rank: importance weights must sum to 1.0, got %g", sum)
	}
	return nil
}
