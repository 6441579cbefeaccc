// Package centrality computes graph-centrality score mappings over a graph
// snapshot. The algorithms are exposed behind a uniform result contract so
// consumers can treat them as interchangeable black boxes.
package centrality

import "sort"

// Ranked pairs an entity id with its centrality score.
type Ranked struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Metadata carries counters for a centrality computation.
type Metadata struct {
	NodeCount int `json:"node_count"`
}

// Result is the uniform output of every centrality algorithm: a raw score
// per entity id plus the same scores ranked descending. Scores are not
// normalized to a common scale across algorithms.
type Result struct {
	Scores         map[string]float64 `json:"scores"`
	RankedEntities []Ranked           `json:"ranked_entities"`
	Metadata       Metadata           `json:"metadata"`
}

func newResult(scores map[string]float64) *Result {
	ranked := make([]Ranked, 0, len(scores))
	for id, s := range scores {
		ranked = append(ranked, Ranked{ID: id, Score: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	return &Result{
		Scores:         scores,
		RankedEntities: ranked,
		Metadata:       Metadata{NodeCount: len(scores)},
	}
}
