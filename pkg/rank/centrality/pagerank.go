package centrality

import (
	"math"

	"github.com/atlas-kg/atlas/pkg/common"
)

const (
	pageRankDamping    = 0.85
	pageRankIterations = 100
	pageRankTolerance  = 1e-6
)

// PageRank computes PageRank scores over every entity in the snapshot using
// power iteration. Edges of all types contribute; dangling nodes spread
// their mass uniformly. Iteration stops when the score vector moves less
// than the tolerance or after a fixed number of rounds.
func PageRank(g *common.Graph) *Result {
	n := len(g.Entities)
	scores := make(map[string]float64, n)
	if n == 0 {
		return newResult(scores)
	}

	known := make(map[string]struct{}, n)
	for _, node := range g.Entities {
		known[node.ID] = struct{}{}
	}

	outgoing := make(map[string][]string, n)
	for _, e := range g.Edges {
		if _, ok := known[e.SourceID]; !ok {
			continue
		}
		if _, ok := known[e.TargetID]; !ok {
			continue
		}
		outgoing[e.SourceID] = append(outgoing[e.SourceID], e.TargetID)
	}

	initial := 1.0 / float64(n)
	for _, node := range g.Entities {
		scores[node.ID] = initial
	}

	base := (1.0 - pageRankDamping) / float64(n)
	for iter := 0; iter < pageRankIterations; iter++ {
		next := make(map[string]float64, n)
		dangling := 0.0
		for _, node := range g.Entities {
			targets := outgoing[node.ID]
			if len(targets) == 0 {
				dangling += scores[node.ID]
				continue
			}
			share := scores[node.ID] / float64(len(targets))
			for _, target := range targets {
				next[target] += share
			}
		}

		danglingShare := dangling / float64(n)
		delta := 0.0
		for _, node := range g.Entities {
			v := base + pageRankDamping*(next[node.ID]+danglingShare)
			delta += math.Abs(v - scores[node.ID])
			next[node.ID] = v
		}
		scores = next

		if delta < pageRankTolerance {
			break
		}
	}

	return newResult(scores)
}
