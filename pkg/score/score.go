package score

import "math"

// DefaultImportance is assumed for entities that have never been scored.
const DefaultImportance = 0.5

// DefaultDecayFactor is the per-hop retention multiplier applied beyond the
// first hop.
const DefaultDecayFactor = 0.7

// ImpactScore computes the distance-decayed impact of an entity at the given
// graph distance from the source. Depth 0 is the source itself and depth 1 a
// direct neighbour; neither is decayed, so the score equals the importance
// exactly. Each additional hop multiplies the score by decayFactor. The
// result is clamped to [0,1].
func ImpactScore(depth int, importance, decayFactor float64) float64 {
	exp := depth - 1
	if exp < 0 {
		exp = 0
	}
	s := importance * math.Pow(decayFactor, float64(exp))
	return clamp01(s)
}

// Weights blends the three importance components into a composite score.
// The weights must sum to 1.0.
type Weights struct {
	PageRank         float64 `json:"page_rank"`
	Betweenness      float64 `json:"betweenness"`
	MentionFrequency float64 `json:"mention_frequency"`
}

// DefaultWeights is the standard blend of centrality and mention signals.
var DefaultWeights = Weights{
	PageRank:         0.4,
	Betweenness:      0.35,
	MentionFrequency: 0.25,
}

// Composite blends the three normalized component signals using w. All
// components are expected to be in [0,1] already; the result is clamped
// regardless.
func Composite(w Weights, pageRank, betweenness, mention float64) float64 {
	s := w.PageRank*pageRank + w.Betweenness*betweenness + w.MentionFrequency*mention
	return clamp01(s)
}

// Normalize min-max scales every value in m to [0,1] across the given ids.
// When all values are equal (including the single-node case, or when every
// value is missing) every id maps to 1 so callers never divide by zero.
// Ids absent from m are treated as 0 before scaling.
func Normalize(ids []string, m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return out
	}

	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, id := range ids {
		v := m[id]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if hi == lo {
		for _, id := range ids {
			out[id] = 1
		}
		return out
	}

	span := hi - lo
	for _, id := range ids {
		out[id] = (m[id] - lo) / span
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
