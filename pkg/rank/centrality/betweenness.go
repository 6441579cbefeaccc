package centrality

import "github.com/atlas-kg/atlas/pkg/common"

// Betweenness computes betweenness centrality with Brandes' algorithm: one
// BFS per source accumulating, for every node, the fraction of shortest
// paths passing through it. Edges of all types contribute and are followed
// in their stored direction.
func Betweenness(g *common.Graph) *Result {
	n := len(g.Entities)
	scores := make(map[string]float64, n)
	for _, node := range g.Entities {
		scores[node.ID] = 0
	}
	if n == 0 {
		return newResult(scores)
	}

	outgoing := make(map[string][]string, n)
	for _, e := range g.Edges {
		if _, ok := scores[e.SourceID]; !ok {
			continue
		}
		if _, ok := scores[e.TargetID]; !ok {
			continue
		}
		outgoing[e.SourceID] = append(outgoing[e.SourceID], e.TargetID)
	}

	for _, source := range g.Entities {
		s := source.ID

		stack := make([]string, 0, n)
		pred := make(map[string][]string, n)
		sigma := make(map[string]float64, n)
		dist := make(map[string]int, n)
		delta := make(map[string]float64, n)
		for _, node := range g.Entities {
			dist[node.ID] = -1
		}
		sigma[s] = 1
		dist[s] = 0

		queue := []string{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)

			for _, w := range outgoing[v] {
				if dist[w] < 0 {
					queue = append(queue, w)
					dist[w] = dist[v] + 1
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != s {
				scores[w] += delta[w]
			}
		}
	}

	// Directed normalization over the (n-1)(n-2) ordered pairs.
	if n > 2 {
		norm := 1.0 / (float64(n-1) * float64(n-2))
		for id := range scores {
			scores[id] *= norm
		}
	}

	return newResult(scores)
}
