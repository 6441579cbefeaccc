package traversal

import (
	"fmt"
	"slices"
)

// Direction selects which way a traversal walks the graph relative to the
// source entity.
type Direction string

const (
	// Upstream walks toward the entities the source depends on.
	Upstream Direction = "upstream"
	// Downstream walks toward the entities that depend on the source.
	Downstream Direction = "downstream"
)

// Edge-type taxonomy. Membership is fixed configuration: the three sets
// decide which edges are legal to follow for a given direction and are
// never derived at runtime.
var (
	UpstreamEdgeTypes      = []string{"DEPENDS_ON", "REQUIRES", "USES"}
	DownstreamEdgeTypes    = []string{"PRODUCES", "CONTAINS"}
	BidirectionalEdgeTypes = []string{"RELATED_TO"}
)

// Query is a bounded-depth, edge-type-filtered traversal request. The depth
// bound and entity cap are hard limits: the underlying graph may contain
// cycles and the traversal must terminate.
type Query struct {
	SourceName  string
	Direction   Direction
	EdgeTypes   []string
	MaxDepth    int
	MaxEntities int
}

// NewQuery builds a traversal request for the given source entity and
// direction. Edge types are resolved from the static taxonomy for the
// direction. MaxDepth and maxEntities must be positive.
func NewQuery(sourceName string, direction Direction, maxDepth, maxEntities int) (Query, error) {
	if sourceName == "" {
		return Query{}, fmt.Errorf("traversal: source entity name is required")
	}
	if maxDepth <= 0 {
		return Query{}, fmt.Errorf("traversal: maxDepth must be positive, got %d", maxDepth)
	}
	if maxEntities <= 0 {
		return Query{}, fmt.Errorf("traversal: maxEntities must be positive, got %d", maxEntities)
	}

	var edgeTypes []string
	switch direction {
	case Upstream:
		edgeTypes = slices.Clone(UpstreamEdgeTypes)
	case Downstream:
		edgeTypes = slices.Clone(DownstreamEdgeTypes)
	default:
		return Query{}, fmt.Errorf("traversal: unknown direction %q", direction)
	}
	// Bidirectional edges are legal regardless of direction.
	edgeTypes = append(edgeTypes, BidirectionalEdgeTypes...)

	return Query{
		SourceName:  sourceName,
		Direction:   direction,
		EdgeTypes:   edgeTypes,
		MaxDepth:    maxDepth,
		MaxEntities: maxEntities,
	}, nil
}

// AllowsEdgeType reports whether the query may follow an edge of the given
// type.
func (q Query) AllowsEdgeType(edgeType string) bool {
	return slices.Contains(q.EdgeTypes, edgeType)
}
