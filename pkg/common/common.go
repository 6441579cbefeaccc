package common

// Graph represents a snapshot of the knowledge graph: all entities and the
// typed, directed edges between them. It is the unit returned by a full
// collaborator read and is never mutated by the analysis engine.
type Graph struct {
	Entities []Entity `json:"entities"`
	Edges    []Edge   `json:"edges"`
}

// Entity represents a node in the knowledge graph. An entity can be a
// process, system, role, document, or any other modelled concept. Identity
// is carried by ID; Name is the lookup key used as a traversal entry point.
//
// Importance is an externally maintained score in [0,1]; a nil value means
// the entity has never been scored and analysis falls back to a default.
// MentionCount records how often the entity is referenced in source
// material and is never negative.
type Entity struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Importance   *float64 `json:"importance,omitempty"`
	MentionCount int      `json:"mention_count,omitempty"`
}

// Edge represents a typed, directed connection between two entities.
// Edges point from a Source entity to a Target entity.
type Edge struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Type     string `json:"type"`
}

// Path is one traversal result: the ordered vertex sequence from the source
// entity to a terminal vertex. Vertices[0] is always the source; the vertex
// at index k sits at graph distance k from the source along the traversal
// direction.
type Path struct {
	Vertices []Entity `json:"vertices"`
}

// Depth returns the graph distance of the terminal vertex from the source.
func (p Path) Depth() int {
	if len(p.Vertices) == 0 {
		return 0
	}
	return len(p.Vertices) - 1
}
