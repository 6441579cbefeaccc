package store

import (
	"context"

	"github.com/atlas-kg/atlas/pkg/common"
	"github.com/atlas-kg/atlas/pkg/traversal"
)

// GraphReader defines the read-only contract the analysis engine has with
// the graph storage collaborator. The engine never creates or destroys graph
// data; it only submits bounded traversal requests and snapshot reads.
//
// Implementations must honour the depth bound and entity cap carried by the
// query, and must return the full ordered vertex sequence of every
// discovered path so callers can recover per-vertex depth.
type GraphReader interface {
	// SubmitTraversal executes a bounded-depth, edge-type-filtered
	// traversal and returns every discovered path. An unknown source
	// entity yields an empty result, not an error.
	SubmitTraversal(ctx context.Context, query traversal.Query) ([]common.Path, error)

	// GetAllEntities returns a full snapshot of the graph.
	GetAllEntities(ctx context.Context) (*common.Graph, error)

	// CountDirectDependents returns, per dependent entity id, the number
	// of downstream-type edges leading directly out of the named entity.
	CountDirectDependents(ctx context.Context, entityName string) (map[string]int, error)
}
