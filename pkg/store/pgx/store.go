package pgx

import (
	"context"
	"fmt"

	"github.com/atlas-kg/atlas/pkg/common"
	"github.com/atlas-kg/atlas/pkg/store"
	"github.com/atlas-kg/atlas/pkg/traversal"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// GraphDBReader implements the GraphReader interface on top of PostgreSQL.
// Traversals run as bounded recursive CTEs over the edges table; the depth
// bound, the per-path cycle guard and the row limit keep them finite on
// cyclic graphs.
type GraphDBReader struct {
	conn    pgxIConn
	graphID string
}

var _ store.GraphReader = (*GraphDBReader)(nil)

// NewGraphDBReader creates a reader scoped to one graph using an existing
// database connection or pool.
func NewGraphDBReader(conn pgxIConn, graphID string) *GraphDBReader {
	return &GraphDBReader{
		conn:    conn,
		graphID: graphID,
	}
}

// SubmitTraversal walks outward from the named source entity following only
// edges whose type the query allows, up to the query's depth bound, and
// returns every discovered path as its full ordered vertex sequence.
func (s *GraphDBReader) SubmitTraversal(ctx context.Context, query traversal.Query) ([]common.Path, error) {
	const sql = `
		WITH RECURSIVE walk AS (
			SELECT e.id, ARRAY[e.id] AS path, 0 AS depth
			FROM entities e
			WHERE e.graph_id = $1 AND e.name = $2
		UNION ALL
			SELECT ed.target_id, w.path || ed.target_id, w.depth + 1
			FROM walk w
			JOIN edges ed ON ed.graph_id = $1 AND ed.source_id = w.id
			WHERE ed.type = ANY($3)
			  AND w.depth < $4
			  AND ed.target_id <> ALL(w.path)
		)
		SELECT path
		FROM walk
		WHERE depth > 0
		ORDER BY depth
		LIMIT $5;
	`

	rows, err := s.conn.Query(
		ctx,
		sql,
		s.graphID,
		query.SourceName,
		query.EdgeTypes,
		query.MaxDepth,
		query.MaxEntities,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run traversal query: %w", err)
	}
	defer rows.Close()

	idPaths := make([][]string, 0)
	seen := make(map[string]struct{})
	for rows.Next() {
		var path []string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan traversal path: %w", err)
		}
		idPaths = append(idPaths, path)
		for _, id := range path {
			seen[id] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("traversal query failed: %w", err)
	}
	if len(idPaths) == 0 {
		return nil, nil
	}

	entities, err := s.getEntitiesByID(ctx, seen)
	if err != nil {
		return nil, err
	}

	paths := make([]common.Path, 0, len(idPaths))
	for _, ids := range idPaths {
		vertices := make([]common.Entity, 0, len(ids))
		for _, id := range ids {
			e, ok := entities[id]
			if !ok {
				return nil, fmt.Errorf("traversal returned unknown entity id %s", id)
			}
			vertices = append(vertices, e)
		}
		paths = append(paths, common.Path{Vertices: vertices})
	}
	return paths, nil
}

// GetAllEntities reads a full snapshot of the graph.
func (s *GraphDBReader) GetAllEntities(ctx context.Context) (*common.Graph, error) {
	rows, err := s.conn.Query(
		ctx,
		`SELECT id, name, type, importance, mention_count
		 FROM entities
		 WHERE graph_id = $1
		 ORDER BY id`,
		s.graphID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities: %w", err)
	}
	defer rows.Close()

	g := &common.Graph{}
	for rows.Next() {
		var e common.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.Importance, &e.MentionCount); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		g.Entities = append(g.Entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entity read failed: %w", err)
	}

	edgeRows, err := s.conn.Query(
		ctx,
		`SELECT id, source_id, target_id, type
		 FROM edges
		 WHERE graph_id = $1
		 ORDER BY id`,
		s.graphID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var edge common.Edge
		if err := edgeRows.Scan(&edge.ID, &edge.SourceID, &edge.TargetID, &edge.Type); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		g.Edges = append(g.Edges, edge)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("edge read failed: %w", err)
	}

	return g, nil
}

// CountDirectDependents counts downstream-type edges leading directly out of
// the named entity, keyed by target entity id.
func (s *GraphDBReader) CountDirectDependents(ctx context.Context, entityName string) (map[string]int, error) {
	rows, err := s.conn.Query(
		ctx,
		`SELECT ed.target_id, COUNT(*)
		 FROM edges ed
		 JOIN entities src ON src.graph_id = ed.graph_id AND src.id = ed.source_id
		 WHERE ed.graph_id = $1 AND src.name = $2 AND ed.type = ANY($3)
		 GROUP BY ed.target_id`,
		s.graphID,
		entityName,
		traversal.DownstreamEdgeTypes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count direct dependents: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan dependent count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dependent count failed: %w", err)
	}
	return counts, nil
}

func (s *GraphDBReader) getEntitiesByID(ctx context.Context, ids map[string]struct{}) (map[string]common.Entity, error) {
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}

	rows, err := s.conn.Query(
		ctx,
		`SELECT id, name, type, importance, mention_count
		 FROM entities
		 WHERE graph_id = $1 AND id = ANY($2)`,
		s.graphID,
		list,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read path entities: %w", err)
	}
	defer rows.Close()

	entities := make(map[string]common.Entity, len(list))
	for rows.Next() {
		var e common.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.Importance, &e.MentionCount); err != nil {
			return nil, fmt.Errorf("failed to scan path entity: %w", err)
		}
		entities[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("path entity read failed: %w", err)
	}
	return entities, nil
}
