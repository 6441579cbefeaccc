package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/atlas-kg/atlas/pkg/common"
	"github.com/atlas-kg/atlas/pkg/store"
	"github.com/atlas-kg/atlas/pkg/traversal"
)

// Store is an in-memory GraphReader backed by adjacency maps. It is used by
// tests and local runs where a database is not available.
type Store struct {
	mu       sync.RWMutex
	entities map[string]common.Entity // by id
	byName   map[string]string        // name -> id
	edges    []common.Edge
	outgoing map[string][]common.Edge // source id -> edges
}

var _ store.GraphReader = (*Store)(nil)

// NewStore creates a Store holding the given snapshot.
func NewStore(g *common.Graph) *Store {
	s := &Store{
		entities: make(map[string]common.Entity),
		byName:   make(map[string]string),
		outgoing: make(map[string][]common.Edge),
	}
	if g == nil {
		return s
	}
	for _, e := range g.Entities {
		s.entities[e.ID] = e
		s.byName[e.Name] = e.ID
	}
	for _, edge := range g.Edges {
		s.edges = append(s.edges, edge)
		s.outgoing[edge.SourceID] = append(s.outgoing[edge.SourceID], edge)
	}
	return s
}

// SubmitTraversal walks the graph outward from the named source following
// only edges whose type the query allows. Every discovered path is returned
// as its full vertex sequence. Vertices already on the current path are
// never revisited, so cyclic graphs terminate.
func (s *Store) SubmitTraversal(ctx context.Context, query traversal.Query) ([]common.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sourceID, ok := s.byName[query.SourceName]
	if !ok {
		return nil, nil
	}

	var paths []common.Path
	current := []common.Entity{s.entities[sourceID]}

	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if depth >= query.MaxDepth || len(paths) >= query.MaxEntities {
			return
		}
		for _, edge := range s.outgoing[id] {
			if len(paths) >= query.MaxEntities {
				return
			}
			if !query.AllowsEdgeType(edge.Type) {
				continue
			}
			next, ok := s.entities[edge.TargetID]
			if !ok {
				continue
			}
			if onPath(current, next.ID) {
				continue
			}
			current = append(current, next)
			paths = append(paths, common.Path{Vertices: slices.Clone(current)})
			walk(next.ID, depth+1)
			current = current[:len(current)-1]
		}
	}
	walk(sourceID, 0)

	return paths, nil
}

// GetAllEntities returns a copy of the stored snapshot.
func (s *Store) GetAllEntities(ctx context.Context) (*common.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	g := &common.Graph{
		Entities: make([]common.Entity, 0, len(s.entities)),
		Edges:    slices.Clone(s.edges),
	}
	for _, e := range s.entities {
		g.Entities = append(g.Entities, e)
	}
	slices.SortFunc(g.Entities, func(a, b common.Entity) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return g, nil
}

// CountDirectDependents counts downstream-type edges leading directly out of
// the named entity, keyed by target entity id.
func (s *Store) CountDirectDependents(ctx context.Context, entityName string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	id, ok := s.byName[entityName]
	if !ok {
		return counts, nil
	}
	for _, edge := range s.outgoing[id] {
		if !slices.Contains(traversal.DownstreamEdgeTypes, edge.Type) {
			continue
		}
		counts[edge.TargetID]++
	}
	return counts, nil
}

func onPath(path []common.Entity, id string) bool {
	for _, v := range path {
		if v.ID == id {
			return true
		}
	}
	return false
}
