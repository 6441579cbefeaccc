package memory

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/atlas-kg/atlas/pkg/common"
	"github.com/atlas-kg/atlas/pkg/traversal"
)

func testGraph() *common.Graph {
	return &common.Graph{
		Entities: []common.Entity{
			{ID: "app", Name: "App", Type: "System"},
			{ID: "db", Name: "Database", Type: "System"},
			{ID: "cache", Name: "Cache", Type: "System"},
			{ID: "report", Name: "Report", Type: "Document"},
		},
		Edges: []common.Edge{
			{ID: "e1", SourceID: "app", TargetID: "db", Type: "DEPENDS_ON"},
			{ID: "e2", SourceID: "db", TargetID: "cache", Type: "USES"},
			{ID: "e3", SourceID: "app", TargetID: "report", Type: "PRODUCES"},
		},
	}
}

func pathNames(paths []common.Path) [][]string {
	out := make([][]string, 0, len(paths))
	for _, p := range paths {
		names := make([]string, 0, len(p.Vertices))
		for _, v := range p.Vertices {
			names = append(names, v.Name)
		}
		out = append(out, names)
	}
	return out
}

func mustQuery(t *testing.T, source string, direction traversal.Direction, maxDepth, maxEntities int) traversal.Query {
	t.Helper()
	q, err := traversal.NewQuery(source, direction, maxDepth, maxEntities)
	if err != nil {
		t.Fatalf("NewQuery() unexpected error: %v", err)
	}
	return q
}

func TestSubmitTraversalUpstream(t *testing.T) {
	s := NewStore(testGraph())

	paths, err := s.SubmitTraversal(context.Background(), mustQuery(t, "App", traversal.Upstream, 5, 100))
	if err != nil {
		t.Fatalf("SubmitTraversal() unexpected error: %v", err)
	}

	want := [][]string{
		{"App", "Database"},
		{"App", "Database", "Cache"},
	}
	if got := pathNames(paths); !reflect.DeepEqual(got, want) {
		t.Errorf("upstream paths = %v, want %v", got, want)
	}
}

func TestSubmitTraversalDownstream(t *testing.T) {
	s := NewStore(testGraph())

	paths, err := s.SubmitTraversal(context.Background(), mustQuery(t, "App", traversal.Downstream, 5, 100))
	if err != nil {
		t.Fatalf("SubmitTraversal() unexpected error: %v", err)
	}

	want := [][]string{{"App", "Report"}}
	if got := pathNames(paths); !reflect.DeepEqual(got, want) {
		t.Errorf("downstream paths = %v, want %v", got, want)
	}
}

func TestSubmitTraversalUnknownSource(t *testing.T) {
	s := NewStore(testGraph())

	paths, err := s.SubmitTraversal(context.Background(), mustQuery(t, "Nope", traversal.Upstream, 5, 100))
	if err != nil {
		t.Fatalf("SubmitTraversal() unexpected error: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("unknown source returned %d paths, want 0", len(paths))
	}
}

func TestSubmitTraversalDepthBound(t *testing.T) {
	s := NewStore(testGraph())

	paths, err := s.SubmitTraversal(context.Background(), mustQuery(t, "App", traversal.Upstream, 1, 100))
	if err != nil {
		t.Fatalf("SubmitTraversal() unexpected error: %v", err)
	}

	want := [][]string{{"App", "Database"}}
	if got := pathNames(paths); !reflect.DeepEqual(got, want) {
		t.Errorf("depth-bounded paths = %v, want %v", got, want)
	}
}

func TestSubmitTraversalTerminatesOnCycle(t *testing.T) {
	g := &common.Graph{
		Entities: []common.Entity{
			{ID: "a", Name: "A", Type: "System"},
			{ID: "b", Name: "B", Type: "System"},
		},
		Edges: []common.Edge{
			{ID: "e1", SourceID: "a", TargetID: "b", Type: "DEPENDS_ON"},
			{ID: "e2", SourceID: "b", TargetID: "a", Type: "DEPENDS_ON"},
		},
	}
	s := NewStore(g)

	paths, err := s.SubmitTraversal(context.Background(), mustQuery(t, "A", traversal.Upstream, 10, 100))
	if err != nil {
		t.Fatalf("SubmitTraversal() unexpected error: %v", err)
	}

	want := [][]string{{"A", "B"}}
	if got := pathNames(paths); !reflect.DeepEqual(got, want) {
		t.Errorf("cyclic traversal paths = %v, want %v", got, want)
	}
}

func TestSubmitTraversalEntityCap(t *testing.T) {
	g := &common.Graph{
		Entities: []common.Entity{{ID: "hub", Name: "Hub", Type: "System"}},
	}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("dep-%d", i)
		g.Entities = append(g.Entities, common.Entity{ID: id, Name: id, Type: "System"})
		g.Edges = append(g.Edges, common.Edge{
			ID:       fmt.Sprintf("e-%d", i),
			SourceID: "hub",
			TargetID: id,
			Type:     "DEPENDS_ON",
		})
	}
	s := NewStore(g)

	paths, err := s.SubmitTraversal(context.Background(), mustQuery(t, "Hub", traversal.Upstream, 5, 3))
	if err != nil {
		t.Fatalf("SubmitTraversal() unexpected error: %v", err)
	}
	if len(paths) != 3 {
		t.Errorf("capped traversal returned %d paths, want 3", len(paths))
	}
}

func TestGetAllEntities(t *testing.T) {
	s := NewStore(testGraph())

	g, err := s.GetAllEntities(context.Background())
	if err != nil {
		t.Fatalf("GetAllEntities() unexpected error: %v", err)
	}
	if len(g.Entities) != 4 || len(g.Edges) != 3 {
		t.Errorf("snapshot has %d entities and %d edges, want 4 and 3", len(g.Entities), len(g.Edges))
	}

	ids := make([]string, 0, len(g.Entities))
	for _, e := range g.Entities {
		ids = append(ids, e.ID)
	}
	if want := []string{"app", "cache", "db", "report"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("snapshot entity ids = %v, want %v", ids, want)
	}
}

func TestCountDirectDependents(t *testing.T) {
	s := NewStore(testGraph())

	counts, err := s.CountDirectDependents(context.Background(), "App")
	if err != nil {
		t.Fatalf("CountDirectDependents() unexpected error: %v", err)
	}
	if want := map[string]int{"report": 1}; !reflect.DeepEqual(counts, want) {
		t.Errorf("CountDirectDependents() = %v, want %v", counts, want)
	}

	// Upstream-type edges do not count as dependents.
	counts, err = s.CountDirectDependents(context.Background(), "Database")
	if err != nil {
		t.Fatalf("CountDirectDependents() unexpected error: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("CountDirectDependents() = %v, want empty", counts)
	}
}
