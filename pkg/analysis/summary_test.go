package analysis

import (
	"context"
	"reflect"
	"testing"

	"github.com/atlas-kg/atlas/pkg/common"
	"github.com/atlas-kg/atlas/pkg/store/memory"
	"github.com/atlas-kg/atlas/pkg/traversal"
)

func summaryGraph() *common.Graph {
	return &common.Graph{
		Entities: []common.Entity{
			{ID: "core", Name: "Core", Type: "System"},
			{ID: "auth", Name: "Auth", Type: "Service", Importance: fptr(0.95)},
			{ID: "feed", Name: "Feed", Type: "Document", Importance: fptr(0.5)},
			{ID: "logs", Name: "Logs", Type: "Document", Importance: fptr(0.2)},
		},
		Edges: []common.Edge{
			{ID: "e1", SourceID: "core", TargetID: "auth", Type: "DEPENDS_ON"},
			{ID: "e2", SourceID: "core", TargetID: "feed", Type: "PRODUCES"},
			{ID: "e3", SourceID: "core", TargetID: "logs", Type: "PRODUCES"},
		},
	}
}

func TestAnalyzeImpact(t *testing.T) {
	a := newTestAnalyzer(t, memory.NewStore(summaryGraph()))

	report, err := a.AnalyzeImpact(context.Background(), "Core", nil)
	if err != nil {
		t.Fatalf("AnalyzeImpact() unexpected error: %v", err)
	}

	if report.Upstream.Metadata.TotalDependencies != 1 {
		t.Errorf("upstream total = %d, want 1", report.Upstream.Metadata.TotalDependencies)
	}
	if report.Downstream.Metadata.TotalDependencies != 2 {
		t.Errorf("downstream total = %d, want 2", report.Downstream.Metadata.TotalDependencies)
	}

	if report.Summary.CriticalCount != 1 {
		t.Errorf("critical count = %d, want 1", report.Summary.CriticalCount)
	}
	if len(report.Summary.CriticalEntities) != 1 || report.Summary.CriticalEntities[0].Name != "Auth" {
		t.Errorf("critical entities = %v, want [Auth]", report.Summary.CriticalEntities)
	}

	// One critical entity pushes the level to high.
	if report.Summary.RiskLevel != RiskHigh {
		t.Errorf("risk level = %s, want %s", report.Summary.RiskLevel, RiskHigh)
	}

	want := map[string]int{"Service": 1, "Document": 2}
	if !reflect.DeepEqual(report.Summary.TypeDistribution, want) {
		t.Errorf("type distribution = %v, want %v", report.Summary.TypeDistribution, want)
	}
}

// directionalFailingReader fails only one traversal direction.
type directionalFailingReader struct {
	*memory.Store
	failDirection traversal.Direction
}

func (r *directionalFailingReader) SubmitTraversal(ctx context.Context, query traversal.Query) ([]common.Path, error) {
	if query.Direction == r.failDirection {
		return nil, context.DeadlineExceeded
	}
	return r.Store.SubmitTraversal(ctx, query)
}

func TestAnalyzeImpactDegradesOneSide(t *testing.T) {
	reader := &directionalFailingReader{
		Store:         memory.NewStore(summaryGraph()),
		failDirection: traversal.Downstream,
	}
	a := newTestAnalyzer(t, reader)

	report, err := a.AnalyzeImpact(context.Background(), "Core", nil)
	if err != nil {
		t.Fatalf("AnalyzeImpact() must not fail on collaborator errors, got: %v", err)
	}

	if report.Upstream.Failed() {
		t.Errorf("upstream side unexpectedly degraded: %q", report.Upstream.Metadata.Error)
	}
	if !report.Downstream.Failed() {
		t.Error("downstream side should carry the diagnostic")
	}
	if len(report.Downstream.Dependencies) != 0 {
		t.Errorf("degraded side dependencies = %v, want empty", report.Downstream.Dependencies)
	}

	// The summary covers the side that succeeded.
	if report.Summary.CriticalCount != 1 {
		t.Errorf("critical count = %d, want 1", report.Summary.CriticalCount)
	}
	if want := map[string]int{"Service": 1}; !reflect.DeepEqual(report.Summary.TypeDistribution, want) {
		t.Errorf("type distribution = %v, want %v", report.Summary.TypeDistribution, want)
	}
}

func TestRiskThresholdLevels(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		critical int
		want     RiskLevel
	}{
		{name: "no impact", total: 0, critical: 0, want: RiskLow},
		{name: "small impact", total: 2, critical: 0, want: RiskLow},
		{name: "medium impact", total: 3, critical: 0, want: RiskMedium},
		{name: "large impact", total: 10, critical: 0, want: RiskHigh},
		{name: "one critical", total: 1, critical: 1, want: RiskHigh},
		{name: "many critical", total: 5, critical: 3, want: RiskCritical},
		{name: "wide with critical", total: 20, critical: 1, want: RiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRiskThresholds.Level(tt.total, tt.critical); got != tt.want {
				t.Errorf("Level(%d, %d) = %s, want %s", tt.total, tt.critical, got, tt.want)
			}
		})
	}
}
