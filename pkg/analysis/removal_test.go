package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/atlas-kg/atlas/pkg/common"
	"github.com/atlas-kg/atlas/pkg/store/memory"
)

func removalGraph(directImportance float64) *common.Graph {
	return &common.Graph{
		Entities: []common.Entity{
			{ID: "target", Name: "Target", Type: "System"},
			{ID: "direct", Name: "Direct", Type: "System", Importance: fptr(directImportance)},
			{ID: "indirect", Name: "Indirect", Type: "System", Importance: fptr(0.3)},
		},
		Edges: []common.Edge{
			{ID: "e1", SourceID: "target", TargetID: "direct", Type: "PRODUCES"},
			{ID: "e2", SourceID: "direct", TargetID: "indirect", Type: "PRODUCES"},
		},
	}
}

func bucketNames(deps []ScoredDependency) []string {
	names := make([]string, 0, len(deps))
	for _, dep := range deps {
		names = append(names, dep.Name)
	}
	return names
}

func TestSimulateRemovalBuckets(t *testing.T) {
	a := newTestAnalyzer(t, memory.NewStore(removalGraph(0.5)))

	report, err := a.SimulateRemoval(context.Background(), "Target", nil)
	if err != nil {
		t.Fatalf("SimulateRemoval() unexpected error: %v", err)
	}

	if report.SimulatedEntity != "Target" || report.Action != "removal" {
		t.Errorf("report header = %s/%s, want Target/removal", report.SimulatedEntity, report.Action)
	}

	if got := bucketNames(report.Impact.DirectlyAffected); len(got) != 1 || got[0] != "Direct" {
		t.Errorf("directly affected = %v, want [Direct]", got)
	}
	if got := bucketNames(report.Impact.IndirectlyAffected); len(got) != 1 || got[0] != "Indirect" {
		t.Errorf("indirectly affected = %v, want [Indirect]", got)
	}
	if len(report.Impact.CriticallyAffected) != 0 {
		t.Errorf("critically affected = %v, want empty", report.Impact.CriticallyAffected)
	}
	if report.RiskLevel != RiskLow {
		t.Errorf("risk level = %s, want %s", report.RiskLevel, RiskLow)
	}
}

func TestSimulateRemovalCriticalEntity(t *testing.T) {
	a := newTestAnalyzer(t, memory.NewStore(removalGraph(0.95)))

	report, err := a.SimulateRemoval(context.Background(), "Target", nil)
	if err != nil {
		t.Fatalf("SimulateRemoval() unexpected error: %v", err)
	}

	// Direct sits in both its depth bucket and the critical bucket.
	if got := bucketNames(report.Impact.DirectlyAffected); len(got) != 1 || got[0] != "Direct" {
		t.Errorf("directly affected = %v, want [Direct]", got)
	}
	if got := bucketNames(report.Impact.CriticallyAffected); len(got) != 1 || got[0] != "Direct" {
		t.Errorf("critically affected = %v, want [Direct]", got)
	}
	if report.RiskLevel != RiskHigh {
		t.Errorf("risk level = %s, want %s", report.RiskLevel, RiskHigh)
	}
	if !strings.Contains(report.Recommendation, "Target") {
		t.Errorf("recommendation %q should name the entity", report.Recommendation)
	}
}

func TestSimulateRemovalNoDependents(t *testing.T) {
	s := memory.NewStore(&common.Graph{
		Entities: []common.Entity{{ID: "iso", Name: "Isolated", Type: "System"}},
	})
	a := newTestAnalyzer(t, s)

	report, err := a.SimulateRemoval(context.Background(), "Isolated", nil)
	if err != nil {
		t.Fatalf("SimulateRemoval() unexpected error: %v", err)
	}
	if report.RiskLevel != RiskLow {
		t.Errorf("risk level = %s, want %s", report.RiskLevel, RiskLow)
	}
	if !strings.Contains(report.Recommendation, "safe to remove") {
		t.Errorf("recommendation %q should state the entity is safe to remove", report.Recommendation)
	}
}

func TestSimulateRemovalIncompleteOnFailure(t *testing.T) {
	a := newTestAnalyzer(t, &failingReader{})

	report, err := a.SimulateRemoval(context.Background(), "Target", nil)
	if err != nil {
		t.Fatalf("SimulateRemoval() must not fail on collaborator errors, got: %v", err)
	}

	if len(report.Impact.DirectlyAffected) != 0 ||
		len(report.Impact.IndirectlyAffected) != 0 ||
		len(report.Impact.CriticallyAffected) != 0 {
		t.Errorf("degraded impact should have empty buckets, got %+v", report.Impact)
	}
	if report.RiskLevel != RiskLow {
		t.Errorf("degraded risk level = %s, want %s", report.RiskLevel, RiskLow)
	}
	if !strings.Contains(report.Recommendation, "incomplete") {
		t.Errorf("recommendation %q should note the analysis was incomplete", report.Recommendation)
	}
}
