// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	g := New()
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	t.Parallel()
	g := New()
	// //base is a dependency of //mid, which is a dependency of //app.
	g.AddEdge("//mid:mid", "//app:app")
	g.AddEdge("//base:base", "//mid:mid")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"//base:base", "//mid:mid", "//app:app"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_LexicalTieBreak(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("//c:c")
	g.AddEdge("//a:a", "//z:z")
	g.AddNode("//b:b")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"//a:a", "//b:b", "//c:c", "//z:z"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("A", "C")
	g.AddEdge("B", "D")
	g.AddEdge("C", "D")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"A", "B", "C", "D"}) {
		t.Errorf("unexpected order %v", order)
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("C", "A")
	g.AddNode("D")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if !slices.Equal(cycleErr.Cycle, []string{"A", "B", "C"}) {
		t.Errorf("cycle = %v, want [A B C]", cycleErr.Cycle)
	}
}

func TestTopologicalSort_SelfLoop(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("A", "A")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}

func TestAddEdge_Duplicates(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("A", "B")

	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"A", "B"}) {
		t.Errorf("expected [A B], got %v", order)
	}
}

func TestHasPathAndWouldCycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddNode("D")

	tests := []struct {
		from, to  string
		wantPath  bool
		wantCycle bool
	}{
		{"A", "C", true, false},
		{"C", "A", false, true},
		{"A", "A", true, true},
		{"D", "A", false, false},
		{"A", "D", false, false},
		{"B", "unknown", false, false},
	}
	for _, tt := range tests {
		if got := g.HasPath(tt.from, tt.to); got != tt.wantPath {
			t.Errorf("HasPath(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.wantPath)
		}
		if got := g.WouldCycle(tt.from, tt.to); got != tt.wantCycle {
			t.Errorf("WouldCycle(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.wantCycle)
		}
	}
}

func TestCycleError_Message(t *testing.T) {
	t.Parallel()
	err := &CycleError{Cycle: []string{"A", "B"}}
	if got := err.Error(); got != "dependency cycle detected: A -> B" {
		t.Errorf("unexpected message %q", got)
	}
}
