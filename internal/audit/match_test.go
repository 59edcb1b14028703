// SPDX-License-Identifier: MPL-2.0

package audit

import (
	"maps"
	"slices"
	"testing"
)

func syms(s ...string) []Symbol {
	out := make([]Symbol, len(s))
	for i, v := range s {
		out[i] = Symbol(v)
	}
	return out
}

func resolveOne(t *testing.T, exports []ExportRecord, obs ...Observation) Outcome {
	t.Helper()
	targets := AggregateImports(obs)
	if len(targets) != 1 {
		t.Fatalf("expected exactly one target, got %d", len(targets))
	}
	return Resolve(targets[0], NewExportIndex(FuseExports(exports)))
}

func TestResolve_MatchesNotFoundAndAlwaysUsed(t *testing.T) {
	t.Parallel()

	exports := []ExportRecord{
		{Target: "X", Exports: syms("a.h")},
		{Target: "Y", Exports: syms("b.h")},
		{Target: "W", AlwaysUsed: true},
	}
	got := resolveOne(t, exports, Observation{
		Target:           "Z",
		Imports:          syms("a.h", "c.h"),
		AmbiguousImports: syms("b.h"),
		Deps:             []Target{"X", "Y", "W"},
	})

	wantMatches := map[Symbol]Target{"a.h": "X", "b.h": "Y"}
	if !maps.Equal(got.Matches, wantMatches) {
		t.Errorf("Matches = %v, want %v", got.Matches, wantMatches)
	}
	if !slices.Equal(got.NotFound, syms("c.h")) {
		t.Errorf("NotFound = %v, want [c.h]", got.NotFound)
	}
	if len(got.Ambiguous) != 0 {
		t.Errorf("Ambiguous = %v, want empty", got.Ambiguous)
	}
	if len(got.Unused) != 0 {
		t.Errorf("Unused = %v, want empty", got.Unused)
	}
}

func TestResolve_DirectShadowsAmbiguous(t *testing.T) {
	t.Parallel()

	exports := []ExportRecord{
		{Target: "X", Exports: syms("a.h")},
		{Target: "Y", Exports: syms("b.h")},
	}
	got := resolveOne(t, exports, Observation{
		Target:           "Z",
		Imports:          syms("c.h"),
		AmbiguousImports: syms("c.h"),
	})

	if len(got.Matches) != 0 {
		t.Errorf("Matches = %v, want empty", got.Matches)
	}
	if !slices.Equal(got.NotFound, syms("c.h")) {
		t.Errorf("NotFound = %v, want [c.h]", got.NotFound)
	}
	if len(got.Ambiguous) != 0 {
		t.Errorf("Ambiguous = %v, want empty", got.Ambiguous)
	}
}

func TestResolve_FirstOwnerWinsTieBreak(t *testing.T) {
	t.Parallel()

	exports := []ExportRecord{
		{Target: "X2", Exports: syms("a.h")},
		{Target: "X", Exports: syms("a.h")},
	}
	got := resolveOne(t, exports, Observation{Target: "Z", Imports: syms("a.h")})

	if got.Matches["a.h"] != "X" {
		t.Errorf("a.h resolved to %q, want X", got.Matches["a.h"])
	}
	if !slices.Equal(got.Unused, []Target{"X2"}) {
		t.Errorf("Unused = %v, want [X2]", got.Unused)
	}
}

func TestResolve_TieBreakSkipsUndeclaredOwners(t *testing.T) {
	t.Parallel()

	exports := []ExportRecord{
		{Target: "X", Exports: syms("a.h")},
		{Target: "X2", Exports: syms("a.h")},
	}
	got := resolveOne(t, exports, Observation{
		Target:  "Z",
		Imports: syms("a.h"),
		Deps:    []Target{"X2"},
	})

	if got.Matches["a.h"] != "X2" {
		t.Errorf("a.h resolved to %q, want X2", got.Matches["a.h"])
	}
	if len(got.NotFound) != 0 || len(got.Unused) != 0 {
		t.Errorf("NotFound = %v, Unused = %v, want both empty", got.NotFound, got.Unused)
	}
}

func TestResolve_UndeclaredOwnerIsNotFound(t *testing.T) {
	t.Parallel()

	exports := []ExportRecord{
		{Target: "X", Exports: syms("a.h")},
		{Target: "Y", Exports: syms("b.h")},
	}
	got := resolveOne(t, exports, Observation{
		Target:  "Z",
		Imports: syms("a.h", "b.h"),
		Deps:    []Target{"X"},
	})

	if !maps.Equal(got.Matches, map[Symbol]Target{"a.h": "X"}) {
		t.Errorf("Matches = %v", got.Matches)
	}
	if !slices.Equal(got.NotFound, syms("b.h")) {
		t.Errorf("NotFound = %v, want [b.h]", got.NotFound)
	}
}

func TestResolve_UnresolvedAmbiguousIsNotNotFound(t *testing.T) {
	t.Parallel()

	exports := []ExportRecord{{Target: "X", Exports: syms("a.h")}}
	got := resolveOne(t, exports, Observation{
		Target:           "Z",
		Imports:          syms("a.h"),
		AmbiguousImports: syms("stdio.h", "zlib.h"),
	})

	if len(got.NotFound) != 0 {
		t.Errorf("NotFound = %v, want empty", got.NotFound)
	}
	if !slices.Equal(got.Ambiguous, syms("stdio.h", "zlib.h")) {
		t.Errorf("Ambiguous = %v, want [stdio.h zlib.h]", got.Ambiguous)
	}
}

func TestResolve_EmptyIndex(t *testing.T) {
	t.Parallel()

	got := resolveOne(t, nil, Observation{
		Target:           "Z",
		Imports:          syms("a.h", "b.h"),
		AmbiguousImports: syms("c.h"),
	})

	if len(got.Matches) != 0 {
		t.Errorf("Matches = %v, want empty", got.Matches)
	}
	if !slices.Equal(got.NotFound, syms("a.h", "b.h")) {
		t.Errorf("NotFound = %v", got.NotFound)
	}
	if !slices.Equal(got.Ambiguous, syms("c.h")) {
		t.Errorf("Ambiguous = %v", got.Ambiguous)
	}
	if len(got.Unused) != 0 {
		t.Errorf("Unused = %v, want empty", got.Unused)
	}
}

func TestResolve_NoDeclaredDependencies(t *testing.T) {
	t.Parallel()

	exports := []ExportRecord{{Target: "X", Exports: syms("a.h")}}
	targets := AggregateImports([]Observation{{Target: "Z", Imports: syms("a.h"), Deps: []Target{}}})
	index := NewExportIndex(FuseExports(exports))

	res := Match(targets[0], index, targets[0].DeclaredDependencies(index))
	if len(res.Usage) != 0 {
		t.Errorf("Usage = %v, want empty", res.Usage)
	}

	got := Assemble(res)
	if !slices.Equal(got.NotFound, syms("a.h")) {
		t.Errorf("NotFound = %v, want [a.h]", got.NotFound)
	}
}

func TestResolve_SelfDependencyIsNeverUnused(t *testing.T) {
	t.Parallel()

	exports := []ExportRecord{
		{Target: "Z", Exports: syms("z.h")},
		{Target: "X", Exports: syms("x.h")},
	}
	got := resolveOne(t, exports, Observation{Target: "Z", Imports: syms("other.h")})

	if !slices.Equal(got.Unused, []Target{"X"}) {
		t.Errorf("Unused = %v, want [X]", got.Unused)
	}
}

func TestResolve_IndexExhaustedMidway(t *testing.T) {
	t.Parallel()

	exports := []ExportRecord{{Target: "X", Exports: syms("b.h")}}
	got := resolveOne(t, exports, Observation{
		Target:           "Z",
		Imports:          syms("a.h", "b.h", "d.h", "f.h"),
		AmbiguousImports: syms("c.h", "e.h", "f.h"),
	})

	if !maps.Equal(got.Matches, map[Symbol]Target{"b.h": "X"}) {
		t.Errorf("Matches = %v", got.Matches)
	}
	if !slices.Equal(got.NotFound, syms("a.h", "d.h", "f.h")) {
		t.Errorf("NotFound = %v", got.NotFound)
	}
	if !slices.Equal(got.Ambiguous, syms("c.h", "e.h")) {
		t.Errorf("Ambiguous = %v", got.Ambiguous)
	}
}

func TestMatch_CursorShadowsWithoutAggregation(t *testing.T) {
	t.Parallel()

	// Bypass AggregateImports so the merge cursor itself has to drop the
	// ambiguous duplicate.
	ti := TargetImports{
		Target:           "Z",
		Imports:          syms("a.h", "c.h"),
		AmbiguousImports: syms("a.h", "b.h", "c.h"),
	}
	index := NewExportIndex([]ExportRecord{{Target: "X", Exports: syms("a.h", "b.h")}})
	res := Match(ti, index, []Dependency{{Target: "X"}})

	want := []Resolved{{Symbol: "a.h", Owner: "X"}, {Symbol: "c.h"}}
	if !slices.Equal(res.Direct, want) {
		t.Errorf("Direct = %v, want %v", res.Direct, want)
	}
	wantAmbiguous := []Resolved{{Symbol: "b.h", Owner: "X"}}
	if !slices.Equal(res.Ambiguous, wantAmbiguous) {
		t.Errorf("Ambiguous = %v, want %v", res.Ambiguous, wantAmbiguous)
	}
	if !res.Usage["X"] {
		t.Error("expected X to be used")
	}
}

func TestImportCursor_Order(t *testing.T) {
	t.Parallel()

	c := importCursor{direct: syms("b", "d", "e"), ambiguous: syms("a", "d", "f")}
	type step struct {
		sym       Symbol
		ambiguous bool
	}
	var got []step
	for sym, amb, ok := c.next(); ok; sym, amb, ok = c.next() {
		got = append(got, step{sym, amb})
	}
	want := []step{{"a", true}, {"b", false}, {"d", false}, {"e", false}, {"f", true}}
	if !slices.Equal(got, want) {
		t.Errorf("cursor order = %v, want %v", got, want)
	}
}

func TestResolve_PartitionCompleteness(t *testing.T) {
	t.Parallel()

	exports := []ExportRecord{
		{Target: "A", Exports: syms("a1.h", "shared.h")},
		{Target: "B", Exports: syms("b1.h", "shared.h")},
		{Target: "C", Exports: syms("c1.h")},
	}
	obs := []Observation{
		{Target: "T", Imports: syms("a1.h", "x.h"), AmbiguousImports: syms("shared.h", "y.h")},
		{Target: "T", Imports: syms("shared.h", "c1.h"), AmbiguousImports: syms("x.h", "b1.h")},
	}
	got := resolveOne(t, exports, obs...)

	seen := make(map[Symbol]int)
	for s := range got.Matches {
		seen[s]++
	}
	for _, s := range got.NotFound {
		seen[s]++
	}
	for _, s := range got.Ambiguous {
		seen[s]++
	}

	want := syms("a1.h", "b1.h", "c1.h", "shared.h", "x.h", "y.h")
	if len(seen) != len(want) {
		t.Fatalf("partition covers %v, want %v", seen, want)
	}
	for _, s := range want {
		if seen[s] != 1 {
			t.Errorf("symbol %q appears %d times across the partition", s, seen[s])
		}
	}
	if slices.Contains(got.Ambiguous, "x.h") {
		t.Error("x.h is a direct import and must not be reported as ambiguous")
	}
}
