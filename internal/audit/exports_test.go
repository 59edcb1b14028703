// SPDX-License-Identifier: MPL-2.0

package audit

import (
	"errors"
	"slices"
	"testing"
)

func TestFuseExports(t *testing.T) {
	t.Parallel()

	got := FuseExports([]ExportRecord{
		{Target: "b", Exports: syms("y.h", "x.h")},
		{Target: "a", Exports: syms("a.h")},
		{Target: "b", Exports: syms("x.h", "z.h"), AlwaysUsed: true},
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 fused records, got %d: %v", len(got), got)
	}
	if got[0].Target != "a" || got[1].Target != "b" {
		t.Errorf("records not sorted by target: %v", got)
	}
	if !slices.Equal(got[1].Exports, syms("x.h", "y.h", "z.h")) {
		t.Errorf("fused exports = %v, want [x.h y.h z.h]", got[1].Exports)
	}
	if !got[1].AlwaysUsed {
		t.Error("expected AlwaysUsed to be OR-ed across records")
	}
	if got[0].AlwaysUsed {
		t.Error("expected a to stay not always-used")
	}
}

func TestNewExportIndex_SortedKeepsDuplicates(t *testing.T) {
	t.Parallel()

	idx := NewExportIndex([]ExportRecord{
		{Target: "Y", Exports: syms("b.h", "a.h")},
		{Target: "X", Exports: syms("b.h")},
	})

	want := []IndexEntry{
		{Symbol: "a.h", Owner: "Y"},
		{Symbol: "b.h", Owner: "X"},
		{Symbol: "b.h", Owner: "Y"},
	}
	if got := idx.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3", idx.Len())
	}
	if !slices.Equal(idx.Owners(), []Target{"X", "Y"}) {
		t.Errorf("Owners() = %v", idx.Owners())
	}
}

func TestExportIndex_Candidates(t *testing.T) {
	t.Parallel()

	idx := NewExportIndex([]ExportRecord{
		{Target: "B", Exports: syms("shared.h")},
		{Target: "A", Exports: syms("shared.h", "a.h")},
		{Target: "C", Exports: syms("c.h")},
	})

	tests := []struct {
		sym  Symbol
		want []Target
	}{
		{"shared.h", []Target{"A", "B"}},
		{"a.h", []Target{"A"}},
		{"missing.h", nil},
		{"zzz.h", nil},
	}
	for _, tt := range tests {
		if got := idx.Candidates(tt.sym); !slices.Equal(got, tt.want) {
			t.Errorf("Candidates(%q) = %v, want %v", tt.sym, got, tt.want)
		}
	}
}

func TestExportIndex_AlwaysUsed(t *testing.T) {
	t.Parallel()

	idx := NewExportIndex([]ExportRecord{{Target: "W", AlwaysUsed: true}, {Target: "X"}})
	if !idx.AlwaysUsed("W") {
		t.Error("expected W to be always-used")
	}
	if idx.AlwaysUsed("X") || idx.AlwaysUsed("unknown") {
		t.Error("expected X and unknown targets not to be always-used")
	}
}

func TestTargetAndSymbolValidation(t *testing.T) {
	t.Parallel()

	if ok, _ := Target("//a:b").IsValid(); !ok {
		t.Error("expected //a:b to be a valid target")
	}
	ok, errs := Target("  ").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidTarget) {
		t.Errorf("whitespace target: ok=%v errs=%v", ok, errs)
	}
	ok, errs = Symbol("").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidSymbol) {
		t.Errorf("empty symbol: ok=%v errs=%v", ok, errs)
	}
}
