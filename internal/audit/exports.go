// SPDX-License-Identifier: MPL-2.0

package audit

import (
	"cmp"
	"slices"
)

type (
	// IndexEntry is one (symbol, owner) row of the export index.
	IndexEntry struct {
		Symbol Symbol
		Owner  Target
	}

	// ExportIndex is the globally sorted list of exported symbols. It is
	// read-only after construction and safe for concurrent use.
	ExportIndex struct {
		entries    []IndexEntry
		alwaysUsed map[Target]bool
		owners     []Target
	}
)

// FuseExports merges export records that name the same target: exports are
// unioned and AlwaysUsed is true if any record sets it. The result is sorted
// by target and every export list is sorted and deduplicated.
func FuseExports(records []ExportRecord) []ExportRecord {
	byTarget := make(map[Target]*ExportRecord, len(records))
	for _, rec := range records {
		fused, ok := byTarget[rec.Target]
		if !ok {
			fused = &ExportRecord{Target: rec.Target}
			byTarget[rec.Target] = fused
		}
		fused.Exports = append(fused.Exports, rec.Exports...)
		fused.AlwaysUsed = fused.AlwaysUsed || rec.AlwaysUsed
	}

	out := make([]ExportRecord, 0, len(byTarget))
	for _, fused := range byTarget {
		fused.Exports = sortedSet(fused.Exports)
		out = append(out, *fused)
	}
	slices.SortFunc(out, func(a, b ExportRecord) int { return cmp.Compare(a.Target, b.Target) })
	return out
}

// NewExportIndex flattens records into one row per (record, exported symbol)
// pair, sorted by symbol and then by owner. Rows are never deduplicated across
// owners: when several targets export the same symbol, the owner that sorts
// first is the one the merge engine meets first.
//
// Records are expected to be fused by target (see FuseExports).
func NewExportIndex(records []ExportRecord) *ExportIndex {
	idx := &ExportIndex{
		alwaysUsed: make(map[Target]bool, len(records)),
		owners:     make([]Target, 0, len(records)),
	}
	for _, rec := range records {
		if _, seen := idx.alwaysUsed[rec.Target]; !seen {
			idx.owners = append(idx.owners, rec.Target)
		}
		idx.alwaysUsed[rec.Target] = idx.alwaysUsed[rec.Target] || rec.AlwaysUsed
		for _, sym := range rec.Exports {
			idx.entries = append(idx.entries, IndexEntry{Symbol: sym, Owner: rec.Target})
		}
	}
	slices.SortFunc(idx.entries, func(a, b IndexEntry) int {
		if c := cmp.Compare(a.Symbol, b.Symbol); c != 0 {
			return c
		}
		return cmp.Compare(a.Owner, b.Owner)
	})
	slices.Sort(idx.owners)
	return idx
}

// Len returns the number of rows in the index.
func (x *ExportIndex) Len() int { return len(x.entries) }

// Entries returns a copy of the sorted rows.
func (x *ExportIndex) Entries() []IndexEntry { return slices.Clone(x.entries) }

// Owners returns every target that contributed an export record, sorted.
func (x *ExportIndex) Owners() []Target { return slices.Clone(x.owners) }

// AlwaysUsed reports whether target's export record is flagged always-used.
// Targets without a record are never always-used.
func (x *ExportIndex) AlwaysUsed(target Target) bool { return x.alwaysUsed[target] }

// Candidates returns every owner exporting sym, in index order.
func (x *ExportIndex) Candidates(sym Symbol) []Target {
	i, _ := slices.BinarySearchFunc(x.entries, sym, func(e IndexEntry, s Symbol) int {
		return cmp.Compare(e.Symbol, s)
	})
	var out []Target
	for ; i < len(x.entries) && x.entries[i].Symbol == sym; i++ {
		out = append(out, x.entries[i].Owner)
	}
	return out
}

// sortedSet returns the sorted, deduplicated contents of items as a new slice.
func sortedSet[T cmp.Ordered](items []T) []T {
	out := slices.Clone(items)
	slices.Sort(out)
	return slices.Compact(out)
}
