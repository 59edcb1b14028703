// SPDX-License-Identifier: MPL-2.0

package audit

import (
	"cmp"
	"slices"
)

type (
	// TargetImports is the fused import set of one target. Imports and
	// AmbiguousImports are sorted, deduplicated and disjoint: a symbol observed
	// both ways is kept only as a direct import.
	TargetImports struct {
		Target           Target
		Imports          []Symbol
		AmbiguousImports []Symbol
		// Deps is the union of the declared dependencies reported by the
		// target's observations, sorted. It is meaningful only when
		// DepsDeclared is true.
		Deps         []Target
		DepsDeclared bool
	}

	// importSets accumulates one target's observations during the fold.
	importSets struct {
		direct       map[Symbol]struct{}
		ambiguous    map[Symbol]struct{}
		deps         map[Target]struct{}
		depsDeclared bool
	}
)

// AggregateImports groups observations by target and unions their import,
// ambiguous-import and declared-dependency sets. The fold is order-independent
// and tolerates duplicate observations. The result is sorted by target.
func AggregateImports(observations []Observation) []TargetImports {
	byTarget := make(map[Target]*importSets)
	for _, obs := range observations {
		sets, ok := byTarget[obs.Target]
		if !ok {
			sets = &importSets{
				direct:    make(map[Symbol]struct{}),
				ambiguous: make(map[Symbol]struct{}),
				deps:      make(map[Target]struct{}),
			}
			byTarget[obs.Target] = sets
		}
		for _, sym := range obs.Imports {
			sets.direct[sym] = struct{}{}
		}
		for _, sym := range obs.AmbiguousImports {
			sets.ambiguous[sym] = struct{}{}
		}
		if obs.Deps != nil {
			sets.depsDeclared = true
			for _, dep := range obs.Deps {
				sets.deps[dep] = struct{}{}
			}
		}
	}

	out := make([]TargetImports, 0, len(byTarget))
	for target, sets := range byTarget {
		for sym := range sets.direct {
			delete(sets.ambiguous, sym)
		}
		ti := TargetImports{
			Target:           target,
			Imports:          sortedKeys(sets.direct),
			AmbiguousImports: sortedKeys(sets.ambiguous),
			DepsDeclared:     sets.depsDeclared,
		}
		if sets.depsDeclared {
			ti.Deps = sortedKeys(sets.deps)
		}
		out = append(out, ti)
	}
	slices.SortFunc(out, func(a, b TargetImports) int { return cmp.Compare(a.Target, b.Target) })
	return out
}

// DeclaredDependencies returns the dependencies ti is resolved against. When
// the observations reported dependencies, those are used with AlwaysUsed
// looked up in the index, plus ti.Target itself if it exports anything;
// otherwise every owner in the index is a declared dependency.
func (ti TargetImports) DeclaredDependencies(index *ExportIndex) []Dependency {
	targets := ti.Deps
	if !ti.DepsDeclared {
		targets = index.Owners()
	} else if _, owns := slices.BinarySearch(index.owners, ti.Target); owns && !slices.Contains(targets, ti.Target) {
		targets = append(slices.Clone(targets), ti.Target)
		slices.Sort(targets)
	}
	deps := make([]Dependency, 0, len(targets))
	for _, t := range targets {
		deps = append(deps, Dependency{Target: t, AlwaysUsed: index.AlwaysUsed(t)})
	}
	return deps
}

func sortedKeys[K cmp.Ordered](set map[K]struct{}) []K {
	keys := make([]K, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
