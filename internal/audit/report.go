// SPDX-License-Identifier: MPL-2.0

package audit

import "slices"

// Outcome is the per-target dependency verdict.
type Outcome struct {
	Target Target
	// Matches maps every resolved import, direct or ambiguous, to its owner.
	Matches map[Symbol]Target
	// NotFound lists direct imports no declared dependency exports.
	NotFound []Symbol
	// Unused lists declared dependencies that were never exercised.
	Unused []Target
	// Ambiguous lists ambiguous imports no declared dependency exports. They
	// may be satisfied outside the build graph and are never reported as
	// NotFound.
	Ambiguous []Symbol
}

// Assemble partitions a Resolution into an Outcome. All slices are sorted
// and non-nil.
func Assemble(res Resolution) Outcome {
	out := Outcome{
		Target:    res.Target,
		Matches:   make(map[Symbol]Target),
		NotFound:  []Symbol{},
		Unused:    []Target{},
		Ambiguous: []Symbol{},
	}
	for _, r := range res.Direct {
		if r.Owner == "" {
			out.NotFound = append(out.NotFound, r.Symbol)
			continue
		}
		out.Matches[r.Symbol] = r.Owner
	}
	for _, r := range res.Ambiguous {
		if r.Owner == "" {
			out.Ambiguous = append(out.Ambiguous, r.Symbol)
			continue
		}
		out.Matches[r.Symbol] = r.Owner
	}
	for dep, used := range res.Usage {
		if !used {
			out.Unused = append(out.Unused, dep)
		}
	}
	slices.Sort(out.Unused)
	return out
}

// HasIssues reports whether the outcome calls for a build-file edit.
func (o Outcome) HasIssues() bool {
	return len(o.NotFound) > 0 || len(o.Unused) > 0
}
