// SPDX-License-Identifier: MPL-2.0

package audit

type (
	// Resolved pairs an import with the declared dependency it was attributed
	// to. Owner is empty when no declared dependency exports the symbol.
	Resolved struct {
		Symbol Symbol
		Owner  Target
	}

	// Resolution is the raw result of matching one target's imports against
	// the export index.
	Resolution struct {
		Target Target
		// Direct holds one entry per direct import, in symbol order.
		Direct []Resolved
		// Ambiguous holds one entry per ambiguous import that is not shadowed
		// by a direct import of the same symbol, in symbol order.
		Ambiguous []Resolved
		// Usage maps every declared dependency to whether it was exercised.
		Usage map[Target]bool
	}

	// importCursor merges the sorted direct and ambiguous import sequences
	// into one ascending stream of symbols.
	importCursor struct {
		direct    []Symbol
		ambiguous []Symbol
		d, a      int
	}
)

// next returns the smallest pending symbol and whether it came from the
// ambiguous sequence. Ties go to the ambiguous cursor, and an ambiguous
// symbol equal to the current direct symbol is shadowed: it is skipped and
// never returned. ok is false once both sequences are exhausted.
func (c *importCursor) next() (sym Symbol, ambiguous, ok bool) {
	for {
		hasDirect := c.d < len(c.direct)
		hasAmbiguous := c.a < len(c.ambiguous)
		switch {
		case hasDirect && hasAmbiguous:
			amb, dir := c.ambiguous[c.a], c.direct[c.d]
			if amb == dir {
				c.a++
				continue
			}
			if amb < dir {
				c.a++
				return amb, true, true
			}
			c.d++
			return dir, false, true
		case hasDirect:
			c.d++
			return c.direct[c.d-1], false, true
		case hasAmbiguous:
			c.a++
			return c.ambiguous[c.a-1], true, true
		default:
			return "", false, false
		}
	}
}

// Match resolves ti's imports against index in one forward pass.
//
// The direct and ambiguous sequences of ti and the index rows must all be
// ascending by symbol; AggregateImports and NewExportIndex guarantee this.
// The index cursor never rewinds, so the cost is linear in the total number
// of imports and index rows. Once the index cursor is exhausted no further
// symbol can match and the remaining imports are only classified.
//
// A symbol is attributed to the first index row with that symbol whose owner
// is one of deps. The first-sorted-owner tie-break thus applies among declared
// owners only: an undeclared owner that sorts earlier never takes the symbol,
// and the next declared owner does. Usage starts true for always-used dependencies and for the
// target itself, and becomes true for every dependency a symbol is
// attributed to.
func Match(ti TargetImports, index *ExportIndex, deps []Dependency) Resolution {
	usage := make(map[Target]bool, len(deps))
	for _, dep := range deps {
		usage[dep.Target] = usage[dep.Target] || dep.AlwaysUsed || dep.Target == ti.Target
	}

	res := Resolution{
		Target:    ti.Target,
		Direct:    make([]Resolved, 0, len(ti.Imports)),
		Ambiguous: make([]Resolved, 0, len(ti.AmbiguousImports)),
		Usage:     usage,
	}

	entries := index.entries
	cur := importCursor{direct: ti.Imports, ambiguous: ti.AmbiguousImports}
	e := 0
	for sym, ambiguous, ok := cur.next(); ok; sym, ambiguous, ok = cur.next() {
		var owner Target
		if e < len(entries) {
			for e < len(entries) && entries[e].Symbol < sym {
				e++
			}
			owner = declaredOwner(entries, e, sym, usage)
			if owner != "" {
				usage[owner] = true
			}
		}

		r := Resolved{Symbol: sym, Owner: owner}
		if ambiguous {
			res.Ambiguous = append(res.Ambiguous, r)
		} else {
			res.Direct = append(res.Direct, r)
		}
	}
	return res
}

// declaredOwner scans the rows starting at from that carry sym and returns
// the first owner present in declared, or "" if there is none. It does not
// move the caller's cursor.
func declaredOwner(entries []IndexEntry, from int, sym Symbol, declared map[Target]bool) Target {
	for i := from; i < len(entries) && entries[i].Symbol == sym; i++ {
		if _, ok := declared[entries[i].Owner]; ok {
			return entries[i].Owner
		}
	}
	return ""
}
