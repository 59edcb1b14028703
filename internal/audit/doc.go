// SPDX-License-Identifier: MPL-2.0

// Package audit resolves the declared dependencies of build targets against
// the symbols they actually import.
//
// Resolution is split into four stages, each consuming the previous one's
// output:
//
//  1. ExportIndex flattens per-target export records into one sorted list of
//     (symbol, owner) rows.
//  2. AggregateImports folds per-translation-unit observations into one
//     sorted, deduplicated import set per target.
//  3. Match walks a target's direct imports, its ambiguous imports and the
//     export index in a single forward merge and records which declared
//     dependencies were exercised.
//  4. Assemble partitions the match result into the reported Outcome.
//
// The export index is immutable once built and each target's usage state is
// private to its own resolution, so Run resolves targets concurrently without
// locking.
package audit
