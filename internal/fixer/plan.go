// SPDX-License-Identifier: MPL-2.0

package fixer

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/ccmeta/ccmeta/internal/audit"
	"github.com/ccmeta/ccmeta/internal/dag"
)

type (
	// Chooser picks the dependency that should provide a missing symbol.
	// options holds the targets exporting sym and is empty when none does.
	// Returning "" skips the symbol.
	Chooser interface {
		Choose(ctx context.Context, target audit.Target, sym audit.Symbol, options []audit.Target) (audit.Target, error)
	}

	// NonInteractive skips every prompt. Symbols with exactly one candidate
	// are still fixed because they never reach the Chooser.
	NonInteractive struct{}

	// Edit is the set of dependency changes for one target.
	Edit struct {
		Target audit.Target
		Add    []audit.Target
		Remove []audit.Target
	}

	// Options configures Plan.
	Options struct {
		Chooser Chooser
		Logger  *log.Logger
	}
)

// Choose implements Chooser.
func (NonInteractive) Choose(context.Context, audit.Target, audit.Symbol, []audit.Target) (audit.Target, error) {
	return "", nil
}

// Empty reports whether the edit changes nothing.
func (e Edit) Empty() bool {
	return len(e.Add) == 0 && len(e.Remove) == 0
}

// Plan computes the edits for issues. Targets are visited dependency-first
// along the dependencies each outcome matched, falling back to label order
// when those already form a cycle. An addition that would close a cycle is
// dropped with a warning. A target's edge to itself is never edited. Targets
// with nothing to change are omitted.
func Plan(ctx context.Context, issues []audit.Outcome, index *audit.ExportIndex, opts Options) ([]Edit, error) {
	chooser := opts.Chooser
	if chooser == nil {
		chooser = NonInteractive{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	graph := dag.New()
	byTarget := make(map[audit.Target]audit.Outcome, len(issues))
	for _, o := range issues {
		byTarget[o.Target] = o
		graph.AddNode(string(o.Target))
		for _, owner := range o.Matches {
			if owner != o.Target {
				graph.AddEdge(string(owner), string(o.Target))
			}
		}
	}

	order, err := visitOrder(graph, byTarget)
	if err != nil {
		logger.Warn("declared dependencies form a cycle, editing in label order", "err", err)
	}

	var edits []Edit
	for _, target := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edit, err := planTarget(ctx, byTarget[target], index, chooser, graph, logger)
		if err != nil {
			return nil, err
		}
		if !edit.Empty() {
			edits = append(edits, edit)
		}
	}
	return edits, nil
}

// visitOrder returns the targets of byTarget dependency-first. On a cycle it
// returns them in label order together with the cycle error.
func visitOrder(graph *dag.Graph, byTarget map[audit.Target]audit.Outcome) ([]audit.Target, error) {
	sorted, err := graph.TopologicalSort()
	if err != nil {
		var cycleErr *dag.CycleError
		if !errors.As(err, &cycleErr) {
			return nil, err
		}
		order := make([]audit.Target, 0, len(byTarget))
		for t := range byTarget {
			order = append(order, t)
		}
		slices.Sort(order)
		return order, err
	}

	order := make([]audit.Target, 0, len(byTarget))
	for _, node := range sorted {
		if _, ok := byTarget[audit.Target(node)]; ok {
			order = append(order, audit.Target(node))
		}
	}
	return order, nil
}

func planTarget(
	ctx context.Context,
	o audit.Outcome,
	index *audit.ExportIndex,
	chooser Chooser,
	graph *dag.Graph,
	logger *log.Logger,
) (Edit, error) {
	add := make(map[audit.Target]struct{})
	for _, sym := range o.NotFound {
		options := slices.DeleteFunc(index.Candidates(sym), func(t audit.Target) bool { return t == o.Target })

		var choice audit.Target
		if len(options) == 1 {
			choice = options[0]
		} else {
			var err error
			if choice, err = chooser.Choose(ctx, o.Target, sym, options); err != nil {
				return Edit{}, err
			}
		}
		if choice == "" || choice == o.Target {
			logger.Debug("skipping symbol", "target", o.Target, "symbol", sym)
			continue
		}
		if graph.WouldCycle(string(choice), string(o.Target)) {
			logger.Warn("dropping addition that would create a dependency cycle",
				"target", o.Target, "dependency", choice, "symbol", sym)
			continue
		}
		graph.AddEdge(string(choice), string(o.Target))
		add[choice] = struct{}{}
	}

	edit := Edit{Target: o.Target}
	for t := range add {
		edit.Add = append(edit.Add, t)
	}
	slices.Sort(edit.Add)
	for _, t := range o.Unused {
		if t == o.Target {
			continue
		}
		if _, readded := add[t]; !readded && !slices.Contains(edit.Remove, t) {
			edit.Remove = append(edit.Remove, t)
		}
	}
	slices.Sort(edit.Remove)
	return edit, nil
}
