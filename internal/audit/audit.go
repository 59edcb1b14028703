// SPDX-License-Identifier: MPL-2.0

package audit

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

type (
	// Input is a fully materialized audit run: every export record and every
	// per-translation-unit observation.
	Input struct {
		Exports      []ExportRecord
		Observations []Observation
	}

	// Options tunes Run.
	Options struct {
		// Jobs bounds the number of targets resolved concurrently. Zero or
		// negative values use GOMAXPROCS.
		Jobs int
		// Logger receives per-target debug output. nil discards it.
		Logger *log.Logger
		// RequireDeps withholds Unused for targets whose observations did not
		// report their dependencies. Such targets are still matched against
		// every export record and are listed in Report.Undeclared.
		RequireDeps bool
	}

	// Report is the result of a Run.
	Report struct {
		// Index is the export index the outcomes were resolved against.
		Index *ExportIndex
		// Outcomes holds one entry per observed target, sorted by target.
		Outcomes []Outcome
		// Imports holds the aggregated imports of each target, in the same
		// order as Outcomes.
		Imports []TargetImports
		// Undeclared lists the targets whose Unused was withheld under
		// Options.RequireDeps, sorted.
		Undeclared []Target
	}
)

// Resolve runs the merge engine and the assembler for a single target.
func Resolve(ti TargetImports, index *ExportIndex) Outcome {
	return Assemble(Match(ti, index, ti.DeclaredDependencies(index)))
}

// Run builds the export index, aggregates the observations and resolves every
// observed target. Targets are independent, so they are resolved on up to
// opts.Jobs goroutines sharing the read-only index. Cancelling ctx stops
// scheduling further targets and returns the context error.
func Run(ctx context.Context, in Input, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	index := NewExportIndex(FuseExports(in.Exports))
	targets := AggregateImports(in.Observations)
	logger.Debug("resolving targets", "targets", len(targets), "index_rows", index.Len(), "jobs", jobs)

	outcomes := make([]Outcome, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, ti := range targets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = Resolve(ti, index)
			if opts.RequireDeps && !ti.DepsDeclared {
				outcomes[i].Unused = []Target{}
			}
			logger.Debug("resolved target",
				"target", ti.Target,
				"matches", len(outcomes[i].Matches),
				"not_found", len(outcomes[i].NotFound),
				"unused", len(outcomes[i].Unused),
				"ambiguous", len(outcomes[i].Ambiguous))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve targets: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve targets: %w", err)
	}

	report := &Report{Index: index, Outcomes: outcomes, Imports: targets}
	if opts.RequireDeps {
		for _, ti := range targets {
			if !ti.DepsDeclared {
				report.Undeclared = append(report.Undeclared, ti.Target)
			}
		}
	}
	return report, nil
}

// WithIssues returns the outcomes that call for a build-file edit.
func (r *Report) WithIssues() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.HasIssues() {
			out = append(out, o)
		}
	}
	return out
}
