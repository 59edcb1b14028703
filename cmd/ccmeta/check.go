// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/ccmeta/ccmeta/internal/artifact"
	"github.com/ccmeta/ccmeta/internal/audit"
	"github.com/ccmeta/ccmeta/internal/issue"
	"github.com/ccmeta/ccmeta/internal/watch"

	"github.com/spf13/cobra"
)

type checkFlagValues struct {
	exports      []string
	imports      []string
	output       string
	format       string
	jobs         int
	failOnIssues bool
	watch        bool
	debounce     time.Duration
}

func newCheckCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &checkFlagValues{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve observed imports against exports and report dependency issues",
		Long: `Resolve every observed target's imports against the export records and
write one outcome per target: matched symbols, includes no declared
dependency provides (not_found), declared dependencies nothing uses
(unused) and ambiguous includes that stayed unresolved.

Paths may be doublestar globs; quote them so the shell does not expand them.`,
		Example: `  ccmeta check -e exports.json -i imports.json
  ccmeta check -e 'bazel-bin/**/*_cc_meta_exports.json' -i 'bazel-bin/**/*_cc_meta_imports.json' --format yaml
  ccmeta check -e exports.json -i imports.json --fail-on-issues`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.session(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				flags.format = string(s.cfg.Audit.Format)
			}
			if !cmd.Flags().Changed("jobs") {
				flags.jobs = s.cfg.Audit.Jobs
			}
			return runCheck(cmd.Context(), app, s, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.exports, "exports", "e", nil, "export records file or glob (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.imports, "imports", "i", nil, "import observations file or glob (repeatable)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&flags.format, "format", string(artifact.FormatJSON), "report format: json, yaml or toml")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "targets resolved in parallel (0 uses all CPUs)")
	cmd.Flags().BoolVar(&flags.failOnIssues, "fail-on-issues", false, "exit with status 3 when any target has not_found or unused entries")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-run whenever an input file changes")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", watch.DefaultDebounce, "quiet period before a watched change triggers a run")
	_ = cmd.MarkFlagRequired("exports")
	_ = cmd.MarkFlagRequired("imports")

	return cmd
}

func runCheck(ctx context.Context, app *App, s *session, flags *checkFlagValues) error {
	format := artifact.Format(flags.format)
	if ok, errs := format.IsValid(); !ok {
		return errors.Join(errs...)
	}
	if flags.watch && flags.failOnIssues {
		return fmt.Errorf("--watch and --fail-on-issues cannot be used together")
	}

	report, err := checkOnce(ctx, app.stdout, s, flags, format)
	if err != nil {
		return err
	}

	if flags.watch {
		return watchCheck(ctx, app, s, flags, format)
	}

	if withIssues := report.WithIssues(); flags.failOnIssues && len(withIssues) > 0 {
		return &ExitError{Code: ExitIssuesFound, Err: issue.NewErrorContext().
			WithOperation("pass the dependency check").
			WithResource(fmt.Sprintf("%d of %d targets have issues", len(withIssues), len(report.Outcomes))).
			WithIssue(issue.DependencyIssuesFoundId).
			WithSuggestion("Run 'ccmeta fix' to apply the reported edits").
			Build()}
	}
	return nil
}

// checkOnce loads the inputs, resolves every target and writes the report.
func checkOnce(ctx context.Context, stdout io.Writer, s *session, flags *checkFlagValues, format artifact.Format) (*audit.Report, error) {
	exportPaths, err := artifact.ExpandPaths(flags.exports)
	if err != nil {
		return nil, inputError("find export records", err)
	}
	importPaths, err := artifact.ExpandPaths(flags.imports)
	if err != nil {
		return nil, inputError("find import observations", err)
	}
	s.logger.Debug("loading inputs", "export_files", len(exportPaths), "import_files", len(importPaths))

	exports, err := artifact.LoadExports(exportPaths)
	if err != nil {
		return nil, inputError("read export records", err)
	}
	observations, err := artifact.LoadImports(importPaths)
	if err != nil {
		return nil, inputError("read import observations", err)
	}

	report, err := audit.Run(ctx, audit.Input{Exports: exports, Observations: observations}, audit.Options{
		Jobs:   flags.jobs,
		Logger: s.logger,
	})
	if err != nil {
		return nil, err
	}

	if err := writeOutput(stdout, flags.output, func(w io.Writer) error {
		return artifact.WriteReport(w, report.Outcomes, format)
	}); err != nil {
		return nil, err
	}

	s.logger.Debug("check complete", "targets", len(report.Outcomes), "with_issues", len(report.WithIssues()))
	return report, nil
}

// watchCheck re-runs the check whenever an input changes until ctx ends.
func watchCheck(ctx context.Context, app *App, s *session, flags *checkFlagValues, format artifact.Format) error {
	w, err := watch.New(watch.Config{
		Paths:    slices.Concat(flags.exports, flags.imports),
		Debounce: flags.debounce,
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Debug("re-running check", "changed", changed)
			_, err := checkOnce(ctx, app.stdout, s, flags, format)
			return err
		},
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	s.logger.Info("watching inputs, press Ctrl+C to stop", "dirs", len(w.Dirs()))
	return w.Run(ctx)
}
