// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ccmeta/ccmeta/internal/artifact"
	"github.com/ccmeta/ccmeta/internal/audit"
	"github.com/ccmeta/ccmeta/internal/bazel"
	"github.com/ccmeta/ccmeta/internal/compdb"
	"github.com/ccmeta/ccmeta/internal/issue"

	"github.com/spf13/cobra"
)

type refreshFlagValues struct {
	workspace string
}

func newRefreshCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &refreshFlagValues{}

	cmd := &cobra.Command{
		Use:   "refresh [pattern...] [-- build flags]",
		Short: "Build dependency metadata for the workspace and audit every target",
		Long: `Discover the C/C++ targets under the given patterns (default: the
configured bazel.target_patterns), build them with the metadata aspect,
resolve every target and write the workspace artifacts: the compilation
database, and the export map and dependency issue map that 'ccmeta fix'
reads.

Targets whose import records do not list their dependencies are matched
against every export record, but no dependency is reported unused for them.

A failing build does not stop the audit; the artifacts that were produced
are used and the failure is reported as a warning. Arguments after "--"
are passed to every build tool invocation.`,
		Example: `  bazel run @ccmeta//:refresh
  ccmeta refresh --workspace ~/src/project //app/... -- --config=ci`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			patterns, extra := splitAtDash(cmd, args)
			return runRefresh(cmd.Context(), app, s, flags, patterns, extra)
		},
	}

	cmd.Flags().StringVar(&flags.workspace, "workspace", "", "workspace root (default: $"+bazel.WorkspaceEnv+")")
	return cmd
}

// splitAtDash separates positional arguments from those after "--".
func splitAtDash(cmd *cobra.Command, args []string) (before, after []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}

func runRefresh(ctx context.Context, app *App, s *session, flags *refreshFlagValues, patterns, extraFlags []string) error {
	root, err := bazel.WorkspaceRoot(flags.workspace)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("locate the workspace").
			WithIssue(issue.WorkspaceNotFoundId).
			WithSuggestion("Run through the build tool or pass --workspace").
			Wrap(err).
			BuildError()
	}

	configured, err := bazel.SplitFlags(s.cfg.Bazel.Flags)
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		patterns = s.cfg.Bazel.TargetPatterns
	}
	binary := s.cfg.Bazel.Binary.String()

	client := bazel.NewClient(binary,
		bazel.WithExecCommand(app.ExecCommand),
		bazel.WithDir(root),
		bazel.WithAspect(s.cfg.Bazel.Aspect),
		bazel.WithFlags(append(configured, extraFlags...)...),
		bazel.WithLogger(s.logger),
	)

	s.logger.Info("discovering targets", "workspace", root, "patterns", patterns)
	targets, err := client.DiscoverTargets(ctx, patterns)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return toolError("discover targets", binary, issue.BuildToolNotFoundId, err)
		}
		return issue.NewErrorContext().
			WithOperation("discover targets").
			WithResource(strings.Join(patterns, " ")).
			WithIssue(issue.TargetDiscoveryFailedId).
			WithSuggestion("Check the target patterns and the build flags").
			Wrap(err).
			BuildError()
	}
	if len(targets) == 0 {
		s.logger.Warn("no C/C++ targets found", "patterns", patterns)
		return nil
	}

	s.logger.Info("building metadata", "targets", len(targets))
	arts, err := client.Build(ctx, targets)
	var partial *bazel.PartialBuildError
	switch {
	case errors.As(err, &partial):
		s.logger.Warn("build failed for some targets, continuing with partial results", "exit_code", partial.ExitCode)
	case err != nil:
		return toolError("build metadata", binary, issue.BuildToolNotFoundId, err)
	}
	for _, line := range arts.Diagnostics {
		fmt.Fprintln(app.stderr, WarningStyle.Render(line))
	}
	if len(arts.ExportFiles) == 0 && len(arts.ImportFiles) == 0 {
		return issue.NewErrorContext().
			WithOperation("collect metadata").
			WithResource(root).
			WithIssue(issue.NoArtifactsId).
			WithSuggestion("Check that the aspect " + s.cfg.Bazel.Aspect + " is loaded in the workspace").
			BuildError()
	}

	exports, err := artifact.LoadExports(arts.ExportFiles)
	if err != nil {
		return inputError("read export records", err)
	}
	observations, err := artifact.LoadImports(arts.ImportFiles)
	if err != nil {
		return inputError("read import observations", err)
	}

	report, err := audit.Run(ctx, audit.Input{Exports: exports, Observations: observations}, audit.Options{
		Jobs:        s.cfg.Audit.Jobs,
		Logger:      s.logger,
		RequireDeps: true,
	})
	if err != nil {
		return err
	}
	if len(report.Undeclared) > 0 {
		s.logger.Warn("import records do not list dependencies, skipping the unused check", "targets", report.Undeclared)
	}
	warnSystemIncludes(s, report)
	warnAmbiguous(s, report.Outcomes)

	if err := writeCompilationDatabase(ctx, client, s, root, arts); err != nil {
		return err
	}

	exportsPath := workspacePath(root, s.cfg.Audit.ExportsFile)
	if err := writeOutput(nil, exportsPath, func(w io.Writer) error {
		return artifact.WriteExportsMap(w, audit.FuseExports(exports))
	}); err != nil {
		return err
	}
	issuesPath := workspacePath(root, s.cfg.Audit.IssuesFile)
	if err := writeOutput(nil, issuesPath, func(w io.Writer) error {
		return artifact.WriteIssuesMap(w, report.Outcomes)
	}); err != nil {
		return err
	}

	printRefreshSummary(app.stdout, report, issuesPath)
	return nil
}

// warnSystemIncludes reports includes that resolved to a built-in or system
// directory although build targets export them. The target probably lacks a
// dependency, which fix cannot tell and must be added by hand.
func warnSystemIncludes(s *session, report *audit.Report) {
	for _, ti := range report.Imports {
		for _, sym := range ti.AmbiguousImports {
			candidates := report.Index.Candidates(sym)
			if len(candidates) == 0 {
				continue
			}
			s.logger.Warn("system include is also provided by build targets, probably a missing dependency",
				"target", ti.Target, "include", sym, "providers", candidates)
		}
	}
}

// warnAmbiguous lists, once, the includes that resolved to a system directory
// and that no declared dependency provides. Missing dependencies cannot be
// identified accurately for them.
func warnAmbiguous(s *session, outcomes []audit.Outcome) {
	seen := make(map[audit.Symbol]struct{})
	var includes []audit.Symbol
	for _, o := range outcomes {
		for _, sym := range o.Ambiguous {
			if _, ok := seen[sym]; !ok {
				seen[sym] = struct{}{}
				includes = append(includes, sym)
			}
		}
	}
	if len(includes) == 0 {
		return
	}
	slices.Sort(includes)
	s.logger.Warn("ambiguous includes resolved to a system directory; use a hermetic toolchain to audit them",
		"includes", includes)
}

// writeCompilationDatabase merges the per-target compile commands, lends each
// included header the command of a source that includes it and writes the
// result. Nothing is written when the build produced no compile commands.
func writeCompilationDatabase(ctx context.Context, client *bazel.Client, s *session, root string, arts bazel.Artifacts) error {
	cmds, err := artifact.LoadCompileCommands(arts.CompileCommandFiles)
	if err != nil {
		return inputError("read compile commands", err)
	}
	if len(cmds) == 0 {
		s.logger.Warn("no compile commands were produced, not writing the compilation database")
		return nil
	}
	lists, err := artifact.LoadSourceImports(arts.AllImportFiles)
	if err != nil {
		return inputError("read include lists", err)
	}

	db := compdb.New(client.ExecRoot(ctx, root))
	for _, c := range cmds {
		db.Add(c.File, c.Arguments)
	}
	for _, l := range lists {
		if !db.Attribute(l) {
			s.logger.Warn("missing compile command", "source", l.SourceFile)
		}
	}

	path := workspacePath(root, s.cfg.Audit.CompileCommandsFile)
	if err := writeOutput(nil, path, func(w io.Writer) error {
		return artifact.WriteCompileCommands(w, db.Commands())
	}); err != nil {
		return err
	}
	s.logger.Info("wrote compilation database", "path", path, "files", db.Len())
	return nil
}

func printRefreshSummary(w io.Writer, report *audit.Report, issuesPath string) {
	withIssues := report.WithIssues()
	if len(withIssues) == 0 {
		fmt.Fprintf(w, "%s %d targets audited, no dependency issues\n", SuccessStyle.Render("✓"), len(report.Outcomes))
		return
	}

	fmt.Fprintf(w, "%s %d of %d targets have dependency issues (%s)\n",
		WarningStyle.Render("!"), len(withIssues), len(report.Outcomes), issuesPath)
	for _, o := range withIssues {
		fmt.Fprintf(w, "  %s", CmdStyle.Render(string(o.Target)))
		if len(o.NotFound) > 0 {
			fmt.Fprintf(w, "  not_found: %d", len(o.NotFound))
		}
		if len(o.Unused) > 0 {
			fmt.Fprintf(w, "  unused: %d", len(o.Unused))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\nRun %s to apply the edits.\n", CmdStyle.Render("ccmeta fix"))
}

// workspacePath resolves a configured artifact path against the workspace.
func workspacePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
