// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"

	"github.com/ccmeta/ccmeta/internal/artifact"
	"github.com/ccmeta/ccmeta/internal/audit"
	"github.com/ccmeta/ccmeta/internal/bazel"
	"github.com/ccmeta/ccmeta/internal/fixer"
	"github.com/ccmeta/ccmeta/internal/issue"
	"github.com/ccmeta/ccmeta/internal/tui"

	"github.com/spf13/cobra"
)

type fixFlagValues struct {
	workspace   string
	issuesFile  string
	exportsFile string
	dryRun      bool
	yes         bool
}

func newFixCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &fixFlagValues{}

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Apply the dependency edits found by refresh",
		Long: `Remove unused dependencies and add missing ones to the build files,
using the issue and export maps written by 'ccmeta refresh'.

A missing include exported by exactly one target is added directly. When
several targets export it, or none does, you are asked which label to add;
with --yes (or ui.interactive = false) those includes are skipped. An
addition that would create a dependency cycle is never made.`,
		Example: `  ccmeta fix --dry-run
  ccmeta fix --yes
  ccmeta fix -i dependency_issues.json -e target_exports.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.session(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			return runFix(cmd.Context(), app, s, flags)
		},
	}

	cmd.Flags().StringVar(&flags.workspace, "workspace", "", "workspace root (default: $"+bazel.WorkspaceEnv+")")
	cmd.Flags().StringVarP(&flags.issuesFile, "issues", "i", "", "dependency issue map (default: audit.issues_file in the workspace)")
	cmd.Flags().StringVarP(&flags.exportsFile, "exports", "e", "", "export map (default: audit.exports_file in the workspace)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the buildozer commands instead of running them")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "never prompt; skip includes without a single candidate")

	return cmd
}

func runFix(ctx context.Context, app *App, s *session, flags *fixFlagValues) error {
	root, err := bazel.WorkspaceRoot(flags.workspace)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("locate the workspace").
			WithIssue(issue.WorkspaceNotFoundId).
			WithSuggestion("Run through the build tool or pass --workspace").
			Wrap(err).
			BuildError()
	}

	issuesPath := flags.issuesFile
	if issuesPath == "" {
		issuesPath = workspacePath(root, s.cfg.Audit.IssuesFile)
	}
	exportsPath := flags.exportsFile
	if exportsPath == "" {
		exportsPath = workspacePath(root, s.cfg.Audit.ExportsFile)
	}

	outcomes, err := readWorkspaceMap(issuesPath, artifact.ReadIssuesMap)
	if err != nil {
		return workspaceMapError("read dependency issues", issuesPath, err)
	}
	exports, err := readWorkspaceMap(exportsPath, artifact.ReadExportsMap)
	if err != nil {
		return workspaceMapError("read export map", exportsPath, err)
	}
	index := audit.NewExportIndex(audit.FuseExports(exports))

	edits, err := fixer.Plan(ctx, outcomes, index, fixer.Options{
		Chooser: app.chooser(s, flags.yes),
		Logger:  s.logger,
	})
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("plan dependency edits").
			WithIssue(issue.FixFailedId).
			Wrap(err).
			BuildError()
	}
	if len(edits) == 0 {
		fmt.Fprintf(app.stdout, "%s nothing to fix\n", SuccessStyle.Render("✓"))
		return nil
	}

	editor, err := app.newEditor(s, root, flags.dryRun)
	if err != nil {
		return err
	}

	buildozer := s.cfg.Buildozer.Binary.String()
	if err := editor.Apply(ctx, edits); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return toolError("apply dependency edits", buildozer, issue.BuildozerNotFoundId, err)
		}
		return issue.NewErrorContext().
			WithOperation("apply dependency edits").
			WithIssue(issue.FixFailedId).
			WithSuggestion("Re-run 'ccmeta refresh'; the build files may have changed since").
			Wrap(err).
			BuildError()
	}

	if !flags.dryRun {
		fmt.Fprintf(app.stdout, "%s edited %d targets\n", SuccessStyle.Render("✓"), len(edits))
	}
	return nil
}

// chooser returns the prompt used for includes without a single candidate.
// Prompts draw on stderr so dry-run output on stdout stays clean.
func (a *App) chooser(s *session, yes bool) fixer.Chooser {
	switch {
	case a.Chooser != nil:
		return a.Chooser
	case yes || !s.cfg.UI.Interactive:
		return fixer.NonInteractive{}
	default:
		return tui.NewChooser(tui.NewConfig(a.stdin, a.stderr))
	}
}

// newEditor builds the buildozer editor. Labels are canonicalized through
// the build tool's query command so edits match the build files.
func (a *App) newEditor(s *session, root string, dryRun bool) (*fixer.Editor, error) {
	configured, err := bazel.SplitFlags(s.cfg.Bazel.Flags)
	if err != nil {
		return nil, err
	}
	client := bazel.NewClient(s.cfg.Bazel.Binary.String(),
		bazel.WithExecCommand(a.ExecCommand),
		bazel.WithDir(root),
		bazel.WithFlags(configured...),
		bazel.WithLogger(s.logger),
	)
	resolver, err := bazel.NewLabelResolver(client, 0, s.cfg.Bazel.QueryAttempts)
	if err != nil {
		return nil, err
	}

	opts := []fixer.EditorOption{
		fixer.WithResolver(resolver),
		fixer.WithEditorLogger(s.logger),
		fixer.WithRunOptions(bazel.WithExecCommand(a.ExecCommand), bazel.WithDir(root)),
	}
	if dryRun {
		opts = append(opts, fixer.WithDryRun(a.stdout))
	}
	return fixer.NewEditor(s.cfg.Buildozer.Binary.String(), opts...), nil
}

func readWorkspaceMap[T any](path string, read func(io.Reader, string) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f, path)
}

func workspaceMapError(operation, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return issue.NewErrorContext().
			WithOperation(operation).
			WithResource(path).
			WithIssue(issue.NoArtifactsId).
			WithSuggestion("Run 'ccmeta refresh' first").
			Wrap(err).
			BuildError()
	}
	return inputError(operation, err)
}
