// SPDX-License-Identifier: MPL-2.0

package fixer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/syntax"

	"github.com/ccmeta/ccmeta/internal/audit"
	"github.com/ccmeta/ccmeta/internal/bazel"
)

// DefaultBuildozer is the buildozer binary looked up on PATH.
const DefaultBuildozer = "buildozer"

// buildozerNoChanges is buildozer's exit code for a successful run that left
// every file untouched.
const buildozerNoChanges = 3

type (
	// Resolver canonicalizes target labels.
	Resolver interface {
		Resolve(ctx context.Context, label string) string
	}

	// EditorOption configures an Editor.
	EditorOption func(*Editor)

	// Editor applies Edits to build files with buildozer.
	Editor struct {
		runner   *bazel.Client
		binary   string
		resolver Resolver
		dryRun   bool
		out      io.Writer
		logger   *log.Logger
		runOpts  []bazel.ClientOption
	}
)

// WithDryRun prints the buildozer commands to w instead of running them.
func WithDryRun(w io.Writer) EditorOption {
	return func(e *Editor) {
		e.dryRun = true
		e.out = w
	}
}

// WithResolver canonicalizes labels before editing.
func WithResolver(r Resolver) EditorOption {
	return func(e *Editor) { e.resolver = r }
}

// WithEditorLogger sets the logger.
func WithEditorLogger(logger *log.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = logger
		e.runOpts = append(e.runOpts, bazel.WithLogger(logger))
	}
}

// WithRunOptions passes options to the underlying command runner, such as
// the working directory or a test exec function.
func WithRunOptions(opts ...bazel.ClientOption) EditorOption {
	return func(e *Editor) { e.runOpts = append(e.runOpts, opts...) }
}

// NewEditor creates an Editor for the buildozer binary. An empty binary
// means DefaultBuildozer.
func NewEditor(binary string, opts ...EditorOption) *Editor {
	if binary == "" {
		binary = DefaultBuildozer
	}
	e := &Editor{binary: binary, out: io.Discard, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(e)
	}
	e.runner = bazel.NewClient(binary, e.runOpts...)
	return e
}

// Commands returns the buildozer argument lists for edit: removals first,
// then additions.
func (e *Editor) Commands(ctx context.Context, edit Edit) [][]string {
	target := e.canonical(ctx, edit.Target)
	var cmds [][]string
	if len(edit.Remove) > 0 {
		cmds = append(cmds, []string{"-k", "-quiet", "remove deps " + e.join(ctx, edit.Remove), target})
	}
	if len(edit.Add) > 0 {
		cmds = append(cmds, []string{"-k", "-quiet", "add deps " + e.join(ctx, edit.Add), target})
	}
	return cmds
}

// Apply runs the commands for every edit in order. It stops at the first
// failing command.
func (e *Editor) Apply(ctx context.Context, edits []Edit) error {
	for _, edit := range edits {
		for _, args := range e.Commands(ctx, edit) {
			if e.dryRun {
				if _, err := fmt.Fprintln(e.out, e.render(args)); err != nil {
					return err
				}
				continue
			}

			res, err := e.runner.Run(ctx, args...)
			if err != nil {
				return err
			}
			if res.ExitCode != 0 && res.ExitCode != buildozerNoChanges {
				return &bazel.CommandError{
					Args:     append([]string{e.binary}, args...),
					ExitCode: res.ExitCode,
					Stderr:   strings.TrimSpace(string(res.Stderr)),
				}
			}
			e.logger.Info("edited", "target", edit.Target, "command", args[2])
		}
	}
	return nil
}

func (e *Editor) canonical(ctx context.Context, t audit.Target) string {
	if e.resolver == nil {
		return string(t)
	}
	return e.resolver.Resolve(ctx, string(t))
}

func (e *Editor) join(ctx context.Context, targets []audit.Target) string {
	labels := make([]string, len(targets))
	for i, t := range targets {
		labels[i] = e.canonical(ctx, t)
	}
	return strings.Join(labels, " ")
}

// render formats args as a copy-pasteable shell command.
func (e *Editor) render(args []string) string {
	words := make([]string, 0, len(args)+1)
	for _, w := range append([]string{e.binary}, args...) {
		quoted, err := syntax.Quote(w, syntax.LangBash)
		if err != nil {
			quoted = fmt.Sprintf("%q", w)
		}
		words = append(words, quoted)
	}
	return strings.Join(words, " ")
}
