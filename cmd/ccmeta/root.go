// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/ccmeta/ccmeta/internal/bazel"
	"github.com/ccmeta/ccmeta/internal/config"
	"github.com/ccmeta/ccmeta/internal/fixer"
	"github.com/ccmeta/ccmeta/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and reaches configuration, processes and prompts
	// through it.
	App struct {
		Config      config.Provider
		ExecCommand bazel.ExecCommandFunc
		// Chooser overrides the prompt used by fix; nil builds one from
		// configuration.
		Chooser fixer.Chooser
		stdout  io.Writer
		stderr  io.Writer
		stdin   io.Reader
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		ExecCommand bazel.ExecCommandFunc
		Chooser     fixer.Chooser
		Stdout      io.Writer
		Stderr      io.Writer
		Stdin       io.Reader
	}

	// rootFlagValues holds the global flags and the display settings the
	// error handler needs after a command returns.
	rootFlagValues struct {
		verbose    bool
		configPath string
		// glamourStyle is the catalog page style, set once config is loaded.
		glamourStyle string
	}

	// session is the per-invocation state shared by subcommands.
	session struct {
		cfg     *config.Config
		logger  *log.Logger
		verbose bool
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:      deps.Config,
		ExecCommand: deps.ExecCommand,
		Chooser:     deps.Chooser,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		stdin:       deps.Stdin,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.ExecCommand == nil {
		app.ExecCommand = exec.CommandContext
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	return app
}

// NewRootCommand builds the ccmeta command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	root, _ := newRootCommand(app)
	return root
}

func newRootCommand(app *App) (*cobra.Command, *rootFlagValues) {
	flags := &rootFlagValues{glamourStyle: glamourStyle(config.ColorSchemeAuto)}

	root := &cobra.Command{
		Use:   "ccmeta",
		Short: "Audit and fix C/C++ dependency declarations",
		Long: TitleStyle.Render("ccmeta") + SubtitleStyle.Render(" - audit and fix C/C++ dependency declarations") + `

ccmeta compares what every target includes with what its declared
dependencies export. It reports includes no dependency provides
(not_found), dependencies nothing uses (unused) and environment
includes that could not be attributed (ambiguous).

` + SubtitleStyle.Render("Examples:") + `
  ccmeta refresh                       Build metadata and audit the workspace
  ccmeta fix --dry-run                 Show the build file edits refresh found
  ccmeta check -e 'bazel-bin/**/*_cc_meta_exports.json' \
               -i 'bazel-bin/**/*_cc_meta_imports.json'
  ccmeta config show                   Show the current configuration`,
	}

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/ccmeta/config.cue)")

	root.AddCommand(
		newCheckCommand(app, flags),
		newCombineCommand(app, flags),
		newRefreshCommand(app, flags),
		newFixCommand(app, flags),
		newConfigCommand(app, flags),
	)

	root.SetOut(app.stdout)
	root.SetErr(app.stderr)
	root.SetIn(app.stdin)
	return root, flags
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the ccmeta command tree. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	root, flags := newRootCommand(app)

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler(flags)),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

// session loads configuration and builds the logger for one command run.
// The --verbose flag and ui.verbose are OR-ed.
func (a *App) session(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	verbose := flags.verbose || cfg.UI.Verbose
	flags.verbose = verbose
	flags.glamourStyle = glamourStyle(cfg.UI.ColorScheme)

	return &session{
		cfg:     cfg,
		logger:  newLogger(a.stderr, verbose),
		verbose: verbose,
	}, nil
}

// newLogger creates the logger shared by every component of a run.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// glamourStyle maps the configured color scheme to a glamour style.
func glamourStyle(cs config.ColorScheme) string {
	switch cs {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// errorHandler renders actionable errors with their suggestions and catalog
// page, and defers to fang for everything else. An ExitError without a
// cause only sets the exit code.
func errorHandler(flags *rootFlagValues) fang.ErrorHandler {
	return func(w io.Writer, styles fang.Styles, err error) {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return
		}
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			renderActionableError(w, ae, flags.verbose, flags.glamourStyle)
			return
		}
		fang.DefaultErrorHandler(w, styles, err)
	}
}

// renderActionableError writes ae followed by its catalog page, if any.
func renderActionableError(w io.Writer, ae *issue.ActionableError, verbose bool, style string) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(verbose))
	if page := ae.Page(); page != nil {
		if rendered, err := page.Render(style); err == nil {
			fmt.Fprint(w, rendered)
		}
	}
}
