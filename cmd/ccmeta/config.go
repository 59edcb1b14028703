// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/ccmeta/ccmeta/internal/config"
	"github.com/ccmeta/ccmeta/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `ccmeta config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ccmeta configuration",
		Long: `Manage ccmeta configuration.

Configuration is read from the first file found of:
  - the --config flag
  - the user config directory (Linux: ~/.config/ccmeta/config.cue,
    macOS: ~/Library/Application Support/ccmeta/config.cue,
    Windows: %APPDATA%\ccmeta\config.cue)
  - ccmeta.cue in the working directory

Any value can be overridden with a CCMETA_ environment variable, for
example CCMETA_AUDIT_JOBS=4 or CCMETA_BAZEL_BINARY=bazelisk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context(), rootFlags)
			if err != nil {
				if rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render(rootFlags.glamourStyle); renderErr == nil {
					fmt.Fprint(app.stderr, rendered)
				}
				return err
			}
			path, _ := config.ResolvePath(config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			showConfig(app.stdout, s.cfg, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)

			path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				return err
			}
			if path == "" {
				path = "(none, using defaults)"
			}
			fmt.Fprintf(app.stdout, "Config file: %s\n", path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config, path string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path == "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	}

	section := func(name string, pairs ...string) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s:\n", keyStyle.Render(name))
		for i := 0; i+1 < len(pairs); i += 2 {
			value := pairs[i+1]
			if value == "" {
				value = SubtitleStyle.Render("(empty)")
			} else {
				value = valueStyle.Render(value)
			}
			fmt.Fprintf(w, "  %s: %s\n", pairs[i], value)
		}
	}

	section("bazel",
		"binary", cfg.Bazel.Binary.String(),
		"flags", cfg.Bazel.Flags,
		"target_patterns", strings.Join(cfg.Bazel.TargetPatterns, " "),
		"aspect", cfg.Bazel.Aspect,
		"query_attempts", fmt.Sprint(cfg.Bazel.QueryAttempts))
	section("buildozer",
		"binary", cfg.Buildozer.Binary.String())
	section("audit",
		"jobs", fmt.Sprint(cfg.Audit.Jobs),
		"format", string(cfg.Audit.Format),
		"exports_file", cfg.Audit.ExportsFile,
		"issues_file", cfg.Audit.IssuesFile,
		"compile_commands_file", cfg.Audit.CompileCommandsFile)
	section("ui",
		"color_scheme", cfg.UI.ColorScheme.String(),
		"verbose", fmt.Sprint(cfg.UI.Verbose),
		"interactive", fmt.Sprint(cfg.UI.Interactive))
}
