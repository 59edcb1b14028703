// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ccmeta/ccmeta/internal/artifact"
	"github.com/ccmeta/ccmeta/internal/audit"
	"github.com/ccmeta/ccmeta/internal/observe"

	"github.com/spf13/cobra"
)

type (
	combineFlagValues struct {
		target string
		output string
	}

	// sourceParser reads one per-translation-unit input file.
	sourceParser func(r io.Reader, name string) (observe.Source, error)
)

func newCombineCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Combine per-translation-unit include lists into import observations",
		Long: `Combine the per-translation-unit include information of one target into
an import observations document that 'ccmeta check' accepts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newCombineSubcommand(app, rootFlags, "includes <depfile>...",
			"Combine make-style dependency files (-MF output)",
			func(r io.Reader, _ string) (observe.Source, error) { return observe.ParseDepfile(r) }),
		newCombineSubcommand(app, rootFlags, "direct <record.json>...",
			"Combine direct-import records (source_file, dep_imports, sys_imports)",
			observe.DecodeDirectImports),
	)
	return cmd
}

func newCombineSubcommand(app *App, rootFlags *rootFlagValues, use, short string, parse sourceParser) *cobra.Command {
	flags := &combineFlagValues{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			return runCombine(app, s, flags, args, parse)
		},
	}

	cmd.Flags().StringVarP(&flags.target, "target", "t", "", "label of the target the files were compiled for")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the observations to this file instead of stdout")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runCombine(app *App, s *session, flags *combineFlagValues, args []string, parse sourceParser) error {
	target := audit.Target(flags.target)
	if ok, errs := target.IsValid(); !ok {
		return errs[0]
	}

	paths, err := artifact.ExpandPaths(args)
	if err != nil {
		return inputError("find input files", err)
	}

	sources := make([]observe.Source, 0, len(paths))
	for _, path := range paths {
		src, err := parseFile(path, parse)
		if err != nil {
			return inputError("read "+path, err)
		}
		if src.File == "" {
			s.logger.Debug("skipping input without a source file", "path", path)
			continue
		}
		sources = append(sources, src)
	}

	records := observe.Combine(target, sources)
	s.logger.Debug("combined observations", "target", target, "sources", len(records))
	return writeOutput(app.stdout, flags.output, func(w io.Writer) error {
		return observe.WriteRecords(w, records)
	})
}

func parseFile(path string, parse sourceParser) (observe.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return observe.Source{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parse(f, path)
}
