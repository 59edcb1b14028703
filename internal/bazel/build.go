// SPDX-License-Identifier: MPL-2.0

package bazel

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	exportsSuffix         = "_cc_meta_exports.json"
	importsSuffix         = "_cc_meta_imports.json"
	compileCommandsSuffix = "_cc_meta_compile_commands.json"
	allImportsSuffix      = "_cc_meta_all_imports.json"
)

type (
	// Artifacts are the metadata files and diagnostics reported by one build.
	Artifacts struct {
		ExportFiles []string
		ImportFiles []string
		// CompileCommandFiles and AllImportFiles feed the compilation database.
		CompileCommandFiles []string
		AllImportFiles      []string
		// Diagnostics holds WARNING and ERROR lines from the build output.
		Diagnostics []string
	}

	// PartialBuildError reports that the build finished with failures. The
	// Artifacts returned alongside it are still usable.
	PartialBuildError struct {
		ExitCode int
	}
)

// Error implements the error interface.
func (e *PartialBuildError) Error() string {
	return fmt.Sprintf("build exited with code %d; results are partial", e.ExitCode)
}

// Build builds targets with the metadata aspect and collects the artifacts it
// reports. A nonzero build exit yields populated Artifacts together with a
// *PartialBuildError; callers should warn and continue.
func (c *Client) Build(ctx context.Context, targets []string) (Artifacts, error) {
	args := append([]string{"build"}, targets...)
	args = append(args, quietFlags...)
	args = append(args,
		"--aspects="+c.aspect,
		"--output_groups="+OutputGroup,
		"--show_result=10000",
		"-k",
		"--skip_incompatible_explicit_targets",
	)
	args = append(args, c.flags...)

	res, err := c.Run(ctx, args...)
	if err != nil {
		return Artifacts{}, err
	}

	art := ClassifyOutput(string(res.Stderr), c.dir)
	c.logger.Debug("build finished",
		"exit_code", res.ExitCode,
		"exports", len(art.ExportFiles),
		"imports", len(art.ImportFiles),
		"compile_commands", len(art.CompileCommandFiles))
	if res.ExitCode != 0 {
		return art, &PartialBuildError{ExitCode: res.ExitCode}
	}
	return art, nil
}

// ClassifyOutput sorts build output lines into the metadata artifact kinds
// and diagnostics. Relative artifact paths are joined to root when
// root is non-empty. Everything else is ignored.
func ClassifyOutput(output, root string) Artifacts {
	var art Artifacts
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case strings.HasPrefix(line, "WARNING") || strings.HasPrefix(line, "ERROR"):
			art.Diagnostics = append(art.Diagnostics, trimmed)
		case strings.HasSuffix(trimmed, exportsSuffix):
			art.ExportFiles = append(art.ExportFiles, artifactPath(trimmed, root))
		case strings.HasSuffix(trimmed, importsSuffix):
			art.ImportFiles = append(art.ImportFiles, artifactPath(trimmed, root))
		case strings.HasSuffix(trimmed, compileCommandsSuffix):
			art.CompileCommandFiles = append(art.CompileCommandFiles, artifactPath(trimmed, root))
		case strings.HasSuffix(trimmed, allImportsSuffix):
			art.AllImportFiles = append(art.AllImportFiles, artifactPath(trimmed, root))
		}
	}
	return art
}

func artifactPath(p, root string) string {
	if root == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
