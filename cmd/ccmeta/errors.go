// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/ccmeta/ccmeta/internal/artifact"
	"github.com/ccmeta/ccmeta/internal/issue"
	"github.com/ccmeta/ccmeta/internal/observe"
)

// inputError turns a failure to read an input document into an actionable
// error. Shape violations exit with ExitMalformedInput; unmatched globs
// point at the missing-artifacts page.
func inputError(operation string, err error) error {
	switch {
	case errors.Is(err, artifact.ErrMalformedRecord), errors.Is(err, observe.ErrMissingField):
		ectx := issue.NewErrorContext().
			WithOperation(operation).
			WithIssue(issue.MalformedArtifactId).
			WithSuggestion("Regenerate the file with 'ccmeta refresh' or the tool that produced it")
		var recErr *artifact.RecordError
		if errors.As(err, &recErr) {
			ectx.WithResource(recErr.Source)
		}
		return &ExitError{Code: ExitMalformedInput, Err: ectx.Wrap(err).Build()}

	case errors.Is(err, artifact.ErrNoMatch):
		return issue.NewErrorContext().
			WithOperation(operation).
			WithIssue(issue.NoArtifactsId).
			WithSuggestion("Check the glob, or run 'ccmeta refresh' to build the metadata first").
			Wrap(err).
			BuildError()

	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

// toolError wraps a failure to start an external tool. A missing binary is
// reported with the catalog page for that tool.
func toolError(operation, binary string, id issue.Id, err error) error {
	ectx := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(binary).
		Wrap(err)
	if errors.Is(err, exec.ErrNotFound) {
		ectx.WithIssue(id).
			WithSuggestion(fmt.Sprintf("Install %s or set its path in the ccmeta configuration", binary))
	}
	return ectx.BuildError()
}
