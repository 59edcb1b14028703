// SPDX-License-Identifier: MPL-2.0

package bazel

import (
	"fmt"
	"os"

	"mvdan.cc/sh/v3/shell"
)

// SplitFlags splits a shell-quoted flag string into arguments, expanding
// variable references from the process environment.
func SplitFlags(s string) ([]string, error) {
	fields, err := shell.Fields(s, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("parse build flags %q: %w", s, err)
	}
	return fields, nil
}
