// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

func TestExpandPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "bazel-bin", "lib", "a_cc_meta_exports.json")
	b := filepath.Join(dir, "bazel-bin", "app", "deep", "b_cc_meta_exports.json")
	other := filepath.Join(dir, "bazel-bin", "app", "b_cc_meta_imports.json")
	for _, p := range []string{a, b, other} {
		writeFile(t, p, "[]")
	}

	got, err := ExpandPaths([]string{
		filepath.Join(dir, "bazel-bin", "**", "*_cc_meta_exports.json"),
		a,
	})
	if err != nil {
		t.Fatalf("ExpandPaths() error: %v", err)
	}
	want := []string{b, a}
	if !slices.Equal(got, want) {
		t.Errorf("ExpandPaths() = %v, want %v", got, want)
	}

	if _, err := ExpandPaths([]string{filepath.Join(dir, "**", "*.nothing")}); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
	if _, err := ExpandPaths([]string{filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("expected an error for a missing literal path")
	}
}
