// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ccmeta/ccmeta/internal/audit"
)

func TestDecodeExports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantField string
		wantErr   bool
	}{
		{
			name:    "array",
			input:   `[{"target": "//a", "exports": ["a.h"], "alwaysused": false}, {"target": "//b", "exports": [], "alwaysused": true}]`,
			wantLen: 2,
		},
		{
			name:    "single object",
			input:   `{"target": "//a", "exports": ["a.h", "b.h"], "alwaysused": false}`,
			wantLen: 1,
		},
		{
			name:      "missing target",
			input:     `[{"exports": [], "alwaysused": false}]`,
			wantErr:   true,
			wantField: "target",
		},
		{
			name:      "empty target",
			input:     `{"target": " ", "exports": [], "alwaysused": false}`,
			wantErr:   true,
			wantField: "target",
		},
		{
			name:      "missing exports",
			input:     `{"target": "//a", "alwaysused": false}`,
			wantErr:   true,
			wantField: "exports",
		},
		{
			name:      "missing alwaysused",
			input:     `{"target": "//a", "exports": []}`,
			wantErr:   true,
			wantField: "alwaysused",
		},
		{
			name:      "empty export symbol",
			input:     `{"target": "//a", "exports": ["a.h", ""], "alwaysused": false}`,
			wantErr:   true,
			wantField: "exports",
		},
		{
			name:    "wrong field type",
			input:   `{"target": 3, "exports": [], "alwaysused": false}`,
			wantErr: true,
		},
		{
			name:    "scalar document",
			input:   `"nope"`,
			wantErr: true,
		},
		{
			name:    "empty document",
			input:   "  \n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeExports(strings.NewReader(tt.input), "exports.json")
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedRecord) {
					t.Fatalf("expected ErrMalformedRecord, got %v", err)
				}
				if tt.wantField != "" {
					var recErr *RecordError
					if !errors.As(err, &recErr) {
						t.Fatalf("expected *RecordError, got %T", err)
					}
					if recErr.Field != tt.wantField {
						t.Errorf("Field = %q, want %q", recErr.Field, tt.wantField)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("got %d records, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestDecodeImports(t *testing.T) {
	t.Parallel()

	input := `[
		{"target": "//app", "imports": ["a.h"]},
		{"target": "//app", "imports": [], "ambiguous_imports": ["stdio.h"], "deps": ["//lib"]},
		{"target": "//app", "imports": ["b.h"], "deps": [], "source_file": "app/main.cc"}
	]`
	got, err := DecodeImports(strings.NewReader(input), "imports.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d observations, want 3", len(got))
	}
	if got[0].AmbiguousImports != nil || got[0].Deps != nil {
		t.Errorf("absent optional fields should stay nil, got %+v", got[0])
	}
	if !slices.Equal(got[1].AmbiguousImports, []audit.Symbol{"stdio.h"}) {
		t.Errorf("AmbiguousImports = %v", got[1].AmbiguousImports)
	}
	if !slices.Equal(got[1].Deps, []audit.Target{"//lib"}) {
		t.Errorf("Deps = %v", got[1].Deps)
	}
	if got[2].Deps == nil || len(got[2].Deps) != 0 {
		t.Errorf("explicit empty deps should be non-nil and empty, got %#v", got[2].Deps)
	}
}

func TestDecodeImports_MissingImports(t *testing.T) {
	t.Parallel()

	_, err := DecodeImports(strings.NewReader(`{"target": "//app"}`), "imports.json")
	var recErr *RecordError
	if !errors.As(err, &recErr) || recErr.Field != "imports" {
		t.Fatalf("expected imports RecordError, got %v", err)
	}
	if want := `imports.json: record 0: field "imports" is required`; recErr.Error() != want {
		t.Errorf("Error() = %q, want %q", recErr.Error(), want)
	}
}

func TestLoadExportsConcatenatesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "a_cc_meta_exports.json")
	second := filepath.Join(dir, "b_cc_meta_exports.json")
	writeFile(t, first, `{"target": "//a", "exports": ["a.h"], "alwaysused": false}`)
	writeFile(t, second, `[{"target": "//b", "exports": ["b.h"], "alwaysused": true}]`)

	got, err := LoadExports([]string{first, second})
	if err != nil {
		t.Fatalf("LoadExports() error: %v", err)
	}
	if len(got) != 2 || got[0].Target != "//a" || got[1].Target != "//b" {
		t.Errorf("LoadExports() = %+v", got)
	}

	if _, err := LoadExports([]string{filepath.Join(dir, "missing.json")}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist for a missing file, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
