// SPDX-License-Identifier: MPL-2.0

package observe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ccmeta/ccmeta/internal/audit"
)

// ErrMissingField is returned when a direct-import record lacks a required key.
var ErrMissingField = errors.New("missing field")

type (
	// Source is what one translation unit included.
	Source struct {
		// File is the compiled source file. Empty means the input named no
		// source and the unit is skipped.
		File      string
		Imports   []string
		Ambiguous []string
	}

	// Record is the wire shape of one combined observation. It is accepted
	// by the artifact import decoder; source_file is informational.
	Record struct {
		SourceFile       string   `json:"source_file"`
		Target           string   `json:"target"`
		Imports          []string `json:"imports"`
		AmbiguousImports []string `json:"ambiguous_imports"`
	}

	// directDoc is the wire shape of a direct-import record. Pointers tell a
	// missing key apart from an empty value.
	directDoc struct {
		SourceFile *string   `json:"source_file"`
		DepImports *[]string `json:"dep_imports"`
		SysImports *[]string `json:"sys_imports"`
	}
)

// ParseDepfile reads a make-style dependency file ("out.o: src.cc a.h \").
// Line continuations are joined and the content split on whitespace: the
// first token is the rule target, the second the compiled source, and the
// rest are the included files. Fewer than two tokens yields an empty Source.
func ParseDepfile(r io.Reader) (Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Source{}, fmt.Errorf("read depfile: %w", err)
	}
	joined := strings.ReplaceAll(string(data), "\\\r\n", "")
	joined = strings.ReplaceAll(joined, "\\\n", "")
	fields := strings.Fields(joined)

	switch {
	case len(fields) < 2:
		return Source{}, nil
	case len(fields) < 3:
		return Source{File: fields[1], Imports: []string{}}, nil
	default:
		return Source{File: fields[1], Imports: fields[2:]}, nil
	}
}

// DecodeDirectImports reads a direct-import record. source_file, dep_imports
// and sys_imports are all required; system imports become ambiguous imports
// because the same path may also be provided by a build target.
func DecodeDirectImports(r io.Reader, name string) (Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Source{}, fmt.Errorf("read %s: %w", name, err)
	}
	var doc directDoc
	if err := json.Unmarshal(bytes.TrimSpace(data), &doc); err != nil {
		return Source{}, fmt.Errorf("decode %s: %w", name, err)
	}

	var missing []string
	if doc.SourceFile == nil {
		missing = append(missing, "source_file")
	}
	if doc.DepImports == nil {
		missing = append(missing, "dep_imports")
	}
	if doc.SysImports == nil {
		missing = append(missing, "sys_imports")
	}
	if len(missing) > 0 {
		return Source{}, fmt.Errorf("%s: %w: %s", name, ErrMissingField, strings.Join(missing, ", "))
	}

	return Source{File: *doc.SourceFile, Imports: *doc.DepImports, Ambiguous: *doc.SysImports}, nil
}

// Combine tags each non-empty source with target. Sources without a file are
// dropped.
func Combine(target audit.Target, sources []Source) []Record {
	records := make([]Record, 0, len(sources))
	for _, src := range sources {
		if src.File == "" {
			continue
		}
		rec := Record{
			SourceFile:       src.File,
			Target:           string(target),
			Imports:          src.Imports,
			AmbiguousImports: src.Ambiguous,
		}
		if rec.Imports == nil {
			rec.Imports = []string{}
		}
		if rec.AmbiguousImports == nil {
			rec.AmbiguousImports = []string{}
		}
		records = append(records, rec)
	}
	return records
}

// WriteRecords writes records as an indented JSON array.
func WriteRecords(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode observations: %w", err)
	}
	return nil
}
