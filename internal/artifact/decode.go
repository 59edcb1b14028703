// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ccmeta/ccmeta/internal/audit"
)

type (
	// exportDoc is the wire shape of an export record. Pointer fields tell a
	// missing key apart from its zero value.
	exportDoc struct {
		Target     *string   `json:"target"`
		Exports    *[]string `json:"exports"`
		AlwaysUsed *bool     `json:"alwaysused"`
	}

	// importDoc is the wire shape of an import observation.
	importDoc struct {
		Target           *string   `json:"target"`
		Imports          *[]string `json:"imports"`
		AmbiguousImports []string  `json:"ambiguous_imports"`
		Deps             *[]string `json:"deps"`
	}
)

// DecodeExports reads an export document (array or single object) and
// validates every record. source is used in error messages.
func DecodeExports(r io.Reader, source string) ([]audit.ExportRecord, error) {
	raws, err := splitDocument(r, source)
	if err != nil {
		return nil, err
	}

	records := make([]audit.ExportRecord, 0, len(raws))
	for i, raw := range raws {
		var doc exportDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &RecordError{Source: source, Index: i, Reason: err.Error()}
		}
		target, err := requireTarget(doc.Target, source, i)
		if err != nil {
			return nil, err
		}
		if doc.Exports == nil {
			return nil, &RecordError{Source: source, Index: i, Field: "exports", Reason: "is required"}
		}
		if doc.AlwaysUsed == nil {
			return nil, &RecordError{Source: source, Index: i, Field: "alwaysused", Reason: "is required"}
		}
		exports, err := toSymbols(*doc.Exports, "exports", source, i)
		if err != nil {
			return nil, err
		}
		records = append(records, audit.ExportRecord{
			Target:     target,
			Exports:    exports,
			AlwaysUsed: *doc.AlwaysUsed,
		})
	}
	return records, nil
}

// DecodeImports reads an import document (array or single object) and
// validates every record. A missing ambiguous_imports field is an empty set;
// a missing deps field leaves Observation.Deps nil.
func DecodeImports(r io.Reader, source string) ([]audit.Observation, error) {
	raws, err := splitDocument(r, source)
	if err != nil {
		return nil, err
	}

	observations := make([]audit.Observation, 0, len(raws))
	for i, raw := range raws {
		var doc importDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &RecordError{Source: source, Index: i, Reason: err.Error()}
		}
		target, err := requireTarget(doc.Target, source, i)
		if err != nil {
			return nil, err
		}
		if doc.Imports == nil {
			return nil, &RecordError{Source: source, Index: i, Field: "imports", Reason: "is required"}
		}
		imports, err := toSymbols(*doc.Imports, "imports", source, i)
		if err != nil {
			return nil, err
		}
		ambiguous, err := toSymbols(doc.AmbiguousImports, "ambiguous_imports", source, i)
		if err != nil {
			return nil, err
		}
		obs := audit.Observation{Target: target, Imports: imports, AmbiguousImports: ambiguous}
		if doc.Deps != nil {
			obs.Deps = make([]audit.Target, 0, len(*doc.Deps))
			for j, d := range *doc.Deps {
				dep := audit.Target(d)
				if ok, _ := dep.IsValid(); !ok {
					return nil, &RecordError{Source: source, Index: i, Field: "deps", Reason: fmt.Sprintf("element %d is empty", j)}
				}
				obs.Deps = append(obs.Deps, dep)
			}
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// LoadExports decodes and concatenates the export documents at paths, in order.
func LoadExports(paths []string) ([]audit.ExportRecord, error) {
	var all []audit.ExportRecord
	for _, path := range paths {
		records, err := loadFile(path, DecodeExports)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// LoadImports decodes and concatenates the import documents at paths, in order.
func LoadImports(paths []string) ([]audit.Observation, error) {
	var all []audit.Observation
	for _, path := range paths {
		obs, err := loadFile(path, DecodeImports)
		if err != nil {
			return nil, err
		}
		all = append(all, obs...)
	}
	return all, nil
}

func loadFile[T any](path string, decode func(io.Reader, string) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	return decode(f, path)
}

// splitDocument reads a JSON array or a single JSON object and returns the
// raw records it holds.
func splitDocument(r io.Reader, source string) ([]json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%s: empty document: %w", source, ErrMalformedRecord)
	}

	switch trimmed[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", source, ErrMalformedRecord, err)
		}
		return raws, nil
	case '{':
		return []json.RawMessage{json.RawMessage(trimmed)}, nil
	default:
		return nil, fmt.Errorf("%s: document must be a JSON array or object: %w", source, ErrMalformedRecord)
	}
}

func requireTarget(raw *string, source string, index int) (audit.Target, error) {
	if raw == nil {
		return "", &RecordError{Source: source, Index: index, Field: "target", Reason: "is required"}
	}
	target := audit.Target(*raw)
	if ok, _ := target.IsValid(); !ok {
		return "", &RecordError{Source: source, Index: index, Field: "target", Reason: "must be non-empty"}
	}
	return target, nil
}

func toSymbols(raw []string, field, source string, index int) ([]audit.Symbol, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([]audit.Symbol, 0, len(raw))
	for j, s := range raw {
		sym := audit.Symbol(s)
		if ok, _ := sym.IsValid(); !ok {
			return nil, &RecordError{Source: source, Index: index, Field: field, Reason: fmt.Sprintf("element %d is empty", j)}
		}
		out = append(out, sym)
	}
	return out, nil
}
