// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/ccmeta/ccmeta/internal/audit"
)

type exportEntry struct {
	AlwaysUsed bool     `json:"alwaysused"`
	Exports    []string `json:"exports"`
	Target     string   `json:"target"`
}

// WriteExportsMap writes the workspace export map: one export record per
// target, keyed by target name. Records should already be fused.
func WriteExportsMap(w io.Writer, records []audit.ExportRecord) error {
	m := make(map[string]exportEntry, len(records))
	for _, rec := range records {
		exports := make([]string, len(rec.Exports))
		for i, s := range rec.Exports {
			exports[i] = string(s)
		}
		m[string(rec.Target)] = exportEntry{
			AlwaysUsed: rec.AlwaysUsed,
			Exports:    exports,
			Target:     string(rec.Target),
		}
	}
	return writeJSON(w, m)
}

// ReadExportsMap reads a workspace export map back into records sorted by
// target. Every entry goes through the same shape checks as DecodeExports.
func ReadExportsMap(r io.Reader, source string) ([]audit.ExportRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", source, ErrMalformedRecord, err)
	}

	var records []audit.ExportRecord
	for i, key := range slices.Sorted(maps.Keys(raw)) {
		var doc exportDoc
		if err := json.Unmarshal(raw[key], &doc); err != nil {
			return nil, &RecordError{Source: source, Index: i, Reason: err.Error()}
		}
		if doc.Target == nil {
			name := key
			doc.Target = &name
		}
		if doc.AlwaysUsed == nil {
			doc.AlwaysUsed = new(bool)
		}
		if doc.Exports == nil {
			doc.Exports = &[]string{}
		}
		target, err := requireTarget(doc.Target, source, i)
		if err != nil {
			return nil, err
		}
		exports, err := toSymbols(*doc.Exports, "exports", source, i)
		if err != nil {
			return nil, err
		}
		records = append(records, audit.ExportRecord{Target: target, Exports: exports, AlwaysUsed: *doc.AlwaysUsed})
	}
	return records, nil
}

// WriteIssuesMap writes the workspace issue map: the outcomes that call for a
// build-file edit, keyed by target name.
func WriteIssuesMap(w io.Writer, outcomes []audit.Outcome) error {
	m := make(map[string]reportRecord)
	for _, o := range outcomes {
		if !o.HasIssues() {
			continue
		}
		m[string(o.Target)] = toRecord(o)
	}
	return writeJSON(w, m)
}

// ReadIssuesMap reads a workspace issue map back into outcomes sorted by
// target. A record without a target field takes its key as target.
func ReadIssuesMap(r io.Reader, source string) ([]audit.Outcome, error) {
	var raw map[string]reportRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", source, ErrMalformedRecord, err)
	}

	outcomes := make([]audit.Outcome, 0, len(raw))
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		rec := raw[key]
		if rec.Target == "" {
			rec.Target = key
		}
		outcomes = append(outcomes, fromRecord(rec))
	}
	return outcomes, nil
}
