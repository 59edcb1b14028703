// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ccmeta/ccmeta/internal/audit"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// FormatJSON writes a JSON array with sorted keys and 2-space indentation.
	FormatJSON Format = "json"
	// FormatYAML writes a YAML sequence.
	FormatYAML Format = "yaml"
	// FormatTOML writes one [[target]] table per outcome.
	FormatTOML Format = "toml"
)

type (
	// Format selects the report encoding.
	Format string

	// reportRecord is the wire shape of one outcome. Fields are declared in
	// key order so every encoding is byte-stable.
	reportRecord struct {
		Ambiguous []string          `json:"ambiguous" yaml:"ambiguous" toml:"ambiguous"`
		Matches   map[string]string `json:"matches" yaml:"matches" toml:"matches"`
		NotFound  []string          `json:"not_found" yaml:"not_found" toml:"not_found"`
		Target    string            `json:"target" yaml:"target" toml:"target"`
		Unused    []string          `json:"unused" yaml:"unused" toml:"unused"`
	}

	// tomlReport wraps the records because a TOML document must be a table.
	tomlReport struct {
		Target []reportRecord `toml:"target"`
	}
)

// String returns the string representation of the Format.
func (f Format) String() string { return string(f) }

// IsValid returns whether the Format is one of the supported encodings.
func (f Format) IsValid() (bool, []error) {
	switch f {
	case FormatJSON, FormatYAML, FormatTOML:
		return true, nil
	default:
		return false, []error{&InvalidFormatError{Value: f}}
	}
}

// WriteReport encodes outcomes to w in the requested format. Outcomes are
// written in the order given; audit.Run already sorts them by target.
func WriteReport(w io.Writer, outcomes []audit.Outcome, format Format) error {
	if ok, errs := format.IsValid(); !ok {
		return errs[0]
	}

	records := make([]reportRecord, len(outcomes))
	for i, o := range outcomes {
		records[i] = toRecord(o)
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		if err := enc.Encode(tomlReport{Target: records}); err != nil {
			return fmt.Errorf("encode toml report: %w", err)
		}
		return nil
	default:
		return writeJSON(w, records)
	}
}

func toRecord(o audit.Outcome) reportRecord {
	rec := reportRecord{
		Target:    string(o.Target),
		Matches:   make(map[string]string, len(o.Matches)),
		NotFound:  make([]string, len(o.NotFound)),
		Unused:    make([]string, len(o.Unused)),
		Ambiguous: make([]string, len(o.Ambiguous)),
	}
	for sym, owner := range o.Matches {
		rec.Matches[string(sym)] = string(owner)
	}
	for i, s := range o.NotFound {
		rec.NotFound[i] = string(s)
	}
	for i, t := range o.Unused {
		rec.Unused[i] = string(t)
	}
	for i, s := range o.Ambiguous {
		rec.Ambiguous[i] = string(s)
	}
	return rec
}

func fromRecord(rec reportRecord) audit.Outcome {
	o := audit.Outcome{
		Target:    audit.Target(rec.Target),
		Matches:   make(map[audit.Symbol]audit.Target, len(rec.Matches)),
		NotFound:  make([]audit.Symbol, len(rec.NotFound)),
		Unused:    make([]audit.Target, len(rec.Unused)),
		Ambiguous: make([]audit.Symbol, len(rec.Ambiguous)),
	}
	for sym, owner := range rec.Matches {
		o.Matches[audit.Symbol(sym)] = audit.Target(owner)
	}
	for i, s := range rec.NotFound {
		o.NotFound[i] = audit.Symbol(s)
	}
	for i, t := range rec.Unused {
		o.Unused[i] = audit.Target(t)
	}
	for i, s := range rec.Ambiguous {
		o.Ambiguous[i] = audit.Symbol(s)
	}
	return o
}

// writeJSON encodes v with 2-space indentation. encoding/json sorts map keys,
// and struct fields are declared in key order, so output is byte-stable.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
