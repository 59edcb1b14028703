// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ccmeta/ccmeta/internal/compdb"
)

type (
	// compileCommandDoc is the wire shape of one per-file compile command.
	compileCommandDoc struct {
		File      *string   `json:"file"`
		Arguments *[]string `json:"arguments"`
	}

	// sourceImportsDoc is the wire shape of one source file's include list.
	sourceImportsDoc struct {
		SourceFile *string   `json:"source_file"`
		Imports    *[]string `json:"imports"`
	}
)

// DecodeCompileCommands reads a compile command document. Every record needs
// a non-empty file and an arguments array. The returned commands carry no
// directory; the compilation database supplies it.
func DecodeCompileCommands(r io.Reader, source string) ([]compdb.Command, error) {
	raws, err := splitDocument(r, source)
	if err != nil {
		return nil, err
	}

	cmds := make([]compdb.Command, 0, len(raws))
	for i, raw := range raws {
		var doc compileCommandDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &RecordError{Source: source, Index: i, Reason: err.Error()}
		}
		if doc.File == nil || *doc.File == "" {
			return nil, &RecordError{Source: source, Index: i, Field: "file", Reason: "is required"}
		}
		if doc.Arguments == nil {
			return nil, &RecordError{Source: source, Index: i, Field: "arguments", Reason: "is required"}
		}
		cmds = append(cmds, compdb.Command{File: *doc.File, Arguments: *doc.Arguments})
	}
	return cmds, nil
}

// DecodeSourceImports reads an include list document: one record per compiled
// source file with every file it pulled in.
func DecodeSourceImports(r io.Reader, source string) ([]compdb.SourceImports, error) {
	raws, err := splitDocument(r, source)
	if err != nil {
		return nil, err
	}

	out := make([]compdb.SourceImports, 0, len(raws))
	for i, raw := range raws {
		var doc sourceImportsDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &RecordError{Source: source, Index: i, Reason: err.Error()}
		}
		if doc.SourceFile == nil || *doc.SourceFile == "" {
			return nil, &RecordError{Source: source, Index: i, Field: "source_file", Reason: "is required"}
		}
		if doc.Imports == nil {
			return nil, &RecordError{Source: source, Index: i, Field: "imports", Reason: "is required"}
		}
		out = append(out, compdb.SourceImports{SourceFile: *doc.SourceFile, Imports: *doc.Imports})
	}
	return out, nil
}

// LoadCompileCommands decodes and concatenates the compile command documents
// at paths, in order.
func LoadCompileCommands(paths []string) ([]compdb.Command, error) {
	var all []compdb.Command
	for _, path := range paths {
		cmds, err := loadFile(path, DecodeCompileCommands)
		if err != nil {
			return nil, err
		}
		all = append(all, cmds...)
	}
	return all, nil
}

// LoadSourceImports decodes and concatenates the include list documents at
// paths, in order.
func LoadSourceImports(paths []string) ([]compdb.SourceImports, error) {
	var all []compdb.SourceImports
	for _, path := range paths {
		lists, err := loadFile(path, DecodeSourceImports)
		if err != nil {
			return nil, err
		}
		all = append(all, lists...)
	}
	return all, nil
}

// WriteCompileCommands writes cmds as a compile_commands.json array.
func WriteCompileCommands(w io.Writer, cmds []compdb.Command) error {
	if cmds == nil {
		cmds = []compdb.Command{}
	}
	if err := writeJSON(w, cmds); err != nil {
		return fmt.Errorf("write compilation database: %w", err)
	}
	return nil
}
