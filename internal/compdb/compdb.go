// SPDX-License-Identifier: MPL-2.0

package compdb

import (
	"cmp"
	"path/filepath"
	"slices"
)

// sourceExtensions are the extensions of files compiled on their own rather
// than parsed through an include.
var sourceExtensions = map[string]struct{}{
	".c": {}, ".cc": {}, ".cpp": {}, ".cxx": {}, ".c++": {},
	".C": {}, ".CC": {}, ".cp": {}, ".CPP": {}, ".C++": {}, ".CXX": {},
	".m": {}, ".mm": {}, ".M": {},
	".cu": {}, ".cui": {}, ".cl": {}, ".clcpp": {},
	".s": {}, ".asm": {}, ".S": {},
}

type (
	// Command is one compilation database entry. Fields are declared in key
	// order so the JSON encoding is byte-stable.
	Command struct {
		Arguments []string `json:"arguments"`
		Directory string   `json:"directory"`
		File      string   `json:"file"`
	}

	// SourceImports lists every file pulled in while compiling SourceFile.
	SourceImports struct {
		SourceFile string
		Imports    []string
	}

	// Database maps each file to the command that best describes how it is
	// compiled. The zero value is not usable; call New.
	Database struct {
		directory string
		byFile    map[string]entry
	}

	entry struct {
		arguments []string
		// compileFile is the file the command actually compiles, which differs
		// from the keyed file for attributed headers.
		compileFile string
	}
)

// New creates an empty Database whose commands run in directory.
func New(directory string) *Database {
	return &Database{directory: directory, byFile: make(map[string]entry)}
}

// IsSource reports whether path has a source file extension. The match is
// case-sensitive: ".C" is C++ while ".h" is never a source.
func IsSource(path string) bool {
	_, ok := sourceExtensions[filepath.Ext(path)]
	return ok
}

// Add records the command that compiles file, replacing any earlier one.
func (db *Database) Add(file string, arguments []string) {
	db.byFile[file] = entry{arguments: arguments, compileFile: file}
}

// Attribute gives every import of src the command compiling src.SourceFile,
// unless the import already holds a preferred command. It returns false when
// no command compiles src.SourceFile.
func (db *Database) Attribute(src SourceImports) bool {
	cmd, ok := db.byFile[src.SourceFile]
	if !ok {
		return false
	}
	for _, imp := range src.Imports {
		prior, exists := db.byFile[imp]
		if !exists || preferred(prior, cmd) {
			db.byFile[imp] = cmd
		}
	}
	return true
}

// Len returns the number of files with a command.
func (db *Database) Len() int { return len(db.byFile) }

// Commands returns the database sorted by file.
func (db *Database) Commands() []Command {
	out := make([]Command, 0, len(db.byFile))
	for file, e := range db.byFile {
		out = append(out, Command{Arguments: e.arguments, Directory: db.directory, File: file})
	}
	slices.SortFunc(out, func(a, b Command) int { return cmp.Compare(a.File, b.File) })
	return out
}

// preferred reports whether next should replace prior. A command compiling a
// source file beats one that only parses a header; otherwise the longer
// argument list wins.
func preferred(prior, next entry) bool {
	priorSrc, nextSrc := IsSource(prior.compileFile), IsSource(next.compileFile)
	if nextSrc != priorSrc {
		return nextSrc
	}
	return len(next.arguments) > len(prior.arguments)
}
