// SPDX-License-Identifier: MPL-2.0

// Package compdb assembles a compilation database (compile_commands.json)
// from the per-target compile commands and include lists the metadata aspect
// emits. Headers have no compile command of their own, so each one borrows
// the command of a source file that includes it.
package compdb
