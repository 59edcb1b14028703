// SPDX-License-Identifier: MPL-2.0

// Package fixer turns audit outcomes into build file edits: unused
// dependencies are removed and missing ones added, with ambiguous choices
// delegated to a Chooser. Edits are applied with buildozer.
package fixer
