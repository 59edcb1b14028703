// SPDX-License-Identifier: MPL-2.0

// Package tui holds the interactive prompts used by ccmeta fix.
//
// Prompts are huh forms. When stdin is not a terminal, or ACCESSIBLE is set,
// forms fall back to huh's accessible line-based mode so they keep working
// under pipes and screen readers.
package tui
