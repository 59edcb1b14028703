// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown help pages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions; catalog pages are rendered with glamour.
package issue
