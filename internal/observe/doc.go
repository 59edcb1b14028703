// SPDX-License-Identifier: MPL-2.0

// Package observe turns per-translation-unit compiler output into import
// observations for one target.
//
// Two inputs are supported: make-style dependency files written by the
// compiler's -MF option, and direct-import records that already split a
// translation unit's includes into dependency imports and system imports.
package observe
