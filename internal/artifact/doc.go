// SPDX-License-Identifier: MPL-2.0

// Package artifact converts between the JSON documents exchanged with the
// build-graph analysis step and the audit package's in-memory types.
//
// Input documents are either a JSON array of records or a single record
// object. Every record is shape-checked before any resolution starts: a
// malformed record invalidates the sortedness and ownership invariants of the
// whole run, so decoding fails fast with a *RecordError.
package artifact
