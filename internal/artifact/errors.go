// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord is the sentinel error wrapped by RecordError.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrNoMatch is returned when a path pattern matches no file.
	ErrNoMatch = errors.New("pattern matched no files")
	// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
	ErrInvalidFormat = errors.New("invalid report format")
)

type (
	// RecordError describes one record that does not have the required shape.
	RecordError struct {
		// Source names the document the record came from (usually a file path).
		Source string
		// Index is the record's position in the document (0 for a single object).
		Index int
		// Field is the offending field, empty when the record itself is unusable.
		Field string
		// Reason says what is wrong with the field.
		Reason string
	}

	// InvalidFormatError is returned when a Format value is not recognized.
	InvalidFormatError struct {
		Value Format
	}
)

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: record %d: %s", e.Source, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s: record %d: field %q %s", e.Source, e.Index, e.Field, e.Reason)
}

// Unwrap returns ErrMalformedRecord for errors.Is() compatibility.
func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

// Error implements the error interface for InvalidFormatError.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid report format %q (valid: json, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }
