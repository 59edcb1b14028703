// SPDX-License-Identifier: MPL-2.0

package audit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTarget is the sentinel error wrapped by InvalidTargetError.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrInvalidSymbol is the sentinel error wrapped by InvalidSymbolError.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

type (
	// Target names one compiled build unit. Its structure is opaque to the
	// engine; only byte-wise ordering is used.
	Target string

	// InvalidTargetError is returned when a Target is empty or whitespace-only.
	InvalidTargetError struct {
		Value Target
	}

	// Symbol names one importable unit (a header or module path). Symbols are
	// ordered byte-wise; every sorted sequence in this package uses that order.
	Symbol string

	// InvalidSymbolError is returned when a Symbol is empty or whitespace-only.
	InvalidSymbolError struct {
		Value Symbol
	}

	// ExportRecord declares the symbols a target makes available to its dependents.
	ExportRecord struct {
		Target  Target
		Exports []Symbol
		// AlwaysUsed marks a dependency whose presence satisfies usage without
		// any symbol being attributed to it (link-time or build-time effects).
		AlwaysUsed bool
	}

	// Observation is the set of symbols seen while compiling one translation
	// unit of Target.
	Observation struct {
		Target           Target
		Imports          []Symbol
		AmbiguousImports []Symbol
		// Deps optionally lists the target's declared dependencies. A nil slice
		// means "not reported"; an empty non-nil slice means "no dependencies".
		Deps []Target
	}

	// Dependency is one declared dependency of the target being resolved.
	Dependency struct {
		Target     Target
		AlwaysUsed bool
	}
)

// String returns the string representation of the Target.
func (t Target) String() string { return string(t) }

// IsValid returns whether the Target is non-empty and not whitespace-only.
func (t Target) IsValid() (bool, []error) {
	if strings.TrimSpace(string(t)) == "" {
		return false, []error{&InvalidTargetError{Value: t}}
	}
	return true, nil
}

// Error implements the error interface for InvalidTargetError.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidTarget for errors.Is() compatibility.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

// String returns the string representation of the Symbol.
func (s Symbol) String() string { return string(s) }

// IsValid returns whether the Symbol is non-empty and not whitespace-only.
func (s Symbol) IsValid() (bool, []error) {
	if strings.TrimSpace(string(s)) == "" {
		return false, []error{&InvalidSymbolError{Value: s}}
	}
	return true, nil
}

// Error implements the error interface for InvalidSymbolError.
func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidSymbol for errors.Is() compatibility.
func (e *InvalidSymbolError) Unwrap() error { return ErrInvalidSymbol }
