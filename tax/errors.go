/*
errors.go - Centralized error types for the tax engine

PURPOSE:
  All error types for bracket resolution and synchronization in one place.
  Callers distinguish cases with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Resolution errors - no version/config covers the target date.
     These mean "insufficient data to estimate" and are never fatal:
     calculators simply omit the estimate.
  2. Extraction errors - a sync source could not produce a usable table.
     Absorbed by the fallback chain; only total exhaustion surfaces.
  3. Apply errors - refusal to persist incomplete sync data.

SEE ALSO:
  - store.go: resolution contract returning ErrNoBracketVersion
  - taxsync package: produces ExtractionError and ApplyRefusedError
*/
package tax

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoBracketVersion is returned when no bracket version has an
	// effective date at or before the target date. Callers treat this as
	// "no estimate available", not as a failure.
	ErrNoBracketVersion = errors.New("no bracket version covers the target date")

	// ErrNoDependentDeduction is returned when no dependent-deduction
	// config covers the target date.
	ErrNoDependentDeduction = errors.New("no dependent deduction config covers the target date")

	// ErrExtractionInsufficient is returned when a source yields fewer
	// than the minimum number of bracket rows. A too-small table is
	// evidence of a format mismatch, never a valid small table.
	ErrExtractionInsufficient = errors.New("extracted too few bracket rows")

	// ErrApplyRefused is returned when apply mode is requested but at
	// least one tax kind failed extraction. Nothing is written.
	ErrApplyRefused = errors.New("apply refused: incomplete extraction")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidBracketSetError reports a violation of the ordered-rows invariant.
type InvalidBracketSetError struct {
	Kind   Kind
	Reason string
}

func (e *InvalidBracketSetError) Error() string {
	return fmt.Sprintf("invalid bracket set for %s: %s", e.Kind, e.Reason)
}

// ExtractionError reports why one source attempt failed. The fallback
// chain collects these as text; they never escape a dry run.
type ExtractionError struct {
	Source string // source name, e.g. "structured", "narrative"
	Rows   int    // rows extracted, when the guard-rail tripped
	Reason string
	Err    error // underlying fetch/parse error, if any
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrExtractionInsufficient
}

// ApplyRefusedError carries the accumulated per-kind error text when an
// apply-mode sync is refused. No database write happens in this case.
type ApplyRefusedError struct {
	Errors map[Kind]string
}

func (e *ApplyRefusedError) Error() string {
	msg := "apply refused, extraction incomplete:"
	for _, k := range Kinds {
		if txt, ok := e.Errors[k]; ok {
			msg += fmt.Sprintf(" [%s] %s", k, txt)
		}
	}
	return msg
}

func (e *ApplyRefusedError) Unwrap() error { return ErrApplyRefused }

// IsNotFound reports whether err means "no table data for that date".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoBracketVersion) || errors.Is(err, ErrNoDependentDeduction)
}
