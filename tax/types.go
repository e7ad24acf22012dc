/*
Package tax provides the effective-dated tax bracket model and the two
statutory resolution algorithms built on top of it.

PURPOSE:
  This package contains the core types and algorithms for statutory payroll
  deductions. Two distinct computations share the bracket model:
  - Progressive contribution: marginal slices up to each bracket boundary
    (pension-style, see progressive.go)
  - Bracket-deduction tax: single bracket lookup with a subtractable parcel
    (income-withholding style, see deduction.go)

KEY CONCEPTS IN THIS FILE (types.go):
  - Kind: which tax a bracket version belongs to
  - BracketRow: one bracket {upper bound | open, rate, deduction parcel}
  - BracketVersion: the full ordered row set effective from a given date
  - DependentDeduction: per-dependent base reduction for withholding

DESIGN PRINCIPLES:
  1. Immutability: versions are replaced as a whole, never patched
  2. Precision: decimal.Decimal for all money and rates, banker's rounding
  3. Effective dating: the active version is the latest one at or before
     the target date; older versions stay untouched for audit

USAGE:
  rows := []tax.BracketRow{
      {UpperBound: tax.Money("1621.00"), Rate: tax.Rate("0.075")},
      {Rate: tax.Rate("0.14")}, // top-open bracket, always last
  }
  v := tax.BracketVersion{Kind: tax.KindPension, EffectiveFrom: tax.Date(2026, 1, 1), Rows: rows}
  contribution := tax.ComputeProgressive(base, v.Rows)

SEE ALSO:
  - progressive.go: marginal-slice algorithm
  - deduction.go: single-bracket algorithm
  - store.go: persistence contract for versions
*/
package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TAX KIND
// =============================================================================

// Kind identifies which statutory tax a bracket version belongs to.
type Kind string

const (
	// KindPension is the progressive social-security contribution
	// (INSS-style): marginal rates over successive salary slices.
	KindPension Kind = "pension"

	// KindWithholding is the income-withholding tax (IRRF-style): one
	// bracket applies to the whole adjusted base, minus a deduction parcel.
	KindWithholding Kind = "withholding"
)

// Kinds lists every tax kind the engine knows about, in sync order.
var Kinds = []Kind{KindPension, KindWithholding}

// =============================================================================
// BRACKET ROWS AND VERSIONS
// =============================================================================

// BracketRow is one bracket of a tax table.
// UpperBound == nil marks the top-open bracket (no ceiling).
// DeductionParcel is only meaningful for KindWithholding and stays zero
// for pension rows.
type BracketRow struct {
	UpperBound      *decimal.Decimal
	Rate            decimal.Decimal
	DeductionParcel decimal.Decimal
}

// BracketVersion is the complete row set for one (kind, effective_from).
// Versions are append-only: a new effective date adds a version, and
// re-syncing the same date atomically replaces the full row set.
type BracketVersion struct {
	Kind          Kind
	EffectiveFrom time.Time
	Rows          []BracketRow
}

// Validate checks the ordered-rows invariant: rows sorted ascending by
// upper bound, exactly one top-open row, and it must be last.
func (v BracketVersion) Validate() error {
	if len(v.Rows) == 0 {
		return &InvalidBracketSetError{Kind: v.Kind, Reason: "empty row set"}
	}
	openCount := 0
	var prev *decimal.Decimal
	for i, row := range v.Rows {
		if row.UpperBound == nil {
			openCount++
			if i != len(v.Rows)-1 {
				return &InvalidBracketSetError{Kind: v.Kind, Reason: "top-open bracket is not last"}
			}
			continue
		}
		if prev != nil && !row.UpperBound.GreaterThan(*prev) {
			return &InvalidBracketSetError{Kind: v.Kind, Reason: "rows not sorted ascending by upper bound"}
		}
		prev = row.UpperBound
	}
	if openCount != 1 {
		return &InvalidBracketSetError{Kind: v.Kind, Reason: "exactly one top-open bracket required"}
	}
	return nil
}

// DependentDeduction is the effective-dated per-dependent base reduction
// used by the withholding calculation. Resolved independently of brackets.
type DependentDeduction struct {
	EffectiveFrom time.Time
	PerDependent  decimal.Decimal
}

// =============================================================================
// MONEY AND DATE HELPERS
// =============================================================================

// RoundMoney rounds to two decimal places using round-half-to-even
// (banker's rounding), the rounding mode of the original statutory tables.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Money parses a decimal literal and returns a pointer, for building
// bracket rows. Invalid input yields a zero value; intended for constants
// and tests, not user input.
func Money(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		d = decimal.Zero
	}
	return &d
}

// Rate parses a fractional rate literal (e.g. "0.075" for 7.5%).
func Rate(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Date builds a UTC calendar date. All effective dates and competences in
// the engine are day-granular UTC times.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CompetenceStart returns the first day of a competence (year, month).
func CompetenceStart(year, month int) time.Time {
	return Date(year, time.Month(month), 1)
}
