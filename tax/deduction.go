package tax

import "github.com/shopspring/decimal"

// =============================================================================
// BRACKET-DEDUCTION TAX - single bracket lookup (withholding-style)
// =============================================================================

// ComputeBracketDeduction computes the income-withholding tax: the adjusted
// base (after the per-dependent deduction) selects exactly ONE bracket, whose
// rate applies to the whole adjusted base, minus that bracket's deduction
// parcel. This is not marginal slicing - a fundamentally different algorithm
// from ComputeProgressive.
//
// Selection picks the first row, in ascending order, whose upper bound is
// open or at least the adjusted base. Negative results clamp to zero. The
// value is rounded to two decimals (banker's rounding). No matching row, or
// a non-positive adjusted base, returns zero.
func ComputeBracketDeduction(base, deductionPerDependent decimal.Decimal, dependents int, rows []BracketRow) decimal.Decimal {
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	adjusted := base.Sub(deductionPerDependent.Mul(decimal.NewFromInt(int64(dependents))))
	if adjusted.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var chosen *BracketRow
	for i := range rows {
		if rows[i].UpperBound == nil || adjusted.LessThanOrEqual(*rows[i].UpperBound) {
			chosen = &rows[i]
			break
		}
	}
	if chosen == nil {
		return decimal.Zero
	}

	value := adjusted.Mul(chosen.Rate).Sub(chosen.DeductionParcel)
	if value.IsNegative() {
		return decimal.Zero
	}
	return RoundMoney(value)
}
