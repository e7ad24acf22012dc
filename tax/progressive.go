package tax

import "github.com/shopspring/decimal"

// =============================================================================
// PROGRESSIVE CONTRIBUTION - marginal slices (pension-style)
// =============================================================================

// ComputeProgressive computes the progressive contribution for base over an
// ordered bracket list: each bracket taxes only the slice of the base that
// falls between the previous boundary and its own upper bound.
//
// Rounding contract: partial sums are accumulated at full precision and the
// result is rounded ONCE at the end (banker's rounding, two decimals). This
// deliberately differs from ComputeBracketDeduction, which rounds its own
// final value per step. Do not unify the two.
//
// Rows with a non-positive rate are skipped without advancing the boundary.
// base <= 0 returns exactly zero with no rounding step.
func ComputeProgressive(base decimal.Decimal, rows []BracketRow) decimal.Decimal {
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	prev := decimal.Zero
	total := decimal.Zero
	for _, row := range rows {
		if row.Rate.LessThanOrEqual(decimal.Zero) {
			continue
		}

		ceiling := base
		if row.UpperBound != nil && row.UpperBound.LessThan(base) {
			ceiling = *row.UpperBound
		}
		taxable := ceiling.Sub(prev)
		if taxable.IsPositive() {
			total = total.Add(taxable.Mul(row.Rate))
		}

		if row.UpperBound != nil {
			prev = *row.UpperBound
		}
		if base.LessThanOrEqual(prev) {
			break
		}
	}

	return RoundMoney(total)
}
