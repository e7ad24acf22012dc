package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// OVERTIME - fixed weekly->monthly multiplier
// =============================================================================

var (
	weeksPerMonth = decimal.NewFromInt(5)
	oneHundred    = decimal.NewFromInt(100)
)

// OvertimeAmounts is the computed overtime breakdown for one line.
type OvertimeAmounts struct {
	MonthlyHours   decimal.Decimal
	HourlyRate     decimal.Decimal
	OvertimeAmount decimal.Decimal
	GrossTotal     decimal.Decimal
}

// ComputeOvertime computes the overtime pay for a fixed monthly salary.
// Monthly hours use the fixed weekly*5 convention, not a calendar count.
// additionalPct is the statutory surcharge in percent (e.g. 50 for +50%).
// A non-positive base or workload yields a zero hourly rate.
func ComputeOvertime(baseSalary, weeklyHours, hours, additionalPct decimal.Decimal) OvertimeAmounts {
	monthlyHours := weeklyHours.Mul(weeksPerMonth)

	hourly := decimal.Zero
	if baseSalary.IsPositive() && monthlyHours.IsPositive() {
		surcharge := decimal.NewFromInt(1).Add(additionalPct.Div(oneHundred))
		hourly = tax.RoundMoney(baseSalary.Div(monthlyHours).Mul(surcharge))
	}

	amount := tax.RoundMoney(hours.Mul(hourly))
	return OvertimeAmounts{
		MonthlyHours:   monthlyHours,
		HourlyRate:     hourly,
		OvertimeAmount: amount,
		GrossTotal:     tax.RoundMoney(baseSalary.Add(amount)),
	}
}
