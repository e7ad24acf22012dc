package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// VACATION - 30-day base, constitutional one-third bonus
// =============================================================================

var (
	thirty = decimal.NewFromInt(30)
	three  = decimal.NewFromInt(3)
	twelve = decimal.NewFromInt(12)
)

// VacationAmounts holds the computed vacation pay breakdown. Every money
// field except DailyRate is rounded to two decimals.
type VacationAmounts struct {
	DailyRate          decimal.Decimal // base / 30, kept at four decimals
	VacationPay        decimal.Decimal
	VacationBonusThird decimal.Decimal
	SoldPay            decimal.Decimal
	SoldBonusThird     decimal.Decimal
	GrossTotal         decimal.Decimal
}

// ComputeVacation computes vacation pay for a fixed monthly salary using a
// 30-day base (no averages). enjoyedDays 1..30 and soldDays 0..10 with
// enjoyed+sold <= 30 are intake-enforced invariants; the calculator does
// not re-validate ranges.
//
// GrossTotal is the exact cent sum of the four rounded components.
func ComputeVacation(baseSalary decimal.Decimal, enjoyedDays, soldDays int) VacationAmounts {
	daily := decimal.Zero
	if baseSalary.IsPositive() {
		daily = baseSalary.Div(thirty)
	}

	vacationPay := tax.RoundMoney(daily.Mul(decimal.NewFromInt(int64(enjoyedDays))))
	vacationThird := tax.RoundMoney(vacationPay.Div(three))
	soldPay := tax.RoundMoney(daily.Mul(decimal.NewFromInt(int64(soldDays))))
	soldThird := tax.RoundMoney(soldPay.Div(three))

	return VacationAmounts{
		DailyRate:          daily.Round(4),
		VacationPay:        vacationPay,
		VacationBonusThird: vacationThird,
		SoldPay:            soldPay,
		SoldBonusThird:     soldThird,
		GrossTotal:         vacationPay.Add(vacationThird).Add(soldPay).Add(soldThird),
	}
}
