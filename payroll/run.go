package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// PAYROLL RUN - one per competence, one line per active employee
// =============================================================================

// Run is a monthly payroll run. At most one run exists per (year, month).
type Run struct {
	ID               string
	Year             int
	Month            int
	OvertimeHourRate decimal.Decimal
	CreatedAt        time.Time
}

// Line is one employee's row in a run. Gross is base plus overtime.
type Line struct {
	ID               string
	RunID            string
	EmployeeID       string
	BaseSalary       decimal.Decimal
	OvertimeHours    decimal.Decimal
	OvertimeHourRate decimal.Decimal
	OvertimeAmount   decimal.Decimal
	GrossTotal       decimal.Decimal
}

// ApplyOvertime recomputes the line's overtime and gross for the given
// hours and hourly rate. Negative hours clamp to zero.
func (l *Line) ApplyOvertime(hours, hourRate decimal.Decimal) {
	if hours.IsNegative() {
		hours = decimal.Zero
	}
	l.OvertimeHours = hours
	l.OvertimeHourRate = hourRate
	l.OvertimeAmount = tax.RoundMoney(hours.Mul(hourRate))
	l.GrossTotal = tax.RoundMoney(l.BaseSalary.Add(l.OvertimeAmount))
}

// CompetenceStart returns the first day of the run's competence.
func (r Run) CompetenceStart() time.Time {
	return tax.CompetenceStart(r.Year, r.Month)
}

// =============================================================================
// MONTH SUMMARY - totals across a run's lines
// =============================================================================

// MonthSummary aggregates a run for the competence-close view. The tax
// totals are nil when the corresponding tables do not resolve for the
// competence date.
type MonthSummary struct {
	Year           int
	Month          int
	EmployeeCount  int
	TotalGross     decimal.Decimal
	TotalPension   *decimal.Decimal
	TotalWithholding *decimal.Decimal
	TotalNet       *decimal.Decimal
	HasTables      bool
}

// Summarize totals a run's lines and estimates the month's tax burden.
// dependents maps employee ID to dependents count for the withholding
// calculation.
func Summarize(ctx context.Context, run Run, lines []Line, estimator *Estimator, dependents map[string]int) (*MonthSummary, error) {
	competence := run.CompetenceStart()

	totalGross := decimal.Zero
	totalPension := decimal.Zero
	totalWithholding := decimal.Zero
	hasTables := true

	for _, ln := range lines {
		totalGross = totalGross.Add(ln.GrossTotal)

		est, err := estimator.Estimate(ctx, ln.GrossTotal, competence, dependents[ln.EmployeeID])
		if err != nil {
			return nil, err
		}
		if est == nil {
			hasTables = false
			continue
		}
		totalPension = totalPension.Add(est.Pension)
		totalWithholding = totalWithholding.Add(est.Withholding)
	}

	s := &MonthSummary{
		Year:          run.Year,
		Month:         run.Month,
		EmployeeCount: len(lines),
		TotalGross:    tax.RoundMoney(totalGross),
		HasTables:     hasTables,
	}
	if hasTables {
		pension := tax.RoundMoney(totalPension)
		withholding := tax.RoundMoney(totalWithholding)
		net := tax.RoundMoney(totalGross.Sub(totalPension).Sub(totalWithholding))
		s.TotalPension = &pension
		s.TotalWithholding = &withholding
		s.TotalNet = &net
	}
	return s, nil
}
