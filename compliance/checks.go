package compliance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// CHECK LIST
// =============================================================================

// check inspects a snapshot and reports findings. Issues flag likely
// mistakes; infos are observations that never fail the report.
type check func(*Records) (issues, infos []string)

var allChecks = []check{
	checkTables,
	checkThirteenths,
	checkVacations,
	checkTerminations,
	checkLeaves,
}

// minTableRows mirrors the synchronization guard-rail: statutory tables
// always carry at least this many brackets.
const minTableRows = 3

// Deviation tolerances for termination settlements. Rates compare
// exactly to four decimals; amounts allow the rounding wiggle of a
// hand-entered value.
var (
	rateTolerance   = decimal.New(1, -4)  // 0.0001
	amountTolerance = decimal.New(5, -2)  // 0.05
)

func tablesIncomplete(r *Records) bool {
	if r.Pension == nil || len(r.Pension.Rows) < minTableRows {
		return true
	}
	if r.Withholding == nil || len(r.Withholding.Rows) < minTableRows {
		return true
	}
	return r.DependentConfig == nil
}

// =============================================================================
// TABLES
// =============================================================================

func checkTables(r *Records) (issues, infos []string) {
	for kind, version := range map[tax.Kind]*tax.BracketVersion{
		tax.KindPension:     r.Pension,
		tax.KindWithholding: r.Withholding,
	} {
		switch {
		case version == nil:
			issues = append(issues, fmt.Sprintf("no %s bracket table active on %d-01-01", kind, r.Year))
		case len(version.Rows) < minTableRows:
			issues = append(issues, fmt.Sprintf("%s bracket table for %d has only %d rows (minimum %d)",
				kind, r.Year, len(version.Rows), minTableRows))
		default:
			if err := version.Validate(); err != nil {
				issues = append(issues, fmt.Sprintf("%s bracket table for %d is malformed: %v", kind, r.Year, err))
			}
		}
	}

	if r.DependentConfig == nil {
		issues = append(issues, fmt.Sprintf("no dependent-deduction value active on %d-01-01", r.Year))
	}
	return issues, infos
}

// =============================================================================
// THIRTEENTH SALARY - statutory payment windows
// =============================================================================

func checkThirteenths(r *Records) (issues, infos []string) {
	for _, rec := range r.Thirteenths {
		name := r.EmployeeName(rec.EmployeeID)

		switch rec.PaymentType {
		case payroll.ThirteenthFirstInstallment:
			if rec.PaymentMonth != 11 {
				issues = append(issues, fmt.Sprintf(
					"thirteenth first installment for %s registered in month %d; the statutory window is November",
					name, rec.PaymentMonth))
			}
			deadline := tax.Date(rec.Year, time.November, 30)
			if rec.PayDate != nil && rec.PayDate.After(deadline) {
				issues = append(issues, fmt.Sprintf(
					"thirteenth first installment for %s paid on %s, after the November 30 deadline",
					name, rec.PayDate.Format("2006-01-02")))
			}
		case payroll.ThirteenthSecondInstallment:
			if rec.PaymentMonth != 12 {
				issues = append(issues, fmt.Sprintf(
					"thirteenth second installment for %s registered in month %d; the statutory window is December",
					name, rec.PaymentMonth))
			}
			deadline := tax.Date(rec.Year, time.December, 20)
			if rec.PayDate != nil && rec.PayDate.After(deadline) {
				issues = append(issues, fmt.Sprintf(
					"thirteenth second installment for %s paid on %s, after the December 20 deadline",
					name, rec.PayDate.Format("2006-01-02")))
			}
		}

		if rec.PayDate == nil {
			infos = append(infos, fmt.Sprintf("thirteenth %s for %s has no pay date registered", rec.PaymentType, name))
		}
	}
	return issues, infos
}

// =============================================================================
// VACATIONS - pay two days before the rest starts
// =============================================================================

func checkVacations(r *Records) (issues, infos []string) {
	for _, rec := range r.Vacations {
		name := r.EmployeeName(rec.EmployeeID)
		if rec.PayDate == nil {
			infos = append(infos, fmt.Sprintf("vacation of %s starting %s has no pay date registered",
				name, rec.StartDate.Format("2006-01-02")))
			continue
		}

		deadline := rec.StartDate.AddDate(0, 0, -2)
		if rec.PayDate.After(deadline) {
			issues = append(issues, fmt.Sprintf(
				"vacation of %s starting %s paid on %s; payment is due at least 2 days before the start",
				name, rec.StartDate.Format("2006-01-02"), rec.PayDate.Format("2006-01-02")))
		}
	}
	return issues, infos
}

// =============================================================================
// TERMINATIONS - settlement consistency
// =============================================================================

func checkTerminations(r *Records) (issues, infos []string) {
	for _, rec := range r.Terminations {
		name := r.EmployeeName(rec.EmployeeID)

		if e, ok := r.Employees[rec.EmployeeID]; ok && e.Active {
			issues = append(issues, fmt.Sprintf("%s has a termination dated %s but is still marked active",
				name, rec.Date.Format("2006-01-02")))
		}

		if rec.Type == payroll.TerminationWithoutCause && rec.Notice == payroll.NoticeNone {
			issues = append(issues, fmt.Sprintf(
				"termination without cause for %s has no prior-notice arrangement", name))
		}

		expected := payroll.ExpectedFineRate(rec.Type)

		if rec.FineRate != nil && rec.FineRate.Sub(expected).Abs().GreaterThan(rateTolerance) {
			issues = append(issues, fmt.Sprintf(
				"termination fine rate for %s is %s; expected %s for type %s",
				name, rec.FineRate.String(), expected.String(), rec.Type))
		}

		if rec.FgtsBalance == nil || !rec.FgtsBalance.IsPositive() {
			continue
		}
		if rec.FineRate == nil && expected.IsPositive() {
			issues = append(issues, fmt.Sprintf(
				"termination of %s has a fund balance but no fine rate registered", name))
			continue
		}
		if rec.FineAmount != nil {
			want := rec.FgtsBalance.Mul(expected)
			if rec.FineAmount.Sub(want).Abs().GreaterThan(amountTolerance) {
				issues = append(issues, fmt.Sprintf(
					"termination fine for %s is %s; expected about %s (balance %s at rate %s)",
					name, rec.FineAmount.StringFixed(2), tax.RoundMoney(want).StringFixed(2),
					rec.FgtsBalance.StringFixed(2), expected.String()))
			}
		}
	}
	return issues, infos
}

// =============================================================================
// LEAVES - date sanity and funding split
// =============================================================================

// employerPaidMedicalDays is the employer-funded span of a medical
// leave; beyond it the benefit shifts to the government.
const employerPaidMedicalDays = 15

func checkLeaves(r *Records) (issues, infos []string) {
	for _, rec := range r.Leaves {
		name := r.EmployeeName(rec.EmployeeID)

		if rec.EndDate.Before(rec.StartDate) {
			issues = append(issues, fmt.Sprintf("leave of %s ends %s before it starts %s",
				name, rec.EndDate.Format("2006-01-02"), rec.StartDate.Format("2006-01-02")))
			continue
		}

		if rec.Kind == payroll.LeaveMedical && rec.DurationDays() > employerPaidMedicalDays && rec.PaidBy == payroll.PaidByEmployer {
			issues = append(issues, fmt.Sprintf(
				"medical leave of %s spans %d days but is marked fully employer-paid; days beyond %d are government-funded",
				name, rec.DurationDays(), employerPaidMedicalDays))
		}

		if rec.Kind == payroll.LeaveMaternity && rec.PaidBy == payroll.PaidByGovernment {
			infos = append(infos, fmt.Sprintf(
				"maternity leave of %s is government-funded; confirm the company is not on the direct-payment regime", name))
		}
	}
	return issues, infos
}
