package compliance

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tax"
)

// healthyRecords returns a snapshot that passes every check: complete
// tables, one employee, no suspicious records.
func healthyRecords() *Records {
	return &Records{
		Year: 2026,
		Pension: &tax.BracketVersion{
			Kind:          tax.KindPension,
			EffectiveFrom: tax.Date(2026, time.January, 1),
			Rows: []tax.BracketRow{
				{UpperBound: tax.Money("1621.00"), Rate: tax.Rate("0.075")},
				{UpperBound: tax.Money("2902.84"), Rate: tax.Rate("0.09")},
				{Rate: tax.Rate("0.14")},
			},
		},
		Withholding: &tax.BracketVersion{
			Kind:          tax.KindWithholding,
			EffectiveFrom: tax.Date(2026, time.January, 1),
			Rows: []tax.BracketRow{
				{UpperBound: tax.Money("2428.80"), Rate: tax.Rate("0")},
				{UpperBound: tax.Money("2826.65"), Rate: tax.Rate("0.075"), DeductionParcel: *tax.Money("182.16")},
				{Rate: tax.Rate("0.275"), DeductionParcel: *tax.Money("908.73")},
			},
		},
		DependentConfig: &tax.DependentDeduction{
			EffectiveFrom: tax.Date(2026, time.January, 1),
			PerDependent:  tax.Rate("189.59"),
		},
		Employees: map[string]payroll.Employee{
			"e1": {ID: "e1", Name: "Ana Souza", Active: true},
		},
	}
}

func datePtr(t time.Time) *time.Time { return &t }

func moneyPtr(s string) *decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return &d
}

func hasIssueContaining(report *Report, substr string) bool {
	for _, issue := range report.Issues {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}

func TestRunChecksHealthySnapshot(t *testing.T) {
	report := runChecks(healthyRecords())

	assert.True(t, report.OK)
	assert.Empty(t, report.Issues)
}

func TestCheckTablesMissingAndShort(t *testing.T) {
	r := healthyRecords()
	r.Pension = nil
	r.Withholding.Rows = r.Withholding.Rows[:2]
	r.DependentConfig = nil

	report := runChecks(r)
	assert.False(t, report.OK)
	assert.True(t, hasIssueContaining(report, "no pension bracket table"))
	assert.True(t, hasIssueContaining(report, "only 2 rows"))
	assert.True(t, hasIssueContaining(report, "no dependent-deduction value"))
	assert.True(t, tablesIncomplete(r))
}

func TestCheckThirteenthWindows(t *testing.T) {
	r := healthyRecords()
	r.Thirteenths = []payroll.ThirteenthRecord{
		{
			EmployeeID:   "e1",
			Year:         2026,
			PaymentType:  payroll.ThirteenthFirstInstallment,
			PaymentMonth: 10, // outside the November window
			PayDate:      datePtr(tax.Date(2026, time.October, 15)),
		},
		{
			EmployeeID:   "e1",
			Year:         2026,
			PaymentType:  payroll.ThirteenthSecondInstallment,
			PaymentMonth: 12,
			PayDate:      datePtr(tax.Date(2026, time.December, 22)), // past Dec 20
		},
		{
			EmployeeID:   "e1",
			Year:         2026,
			PaymentType:  payroll.ThirteenthFull,
			PaymentMonth: 12,
			PayDate:      nil, // worth an info, never an issue
		},
	}

	report := runChecks(r)
	assert.True(t, hasIssueContaining(report, "first installment for Ana Souza registered in month 10"))
	assert.True(t, hasIssueContaining(report, "after the December 20 deadline"))
	assert.Len(t, report.Issues, 2)
	require.Len(t, report.Infos, 1)
	assert.Contains(t, report.Infos[0], "no pay date registered")
}

func TestCheckVacationPayDeadline(t *testing.T) {
	r := healthyRecords()
	start := tax.Date(2026, time.July, 10)
	r.Vacations = []payroll.VacationRecord{
		{EmployeeID: "e1", StartDate: start, PayDate: datePtr(tax.Date(2026, time.July, 9))}, // late
		{EmployeeID: "e1", StartDate: start, PayDate: datePtr(tax.Date(2026, time.July, 8))}, // on time
		{EmployeeID: "e1", StartDate: start, PayDate: nil},                                   // info only
	}

	report := runChecks(r)
	assert.Len(t, report.Issues, 1)
	assert.True(t, hasIssueContaining(report, "payment is due at least 2 days before the start"))
	assert.Len(t, report.Infos, 1)
}

func TestCheckTerminationConsistency(t *testing.T) {
	r := healthyRecords()
	r.Employees["e2"] = payroll.Employee{ID: "e2", Name: "Bruno Lima", Active: false}
	r.Terminations = []payroll.TerminationRecord{
		{
			// Still marked active after termination.
			EmployeeID: "e1",
			Date:       tax.Date(2026, time.March, 10),
			Type:       payroll.TerminationWithoutCause,
			Notice:     payroll.NoticeNone, // without cause needs an arrangement
		},
		{
			// Fine rate deviates from the statutory 40%.
			EmployeeID:  "e2",
			Date:        tax.Date(2026, time.April, 1),
			Type:        payroll.TerminationWithoutCause,
			Notice:      payroll.NoticePaid,
			FgtsBalance: moneyPtr("10000.00"),
			FineRate:    moneyPtr("0.30"),
			FineAmount:  moneyPtr("3000.00"),
		},
	}

	report := runChecks(r)
	assert.True(t, hasIssueContaining(report, "still marked active"))
	assert.True(t, hasIssueContaining(report, "no prior-notice arrangement"))
	assert.True(t, hasIssueContaining(report, "fine rate for Bruno Lima is 0.3"))
	assert.True(t, hasIssueContaining(report, "expected about 4000.00"))
}

func TestCheckTerminationMissingFineRate(t *testing.T) {
	r := healthyRecords()
	r.Employees["e2"] = payroll.Employee{ID: "e2", Name: "Bruno Lima", Active: false}
	r.Terminations = []payroll.TerminationRecord{
		{
			EmployeeID:  "e2",
			Date:        tax.Date(2026, time.April, 1),
			Type:        payroll.TerminationAgreement,
			Notice:      payroll.NoticePaid,
			FgtsBalance: moneyPtr("5000.00"),
		},
	}

	report := runChecks(r)
	assert.True(t, hasIssueContaining(report, "fund balance but no fine rate"))
}

func TestCheckLeaves(t *testing.T) {
	r := healthyRecords()
	r.Leaves = []payroll.LeaveRecord{
		{
			// Ends before it starts.
			EmployeeID: "e1",
			Kind:       payroll.LeaveOther,
			StartDate:  tax.Date(2026, time.May, 10),
			EndDate:    tax.Date(2026, time.May, 5),
			PaidBy:     payroll.PaidByEmployer,
		},
		{
			// 20-day medical leave fully employer-paid.
			EmployeeID: "e1",
			Kind:       payroll.LeaveMedical,
			StartDate:  tax.Date(2026, time.June, 1),
			EndDate:    tax.Date(2026, time.June, 20),
			PaidBy:     payroll.PaidByEmployer,
		},
		{
			// Government-funded maternity leave is only an observation.
			EmployeeID: "e1",
			Kind:       payroll.LeaveMaternity,
			StartDate:  tax.Date(2026, time.July, 1),
			EndDate:    tax.Date(2026, time.October, 28),
			PaidBy:     payroll.PaidByGovernment,
		},
	}

	report := runChecks(r)
	assert.Len(t, report.Issues, 2)
	assert.True(t, hasIssueContaining(report, "ends 2026-05-05 before it starts"))
	assert.True(t, hasIssueContaining(report, "days beyond 15 are government-funded"))
	require.Len(t, report.Infos, 1)
	assert.Contains(t, report.Infos[0], "maternity leave")
}

func TestEmployeeNameFallsBackToID(t *testing.T) {
	r := healthyRecords()
	assert.Equal(t, "Ana Souza", r.EmployeeName("e1"))
	assert.Equal(t, "ghost-id", r.EmployeeName("ghost-id"))
}
