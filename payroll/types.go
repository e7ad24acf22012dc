/*
Package payroll implements the derived compensation calculators and the
immutable records they produce.

PURPOSE:
  Vacation pay, thirteenth-salary installments, termination settlements and
  overtime are all derived from an employee's effective-dated base salary
  plus the statutory tables in the tax package. Calculators here are pure
  functions; the records snapshot every computed amount at creation time
  and are never updated afterwards (audit trail).

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee and effective-dated SalaryChange (intake-owned data)
  - Record types: VacationRecord, ThirteenthRecord, TerminationRecord,
    LeaveRecord - one per derived event, immutable once written
  - Enums for payment/termination/notice/leave classification

ROUNDING:
  Money amounts are rounded to two decimals at each named sub-step
  (banker's rounding) - unlike tax.ComputeProgressive, which defers its
  single rounding to the end. The asymmetry is contractual.

SEE ALSO:
  - vacation.go, thirteenth.go, termination.go, overtime.go: formulas
  - estimates.go: discount estimation against the tax tables
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENUMS
// =============================================================================

// ThirteenthPaymentType classifies a thirteenth-salary payment.
type ThirteenthPaymentType string

const (
	ThirteenthFirstInstallment  ThirteenthPaymentType = "first_installment"
	ThirteenthSecondInstallment ThirteenthPaymentType = "second_installment"
	ThirteenthFull              ThirteenthPaymentType = "full"
)

// CarriesDiscounts reports whether this payment type carries tax
// discounts. First installments carry none by rule.
func (t ThirteenthPaymentType) CarriesDiscounts() bool {
	return t == ThirteenthSecondInstallment || t == ThirteenthFull
}

// TerminationType classifies how an employment contract ended.
type TerminationType string

const (
	TerminationWithoutCause TerminationType = "without_cause"
	TerminationWithCause    TerminationType = "with_cause"
	TerminationAgreement    TerminationType = "agreement"
	TerminationResignation  TerminationType = "resignation"
)

// NoticeType classifies the prior-notice arrangement of a termination.
type NoticeType string

const (
	NoticeWorked NoticeType = "worked"
	NoticePaid   NoticeType = "paid"
	NoticeNone   NoticeType = "none"
)

// LeaveKind classifies an employee leave.
type LeaveKind string

const (
	LeaveMedical   LeaveKind = "medical"
	LeaveMaternity LeaveKind = "maternity"
	LeavePaternity LeaveKind = "paternity"
	LeaveOther     LeaveKind = "other"
)

// PaidBy records who funds a leave period.
type PaidBy string

const (
	PaidByEmployer   PaidBy = "employer"
	PaidByGovernment PaidBy = "government"
	PaidByMixed      PaidBy = "mixed"
)

// =============================================================================
// EMPLOYEE - consumed from the intake collaborator
// =============================================================================

// Employee is the view of an employee the calculators need: identity,
// activity flag and dependents count. Base salary arrives separately via
// the effective-dated salary history.
type Employee struct {
	ID         string
	Name       string
	CPF        string
	HiredAt    *time.Time
	Active     bool
	Dependents int
	CreatedAt  time.Time
}

// SalaryChange is one effective-dated base-salary entry. The salary for a
// competence is the latest change at or before the competence start.
type SalaryChange struct {
	EmployeeID    string
	EffectiveFrom time.Time
	BaseSalary    decimal.Decimal
}

// =============================================================================
// DERIVED COMPENSATION RECORDS - immutable once written
// =============================================================================

// VacationRecord snapshots a vacation calculation.
type VacationRecord struct {
	ID               string
	EmployeeID       string
	Year             int
	Month            int
	StartDate        time.Time
	PayDate          *time.Time
	EnjoyedDays      int
	SoldDays         int
	BaseSalaryAtCalc decimal.Decimal
	Amounts          VacationAmounts
	Estimate         *DiscountEstimate
	CreatedAt        time.Time
}

// ThirteenthRecord snapshots a thirteenth-salary installment.
type ThirteenthRecord struct {
	ID               string
	EmployeeID       string
	Year             int
	PaymentType      ThirteenthPaymentType
	PaymentMonth     int
	PayDate          *time.Time
	MonthsWorked     int
	BaseSalaryAtCalc decimal.Decimal
	MonthlyPart      decimal.Decimal
	Gross            decimal.Decimal
	Estimate         *DiscountEstimate
	CreatedAt        time.Time
}

// TerminationRecord snapshots a termination settlement.
type TerminationRecord struct {
	ID               string
	EmployeeID       string
	Date             time.Time
	Type             TerminationType
	Notice           NoticeType
	BaseSalaryAtCalc decimal.Decimal
	FgtsBalance      *decimal.Decimal
	FineRate         *decimal.Decimal
	FineAmount       *decimal.Decimal
	CreatedAt        time.Time
}

// LeaveRecord is an employee leave period.
type LeaveRecord struct {
	ID         string
	EmployeeID string
	Kind       LeaveKind
	StartDate  time.Time
	EndDate    time.Time
	PaidBy     PaidBy
	CreatedAt  time.Time
}

// DurationDays returns the inclusive day count of the leave.
func (l LeaveRecord) DurationDays() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}
