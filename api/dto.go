/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY FORMAT:
  All money fields travel as fixed two-decimal strings ("1497.77") so no
  client-side float parsing can lose cents. Rates are fraction strings
  ("0.075"). Dates are ISO "2006-01-02".

VALIDATION:
  Request types carry validator struct tags; handlers run them through
  the shared validator before touching domain logic. Cross-field rules
  (enjoyed+sold <= 30) live in the handlers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/tables.go: TableDocument, accepted verbatim as a request body
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CPF        string `json:"cpf,omitempty"`
	HiredAt    string `json:"hired_at,omitempty"`
	Active     bool   `json:"active"`
	Dependents int    `json:"dependents"`
	BaseSalary string `json:"base_salary,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	CPF        string `json:"cpf" validate:"omitempty,len=11,numeric"`
	HiredAt    string `json:"hired_at" validate:"omitempty,datetime=2006-01-02"`
	Dependents int    `json:"dependents" validate:"gte=0,lte=20"`
	BaseSalary string `json:"base_salary" validate:"required"`
}

// SalaryChangeRequest registers an effective-dated salary change.
type SalaryChangeRequest struct {
	EffectiveFrom string `json:"effective_from" validate:"required,datetime=2006-01-02"`
	BaseSalary    string `json:"base_salary" validate:"required"`
}

// SalaryChangeDTO is one salary history entry.
type SalaryChangeDTO struct {
	EffectiveFrom string `json:"effective_from"`
	BaseSalary    string `json:"base_salary"`
}

// =============================================================================
// ESTIMATES
// =============================================================================

// EstimateDTO carries the tax discount estimates attached to a gross
// amount. Absent entirely when the tables do not resolve.
type EstimateDTO struct {
	PensionEffective     string `json:"pension_effective"`
	WithholdingEffective string `json:"withholding_effective"`
	Pension              string `json:"pension"`
	Withholding          string `json:"withholding"`
	Net                  string `json:"net"`
}

// =============================================================================
// VACATIONS
// =============================================================================

// CreateVacationRequest registers a vacation calculation.
type CreateVacationRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	Year        int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Month       int    `json:"month" validate:"required,gte=1,lte=12"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	PayDate     string `json:"pay_date" validate:"omitempty,datetime=2006-01-02"`
	EnjoyedDays int    `json:"enjoyed_days" validate:"required,gte=1,lte=30"`
	SoldDays    int    `json:"sold_days" validate:"gte=0,lte=10"`
}

// VacationDTO is a vacation record in API responses.
type VacationDTO struct {
	ID          string       `json:"id"`
	EmployeeID  string       `json:"employee_id"`
	Year        int          `json:"year"`
	Month       int          `json:"month"`
	StartDate   string       `json:"start_date"`
	PayDate     string       `json:"pay_date,omitempty"`
	EnjoyedDays int          `json:"enjoyed_days"`
	SoldDays    int          `json:"sold_days"`
	BaseSalary  string       `json:"base_salary"`
	DailyRate   string       `json:"daily_rate"`
	Pay         string       `json:"vacation_pay"`
	BonusThird  string       `json:"vacation_bonus_third"`
	SoldPay     string       `json:"sold_pay"`
	SoldThird   string       `json:"sold_bonus_third"`
	GrossTotal  string       `json:"gross_total"`
	Estimate    *EstimateDTO `json:"estimate,omitempty"`
}

// =============================================================================
// THIRTEENTH SALARY
// =============================================================================

// CreateThirteenthRequest registers a thirteenth-salary installment.
type CreateThirteenthRequest struct {
	EmployeeID   string `json:"employee_id" validate:"required"`
	Year         int    `json:"year" validate:"required,gte=2000,lte=2100"`
	PaymentType  string `json:"payment_type" validate:"required,oneof=first_installment second_installment full"`
	PaymentMonth int    `json:"payment_month" validate:"required,gte=1,lte=12"`
	PayDate      string `json:"pay_date" validate:"omitempty,datetime=2006-01-02"`
	MonthsWorked int    `json:"months_worked" validate:"required,gte=1,lte=12"`
}

// ThirteenthDTO is a thirteenth record in API responses.
type ThirteenthDTO struct {
	ID           string       `json:"id"`
	EmployeeID   string       `json:"employee_id"`
	Year         int          `json:"year"`
	PaymentType  string       `json:"payment_type"`
	PaymentMonth int          `json:"payment_month"`
	PayDate      string       `json:"pay_date,omitempty"`
	MonthsWorked int          `json:"months_worked"`
	BaseSalary   string       `json:"base_salary"`
	MonthlyPart  string       `json:"monthly_part"`
	Gross        string       `json:"gross"`
	Estimate     *EstimateDTO `json:"estimate,omitempty"`
}

// =============================================================================
// TERMINATIONS
// =============================================================================

// CreateTerminationRequest registers a termination settlement.
type CreateTerminationRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Type        string `json:"type" validate:"required,oneof=without_cause with_cause agreement resignation"`
	Notice      string `json:"notice" validate:"required,oneof=worked paid none"`
	FgtsBalance string `json:"fgts_balance" validate:"omitempty"`
	FineRate    string `json:"fine_rate" validate:"omitempty"`
}

// TerminationDTO is a termination record in API responses.
type TerminationDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Notice      string `json:"notice"`
	BaseSalary  string `json:"base_salary"`
	FgtsBalance string `json:"fgts_balance,omitempty"`
	FineRate    string `json:"fine_rate,omitempty"`
	FineAmount  string `json:"fine_amount,omitempty"`
}

// =============================================================================
// LEAVES
// =============================================================================

// CreateLeaveRequest registers a leave period.
type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Kind       string `json:"kind" validate:"required,oneof=medical maternity paternity other"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
	PaidBy     string `json:"paid_by" validate:"required,oneof=employer government mixed"`
}

// LeaveDTO is a leave record in API responses.
type LeaveDTO struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	Kind         string `json:"kind"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	PaidBy       string `json:"paid_by"`
	DurationDays int    `json:"duration_days"`
}

// =============================================================================
// TAX TABLES AND SYNC
// =============================================================================

// BracketRowDTO is one bracket row in API responses.
type BracketRowDTO struct {
	UpperBound      string `json:"upper_bound,omitempty"`
	Rate            string `json:"rate"`
	DeductionParcel string `json:"deduction_parcel,omitempty"`
}

// BracketVersionDTO is one resolved bracket version.
type BracketVersionDTO struct {
	Kind          string          `json:"kind"`
	EffectiveFrom string          `json:"effective_from"`
	Rows          []BracketRowDTO `json:"rows"`
}

// SyncRequest triggers a table synchronization.
type SyncRequest struct {
	TargetYear int  `json:"target_year" validate:"required,gte=2000,lte=2100"`
	Apply      bool `json:"apply"`
}

// SyncResponseDTO is the synchronization outcome.
type SyncResponseDTO struct {
	TargetYear int               `json:"target_year"`
	Applied    bool              `json:"applied"`
	Sources    map[string]string `json:"sources,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Report     []string          `json:"report"`
}

// ComplianceRequest triggers a compliance check.
type ComplianceRequest struct {
	Year      int  `json:"year" validate:"required,gte=2000,lte=2100"`
	Remediate bool `json:"remediate"`
}

// ComplianceReportDTO is a compliance report.
type ComplianceReportDTO struct {
	Year       int      `json:"year"`
	OK         bool     `json:"ok"`
	Remediated bool     `json:"remediated,omitempty"`
	Issues     []string `json:"issues"`
	Infos      []string `json:"infos"`
}

// =============================================================================
// PAYROLL RUNS
// =============================================================================

// CreateRunRequest opens (or updates) the payroll run of a competence.
type CreateRunRequest struct {
	Year             int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Month            int    `json:"month" validate:"required,gte=1,lte=12"`
	OvertimeHourRate string `json:"overtime_hour_rate" validate:"omitempty"`
}

// SetOvertimeRequest records an employee's overtime hours in a run.
type SetOvertimeRequest struct {
	EmployeeID    string `json:"employee_id" validate:"required"`
	OvertimeHours string `json:"overtime_hours" validate:"required"`
}

// RunLineDTO is one employee's payroll line.
type RunLineDTO struct {
	EmployeeID     string       `json:"employee_id"`
	BaseSalary     string       `json:"base_salary"`
	OvertimeHours  string       `json:"overtime_hours"`
	OvertimeAmount string       `json:"overtime_amount"`
	GrossTotal     string       `json:"gross_total"`
	Estimate       *EstimateDTO `json:"estimate,omitempty"`
}

// RunSummaryDTO aggregates a run for the competence-close view.
type RunSummaryDTO struct {
	Year             int          `json:"year"`
	Month            int          `json:"month"`
	EmployeeCount    int          `json:"employee_count"`
	TotalGross       string       `json:"total_gross"`
	TotalPension     string       `json:"total_pension,omitempty"`
	TotalWithholding string       `json:"total_withholding,omitempty"`
	TotalNet         string       `json:"total_net,omitempty"`
	HasTables        bool         `json:"has_tables"`
	Lines            []RunLineDTO `json:"lines"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatMoneyPtr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func toEstimateDTO(e *payroll.DiscountEstimate) *EstimateDTO {
	if e == nil {
		return nil
	}
	return &EstimateDTO{
		PensionEffective:     e.PensionEffective.Format("2006-01-02"),
		WithholdingEffective: e.WithholdingEffective.Format("2006-01-02"),
		Pension:              e.Pension.StringFixed(2),
		Withholding:          e.Withholding.StringFixed(2),
		Net:                  e.Net.StringFixed(2),
	}
}

func toEmployeeDTO(e payroll.Employee, baseSalary string) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		Name:       e.Name,
		CPF:        e.CPF,
		HiredAt:    formatDatePtr(e.HiredAt),
		Active:     e.Active,
		Dependents: e.Dependents,
		BaseSalary: baseSalary,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

func toVacationDTO(r payroll.VacationRecord) VacationDTO {
	return VacationDTO{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		Year:        r.Year,
		Month:       r.Month,
		StartDate:   r.StartDate.Format("2006-01-02"),
		PayDate:     formatDatePtr(r.PayDate),
		EnjoyedDays: r.EnjoyedDays,
		SoldDays:    r.SoldDays,
		BaseSalary:  r.BaseSalaryAtCalc.StringFixed(2),
		DailyRate:   r.Amounts.DailyRate.StringFixed(4),
		Pay:         r.Amounts.VacationPay.StringFixed(2),
		BonusThird:  r.Amounts.VacationBonusThird.StringFixed(2),
		SoldPay:     r.Amounts.SoldPay.StringFixed(2),
		SoldThird:   r.Amounts.SoldBonusThird.StringFixed(2),
		GrossTotal:  r.Amounts.GrossTotal.StringFixed(2),
		Estimate:    toEstimateDTO(r.Estimate),
	}
}

func toThirteenthDTO(r payroll.ThirteenthRecord) ThirteenthDTO {
	return ThirteenthDTO{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		Year:         r.Year,
		PaymentType:  string(r.PaymentType),
		PaymentMonth: r.PaymentMonth,
		PayDate:      formatDatePtr(r.PayDate),
		MonthsWorked: r.MonthsWorked,
		BaseSalary:   r.BaseSalaryAtCalc.StringFixed(2),
		MonthlyPart:  r.MonthlyPart.StringFixed(2),
		Gross:        r.Gross.StringFixed(2),
		Estimate:     toEstimateDTO(r.Estimate),
	}
}

func toTerminationDTO(r payroll.TerminationRecord) TerminationDTO {
	return TerminationDTO{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		Date:        r.Date.Format("2006-01-02"),
		Type:        string(r.Type),
		Notice:      string(r.Notice),
		BaseSalary:  r.BaseSalaryAtCalc.StringFixed(2),
		FgtsBalance: formatMoneyPtr(r.FgtsBalance),
		FineRate:    rateString(r.FineRate),
		FineAmount:  formatMoneyPtr(r.FineAmount),
	}
}

func rateString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func toLeaveDTO(r payroll.LeaveRecord) LeaveDTO {
	return LeaveDTO{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		Kind:         string(r.Kind),
		StartDate:    r.StartDate.Format("2006-01-02"),
		EndDate:      r.EndDate.Format("2006-01-02"),
		PaidBy:       string(r.PaidBy),
		DurationDays: r.DurationDays(),
	}
}

func toBracketVersionDTO(v *tax.BracketVersion) BracketVersionDTO {
	dto := BracketVersionDTO{
		Kind:          string(v.Kind),
		EffectiveFrom: v.EffectiveFrom.Format("2006-01-02"),
	}
	for _, row := range v.Rows {
		rj := BracketRowDTO{Rate: row.Rate.String()}
		if row.UpperBound != nil {
			rj.UpperBound = row.UpperBound.StringFixed(2)
		}
		if !row.DeductionParcel.IsZero() {
			rj.DeductionParcel = row.DeductionParcel.StringFixed(2)
		}
		dto.Rows = append(dto.Rows, rj)
	}
	return dto
}
