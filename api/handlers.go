/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request and
  response, JSON serialization, input validation, and delegates to the
  domain packages.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List all employees
    POST   /api/employees                 Create/update employee
    GET    /api/employees/{id}            Get employee with current salary
    POST   /api/employees/{id}/salary     Register salary change
    GET    /api/employees/{id}/salary     Salary history
    POST   /api/employees/{id}/deactivate Mark inactive

  Derived compensation:
    POST   /api/vacations                 Compute and register a vacation
    GET    /api/vacations?year=           List a year's vacations
    POST   /api/thirteenths               Register a 13th installment
    GET    /api/thirteenths?year=
    POST   /api/terminations              Register a termination settlement
    GET    /api/terminations?year=
    POST   /api/leaves                    Register a leave period
    GET    /api/leaves?year=

  Tax tables:
    GET    /api/tables/{kind}?date=       Resolve the active version
    GET    /api/tables/{kind}/versions    Version history
    POST   /api/tables                    Manual table document load
    POST   /api/sync                      Source synchronization (dry-run/apply)
    GET    /api/estimates?gross=&date=&dependents=

  Payroll runs:
    POST   /api/runs                      Open the competence run
    POST   /api/runs/{year}/{month}/overtime
    GET    /api/runs/{year}/{month}       Summary with lines

  Compliance:
    POST   /api/compliance                Run the yearly checks

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 422: Sync apply refused
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. All endpoints are public; put the server
  behind a gateway in production.

SEE ALSO:
  - dto.go: Request/response data structures
  - seed.go: Demo data loader
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/tax"
	"github.com/warp/payroll-engine/taxsync"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Estimator *payroll.Estimator
	Sync      *taxsync.Synchronizer
	Checks    *compliance.Engine

	validate *validator.Validate
}

// NewHandler creates a handler over the store, wiring the synchronizer
// as the compliance remediator.
func NewHandler(store *sqlite.Store) *Handler {
	sync := taxsync.New(store)

	h := &Handler{
		Store:     store,
		Estimator: payroll.NewEstimator(store),
		Sync:      sync,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	h.Checks = compliance.NewEngine(store, func(ctx context.Context, year int) error {
		_, err := sync.Run(ctx, year, true)
		return err
	})
	return h
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e, "")
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or updates an employee and registers the
// initial salary, effective at the hire date (or today when unset).
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	salary, err := decimal.NewFromString(req.BaseSalary)
	if err != nil || !salary.IsPositive() {
		writeError(w, http.StatusBadRequest, "base_salary must be a positive decimal", err)
		return
	}

	e := payroll.Employee{
		ID:         req.ID,
		Name:       req.Name,
		CPF:        req.CPF,
		Active:     true,
		Dependents: req.Dependents,
	}

	effective := time.Now().UTC().Truncate(24 * time.Hour)
	if req.HiredAt != "" {
		hired, _ := time.Parse("2006-01-02", req.HiredAt)
		e.HiredAt = &hired
		effective = hired
	}

	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	if err := h.Store.SaveSalaryChange(r.Context(), payroll.SalaryChange{
		EmployeeID:    e.ID,
		EffectiveFrom: effective,
		BaseSalary:    salary,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save salary", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(e, salary.StringFixed(2)))
}

// GetEmployee returns a single employee with the current base salary.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	baseSalary := ""
	if salary, ok, err := h.Store.SalaryAt(r.Context(), id, time.Now().UTC()); err == nil && ok {
		baseSalary = salary.StringFixed(2)
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*e, baseSalary))
}

// ChangeSalary registers an effective-dated salary change.
func (h *Handler) ChangeSalary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SalaryChangeRequest
	if !h.decode(w, r, &req) {
		return
	}

	salary, err := decimal.NewFromString(req.BaseSalary)
	if err != nil || !salary.IsPositive() {
		writeError(w, http.StatusBadRequest, "base_salary must be a positive decimal", err)
		return
	}
	effective, _ := time.Parse("2006-01-02", req.EffectiveFrom)

	if e := h.requireEmployee(w, r, id); e == nil {
		return
	}

	if err := h.Store.SaveSalaryChange(r.Context(), payroll.SalaryChange{
		EmployeeID:    id,
		EffectiveFrom: effective,
		BaseSalary:    salary,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save salary change", err)
		return
	}
	writeJSON(w, http.StatusCreated, SalaryChangeDTO{
		EffectiveFrom: effective.Format("2006-01-02"),
		BaseSalary:    salary.StringFixed(2),
	})
}

// GetSalaryHistory returns an employee's salary changes, oldest first.
func (h *Handler) GetSalaryHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	changes, err := h.Store.ListSalaryHistory(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load salary history", err)
		return
	}

	dtos := make([]SalaryChangeDTO, len(changes))
	for i, c := range changes {
		dtos[i] = SalaryChangeDTO{
			EffectiveFrom: c.EffectiveFrom.Format("2006-01-02"),
			BaseSalary:    c.BaseSalary.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeactivateEmployee marks an employee inactive.
func (h *Handler) DeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.SetEmployeeActive(r.Context(), id, false); err != nil {
		writeError(w, http.StatusNotFound, "Employee not found", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// VACATION HANDLERS
// =============================================================================

// CreateVacation computes and registers a vacation for an employee.
func (h *Handler) CreateVacation(w http.ResponseWriter, r *http.Request) {
	var req CreateVacationRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.EnjoyedDays+req.SoldDays > 30 {
		writeError(w, http.StatusBadRequest, "enjoyed_days + sold_days cannot exceed 30", nil)
		return
	}

	e := h.requireEmployee(w, r, req.EmployeeID)
	if e == nil {
		return
	}

	competence := tax.CompetenceStart(req.Year, req.Month)
	salary, ok, err := h.Store.SalaryAt(r.Context(), e.ID, competence)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve salary", err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "No salary registered for the competence", nil)
		return
	}

	amounts := payroll.ComputeVacation(salary, req.EnjoyedDays, req.SoldDays)
	estimate, err := h.Estimator.Estimate(r.Context(), amounts.GrossTotal, competence, e.Dependents)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to estimate discounts", err)
		return
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	record := payroll.VacationRecord{
		ID:               uuid.NewString(),
		EmployeeID:       e.ID,
		Year:             req.Year,
		Month:            req.Month,
		StartDate:        startDate,
		PayDate:          parseDatePtr(req.PayDate),
		EnjoyedDays:      req.EnjoyedDays,
		SoldDays:         req.SoldDays,
		BaseSalaryAtCalc: salary,
		Amounts:          amounts,
		Estimate:         estimate,
	}

	if err := h.Store.SaveVacation(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save vacation", err)
		return
	}
	writeJSON(w, http.StatusCreated, toVacationDTO(record))
}

// ListVacations returns a year's vacation records.
func (h *Handler) ListVacations(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	records, err := h.Store.ListVacations(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vacations", err)
		return
	}

	dtos := make([]VacationDTO, len(records))
	for i, rec := range records {
		dtos[i] = toVacationDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// THIRTEENTH HANDLERS
// =============================================================================

// CreateThirteenth computes and registers a thirteenth-salary installment.
// First installments carry no discount estimate by rule.
func (h *Handler) CreateThirteenth(w http.ResponseWriter, r *http.Request) {
	var req CreateThirteenthRequest
	if !h.decode(w, r, &req) {
		return
	}

	e := h.requireEmployee(w, r, req.EmployeeID)
	if e == nil {
		return
	}

	competence := tax.CompetenceStart(req.Year, req.PaymentMonth)
	salary, ok, err := h.Store.SalaryAt(r.Context(), e.ID, competence)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve salary", err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "No salary registered for the competence", nil)
		return
	}

	paymentType := payroll.ThirteenthPaymentType(req.PaymentType)
	amounts := payroll.ComputeThirteenth(salary, req.MonthsWorked)

	var estimate *payroll.DiscountEstimate
	if paymentType.CarriesDiscounts() {
		estimate, err = h.Estimator.Estimate(r.Context(), amounts.Gross, competence, e.Dependents)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to estimate discounts", err)
			return
		}
	}

	record := payroll.ThirteenthRecord{
		ID:               uuid.NewString(),
		EmployeeID:       e.ID,
		Year:             req.Year,
		PaymentType:      paymentType,
		PaymentMonth:     req.PaymentMonth,
		PayDate:          parseDatePtr(req.PayDate),
		MonthsWorked:     amounts.MonthsWorked,
		BaseSalaryAtCalc: salary,
		MonthlyPart:      amounts.MonthlyPart,
		Gross:            amounts.Gross,
		Estimate:         estimate,
	}

	if err := h.Store.SaveThirteenth(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save thirteenth", err)
		return
	}
	writeJSON(w, http.StatusCreated, toThirteenthDTO(record))
}

// ListThirteenths returns a year's thirteenth records.
func (h *Handler) ListThirteenths(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	records, err := h.Store.ListThirteenths(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list thirteenths", err)
		return
	}

	dtos := make([]ThirteenthDTO, len(records))
	for i, rec := range records {
		dtos[i] = toThirteenthDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TERMINATION HANDLERS
// =============================================================================

// CreateTermination registers a termination settlement and marks the
// employee inactive.
func (h *Handler) CreateTermination(w http.ResponseWriter, r *http.Request) {
	var req CreateTerminationRequest
	if !h.decode(w, r, &req) {
		return
	}

	e := h.requireEmployee(w, r, req.EmployeeID)
	if e == nil {
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	salary, _, err := h.Store.SalaryAt(r.Context(), e.ID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve salary", err)
		return
	}

	record := payroll.TerminationRecord{
		ID:               uuid.NewString(),
		EmployeeID:       e.ID,
		Date:             date,
		Type:             payroll.TerminationType(req.Type),
		Notice:           payroll.NoticeType(req.Notice),
		BaseSalaryAtCalc: salary,
	}

	var overrideRate *decimal.Decimal
	if req.FineRate != "" {
		rate, err := decimal.NewFromString(req.FineRate)
		if err != nil || rate.IsNegative() {
			writeError(w, http.StatusBadRequest, "fine_rate must be a non-negative decimal", err)
			return
		}
		overrideRate = &rate
	}

	if req.FgtsBalance != "" {
		balance, err := decimal.NewFromString(req.FgtsBalance)
		if err != nil || balance.IsNegative() {
			writeError(w, http.StatusBadRequest, "fgts_balance must be a non-negative decimal", err)
			return
		}
		record.FgtsBalance = &balance

		fine := payroll.ComputeTerminationFine(balance, record.Type, overrideRate)
		record.FineRate = &fine.Rate
		record.FineAmount = fine.Fine
	} else if overrideRate != nil {
		record.FineRate = overrideRate
	}

	if err := h.Store.SaveTermination(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save termination", err)
		return
	}
	if err := h.Store.SetEmployeeActive(r.Context(), e.ID, false); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to deactivate employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTerminationDTO(record))
}

// ListTerminations returns the termination records dated in a year.
func (h *Handler) ListTerminations(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	records, err := h.Store.ListTerminations(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list terminations", err)
		return
	}

	dtos := make([]TerminationDTO, len(records))
	for i, rec := range records {
		dtos[i] = toTerminationDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// CreateLeave registers a leave period.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	e := h.requireEmployee(w, r, req.EmployeeID)
	if e == nil {
		return
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)
	if endDate.Before(startDate) {
		writeError(w, http.StatusBadRequest, "end_date cannot precede start_date", nil)
		return
	}

	record := payroll.LeaveRecord{
		ID:         uuid.NewString(),
		EmployeeID: e.ID,
		Kind:       payroll.LeaveKind(req.Kind),
		StartDate:  startDate,
		EndDate:    endDate,
		PaidBy:     payroll.PaidBy(req.PaidBy),
	}

	if err := h.Store.SaveLeave(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(record))
}

// ListLeaves returns the leave records starting in a year.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	records, err := h.Store.ListLeaves(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}

	dtos := make([]LeaveDTO, len(records))
	for i, rec := range records {
		dtos[i] = toLeaveDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TAX TABLE HANDLERS
// =============================================================================

// GetTable resolves the active bracket version for a kind at a date
// (today when the date query param is absent).
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	kind := tax.Kind(chi.URLParam(r, "kind"))
	if kind != tax.KindPension && kind != tax.KindWithholding {
		writeError(w, http.StatusNotFound, "Unknown tax kind", nil)
		return
	}

	target := time.Now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
			return
		}
		target = t
	}

	v, err := h.Store.ResolveVersion(r.Context(), kind, target)
	if err != nil {
		if tax.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "No bracket version covers the date", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to resolve table", err)
		return
	}
	writeJSON(w, http.StatusOK, toBracketVersionDTO(v))
}

// ListTableVersions returns a kind's version history, newest first.
func (h *Handler) ListTableVersions(w http.ResponseWriter, r *http.Request) {
	kind := tax.Kind(chi.URLParam(r, "kind"))
	if kind != tax.KindPension && kind != tax.KindWithholding {
		writeError(w, http.StatusNotFound, "Unknown tax kind", nil)
		return
	}

	versions, err := h.Store.ListVersions(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list versions", err)
		return
	}

	dtos := make([]BracketVersionDTO, len(versions))
	for i := range versions {
		dtos[i] = toBracketVersionDTO(&versions[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadTables accepts a manual table document and persists it atomically.
func (h *Handler) LoadTables(w http.ResponseWriter, r *http.Request) {
	var doc factory.TableDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	versions, cfg, err := doc.Build()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid table document", err)
		return
	}

	if err := h.Store.ReplaceAll(r.Context(), versions, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist tables", err)
		return
	}

	dtos := make([]BracketVersionDTO, len(versions))
	for i := range versions {
		dtos[i] = toBracketVersionDTO(&versions[i])
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// RunSync walks the official source chains. Dry-run always returns 200
// with the report; a refused apply returns 422 with the same report.
func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.Sync.Run(r.Context(), req.TargetYear, req.Apply)
	if err != nil {
		var refused *tax.ApplyRefusedError
		if errors.As(err, &refused) {
			writeJSON(w, http.StatusUnprocessableEntity, toSyncDTO(res))
			return
		}
		writeError(w, http.StatusInternalServerError, "Synchronization failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toSyncDTO(res))
}

func toSyncDTO(res *taxsync.Result) SyncResponseDTO {
	dto := SyncResponseDTO{
		TargetYear: res.TargetYear,
		Applied:    res.Applied,
		Report:     res.ReportLines,
		Sources:    make(map[string]string, len(res.SourceUsed)),
		Errors:     make(map[string]string, len(res.Errors)),
	}
	for kind, source := range res.SourceUsed {
		dto.Sources[string(kind)] = source
	}
	for kind, errText := range res.Errors {
		dto.Errors[string(kind)] = errText
	}
	return dto
}

// GetEstimate computes a standalone discount estimate.
func (h *Handler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	gross, err := decimal.NewFromString(q.Get("gross"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "gross must be a decimal", err)
		return
	}

	target := time.Now().UTC()
	if d := q.Get("date"); d != "" {
		if target, err = time.Parse("2006-01-02", d); err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
			return
		}
	}

	dependents := 0
	if d := q.Get("dependents"); d != "" {
		if dependents, err = strconv.Atoi(d); err != nil || dependents < 0 {
			writeError(w, http.StatusBadRequest, "dependents must be a non-negative integer", err)
			return
		}
	}

	estimate, err := h.Estimator.Estimate(r.Context(), gross, target, dependents)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to estimate", err)
		return
	}
	if estimate == nil {
		writeError(w, http.StatusNotFound, "No tables cover the date", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEstimateDTO(estimate))
}

// =============================================================================
// COMPLIANCE HANDLER
// =============================================================================

// RunCompliance runs the yearly checks, optionally remediating missing
// tables via a sync apply.
func (h *Handler) RunCompliance(w http.ResponseWriter, r *http.Request) {
	var req ComplianceRequest
	if !h.decode(w, r, &req) {
		return
	}

	report, err := h.Checks.Check(r.Context(), req.Year, req.Remediate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Compliance check failed", err)
		return
	}

	writeJSON(w, http.StatusOK, ComplianceReportDTO{
		Year:       report.Year,
		OK:         report.OK,
		Remediated: report.Remediated,
		Issues:     emptyIfNil(report.Issues),
		Infos:      emptyIfNil(report.Infos),
	})
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// =============================================================================
// PAYROLL RUN HANDLERS
// =============================================================================

// CreateRun opens (or updates) the payroll run of a competence, seeding
// one line per active employee with a resolvable salary.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if !h.decode(w, r, &req) {
		return
	}

	hourRate := decimal.Zero
	if req.OvertimeHourRate != "" {
		var err error
		if hourRate, err = decimal.NewFromString(req.OvertimeHourRate); err != nil || hourRate.IsNegative() {
			writeError(w, http.StatusBadRequest, "overtime_hour_rate must be a non-negative decimal", err)
			return
		}
	}

	run, err := h.Store.GetRun(r.Context(), req.Year, req.Month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load run", err)
		return
	}
	if run == nil {
		run = &payroll.Run{ID: uuid.NewString(), Year: req.Year, Month: req.Month}
	}
	run.OvertimeHourRate = hourRate

	if err := h.Store.SaveRun(r.Context(), *run); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save run", err)
		return
	}

	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	competence := run.CompetenceStart()
	for _, e := range employees {
		if !e.Active {
			continue
		}
		salary, ok, err := h.Store.SalaryAt(r.Context(), e.ID, competence)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to resolve salary", err)
			return
		}
		if !ok {
			continue
		}

		line := payroll.Line{
			ID:         uuid.NewString(),
			RunID:      run.ID,
			EmployeeID: e.ID,
			BaseSalary: salary,
		}
		line.ApplyOvertime(decimal.Zero, hourRate)
		if err := h.Store.SaveLine(r.Context(), line); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save line", err)
			return
		}
	}

	h.writeRunSummary(w, r, run, http.StatusCreated)
}

// SetOvertime records an employee's overtime hours in a run.
func (h *Handler) SetOvertime(w http.ResponseWriter, r *http.Request) {
	run, ok := h.runFromURL(w, r)
	if !ok {
		return
	}

	var req SetOvertimeRequest
	if !h.decode(w, r, &req) {
		return
	}

	hours, err := decimal.NewFromString(req.OvertimeHours)
	if err != nil || hours.IsNegative() {
		writeError(w, http.StatusBadRequest, "overtime_hours must be a non-negative decimal", err)
		return
	}

	lines, err := h.Store.ListLines(r.Context(), run.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load lines", err)
		return
	}

	for _, line := range lines {
		if line.EmployeeID != req.EmployeeID {
			continue
		}
		line.ApplyOvertime(hours, run.OvertimeHourRate)
		if err := h.Store.SaveLine(r.Context(), line); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save line", err)
			return
		}
		h.writeRunSummary(w, r, run, http.StatusOK)
		return
	}
	writeError(w, http.StatusNotFound, "Employee has no line in this run", nil)
}

// GetRunSummary returns the competence summary with per-line estimates.
func (h *Handler) GetRunSummary(w http.ResponseWriter, r *http.Request) {
	run, ok := h.runFromURL(w, r)
	if !ok {
		return
	}
	h.writeRunSummary(w, r, run, http.StatusOK)
}

func (h *Handler) runFromURL(w http.ResponseWriter, r *http.Request) (*payroll.Run, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return nil, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return nil, false
	}

	run, err := h.Store.GetRun(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load run", err)
		return nil, false
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "No run for this competence", nil)
		return nil, false
	}
	return run, true
}

func (h *Handler) writeRunSummary(w http.ResponseWriter, r *http.Request, run *payroll.Run, status int) {
	lines, err := h.Store.ListLines(r.Context(), run.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load lines", err)
		return
	}

	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dependents := make(map[string]int, len(employees))
	for _, e := range employees {
		dependents[e.ID] = e.Dependents
	}

	summary, err := payroll.Summarize(r.Context(), *run, lines, h.Estimator, dependents)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize run", err)
		return
	}

	dto := RunSummaryDTO{
		Year:          summary.Year,
		Month:         summary.Month,
		EmployeeCount: summary.EmployeeCount,
		TotalGross:    summary.TotalGross.StringFixed(2),
		HasTables:     summary.HasTables,
	}
	if summary.HasTables {
		dto.TotalPension = summary.TotalPension.StringFixed(2)
		dto.TotalWithholding = summary.TotalWithholding.StringFixed(2)
		dto.TotalNet = summary.TotalNet.StringFixed(2)
	}

	competence := run.CompetenceStart()
	for _, line := range lines {
		estimate, err := h.Estimator.Estimate(r.Context(), line.GrossTotal, competence, dependents[line.EmployeeID])
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to estimate line", err)
			return
		}
		dto.Lines = append(dto.Lines, RunLineDTO{
			EmployeeID:     line.EmployeeID,
			BaseSalary:     line.BaseSalary.StringFixed(2),
			OvertimeHours:  line.OvertimeHours.String(),
			OvertimeAmount: line.OvertimeAmount.StringFixed(2),
			GrossTotal:     line.GrossTotal.StringFixed(2),
			Estimate:       toEstimateDTO(estimate),
		})
	}
	writeJSON(w, status, dto)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// decode unmarshals and validates a request body, writing a 400 on
// failure. Returns false when the caller should stop.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, len(verrs))
			for i, fe := range verrs {
				details[i] = fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: details})
			return false
		}
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// requireEmployee loads an employee or writes a 404, returning nil.
func (h *Handler) requireEmployee(w http.ResponseWriter, r *http.Request, id string) *payroll.Employee {
	e, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return nil
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return nil
	}
	return e
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year query parameter is required", err)
		return 0, false
	}
	return year, true
}

func parseDatePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
