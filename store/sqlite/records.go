/*
records.go - Employee registry, derived compensation records, payroll runs

PURPOSE:
  Persistence for everything the calculators produce and consume:
  employees with their effective-dated salary history, the immutable
  vacation/thirteenth/termination/leave records, monthly payroll runs,
  and the yearly snapshot the compliance engine checks.

IMMUTABILITY:
  Derived records are insert-only. There is no update path; a wrong
  record is superseded by a new one, keeping the audit trail intact.

SEE ALSO:
  - sqlite.go: connection, schema, bracket version store
  - compliance/compliance.go: the snapshot consumer
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tax"
)

var _ compliance.DataSource = (*Store)(nil)

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, e payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, cpf, hired_at, active, dependents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			cpf = excluded.cpf,
			hired_at = excluded.hired_at,
			active = excluded.active,
			dependents = excluded.dependents`,
		e.ID, e.Name, e.CPF, nullDate(e.HiredAt), e.Active, e.Dependents,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID. Returns (nil, nil) when absent.
func (s *Store) GetEmployee(ctx context.Context, id string) (*payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e payroll.Employee
	var hiredAt sql.NullString
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, cpf, hired_at, active, dependents, created_at FROM employees WHERE id = ?",
		id,
	).Scan(&e.ID, &e.Name, &e.CPF, &hiredAt, &e.Active, &e.Dependents, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	e.HiredAt = scanNullDate(hiredAt)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

// ListEmployees returns all employees, active or not, ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, cpf, hired_at, active, dependents, created_at FROM employees ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		var e payroll.Employee
		var hiredAt sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Name, &e.CPF, &hiredAt, &e.Active, &e.Dependents, &createdAt); err != nil {
			return nil, err
		}
		e.HiredAt = scanNullDate(hiredAt)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// SetEmployeeActive flips an employee's activity flag.
func (s *Store) SetEmployeeActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE employees SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("employee %s not found", id)
	}
	return nil
}

// =============================================================================
// SALARY HISTORY
// =============================================================================

// SaveSalaryChange inserts or updates a salary change at its exact
// effective date.
func (s *Store) SaveSalaryChange(ctx context.Context, c payroll.SalaryChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employee_salaries (employee_id, effective_from, base_salary)
		 VALUES (?, ?, ?)
		 ON CONFLICT(employee_id, effective_from) DO UPDATE SET
			base_salary = excluded.base_salary`,
		c.EmployeeID, c.EffectiveFrom.Format(dateOnly), c.BaseSalary.String(),
	)
	return err
}

// SalaryAt resolves an employee's base salary at a date: the latest
// change at or before it. The bool is false when no change covers the
// date.
func (s *Store) SalaryAt(ctx context.Context, employeeID string, at time.Time) (decimal.Decimal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var salary string
	err := s.db.QueryRowContext(ctx,
		`SELECT base_salary FROM employee_salaries
		 WHERE employee_id = ? AND effective_from <= ?
		 ORDER BY effective_from DESC LIMIT 1`,
		employeeID, at.Format(dateOnly),
	).Scan(&salary)

	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return parseDecimal(salary), true, nil
}

// ListSalaryHistory returns an employee's salary changes, oldest first.
func (s *Store) ListSalaryHistory(ctx context.Context, employeeID string) ([]payroll.SalaryChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id, effective_from, base_salary FROM employee_salaries
		 WHERE employee_id = ? ORDER BY effective_from ASC`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []payroll.SalaryChange
	for rows.Next() {
		var c payroll.SalaryChange
		var effectiveFrom, salary string
		if err := rows.Scan(&c.EmployeeID, &effectiveFrom, &salary); err != nil {
			return nil, err
		}
		c.EffectiveFrom, _ = time.Parse(dateOnly, effectiveFrom)
		c.BaseSalary = parseDecimal(salary)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// =============================================================================
// VACATION RECORDS
// =============================================================================

// SaveVacation inserts a vacation record.
func (s *Store) SaveVacation(ctx context.Context, r payroll.VacationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	est := estimateColumns(r.Estimate)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vacation_records
		 (id, employee_id, year, month, start_date, pay_date, enjoyed_days, sold_days,
		  base_salary, daily_rate, vacation_pay, vacation_third, sold_pay, sold_third, gross_total,
		  est_pension_effective, est_withholding_effective, est_pension, est_withholding, est_net,
		  created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EmployeeID, r.Year, r.Month,
		r.StartDate.Format(dateOnly), nullDate(r.PayDate),
		r.EnjoyedDays, r.SoldDays,
		r.BaseSalaryAtCalc.String(),
		r.Amounts.DailyRate.String(),
		r.Amounts.VacationPay.String(),
		r.Amounts.VacationBonusThird.String(),
		r.Amounts.SoldPay.String(),
		r.Amounts.SoldBonusThird.String(),
		r.Amounts.GrossTotal.String(),
		est.pensionEffective, est.withholdingEffective, est.pension, est.withholding, est.net,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save vacation record: %w", err)
	}
	return nil
}

// ListVacations returns a year's vacation records, oldest start first.
func (s *Store) ListVacations(ctx context.Context, year int) ([]payroll.VacationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, year, month, start_date, pay_date, enjoyed_days, sold_days,
		        base_salary, daily_rate, vacation_pay, vacation_third, sold_pay, sold_third, gross_total,
		        est_pension_effective, est_withholding_effective, est_pension, est_withholding, est_net,
		        created_at
		 FROM vacation_records WHERE year = ? ORDER BY start_date ASC`,
		year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []payroll.VacationRecord
	for rows.Next() {
		var r payroll.VacationRecord
		var startDate, createdAt string
		var payDate sql.NullString
		var baseSalary, daily, pay, third, soldPay, soldThird, gross string
		var est estimateScan

		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.Year, &r.Month, &startDate, &payDate,
			&r.EnjoyedDays, &r.SoldDays,
			&baseSalary, &daily, &pay, &third, &soldPay, &soldThird, &gross,
			&est.pensionEffective, &est.withholdingEffective, &est.pension, &est.withholding, &est.net,
			&createdAt); err != nil {
			return nil, err
		}

		r.StartDate, _ = time.Parse(dateOnly, startDate)
		r.PayDate = scanNullDate(payDate)
		r.BaseSalaryAtCalc = parseDecimal(baseSalary)
		r.Amounts = payroll.VacationAmounts{
			DailyRate:          parseDecimal(daily),
			VacationPay:        parseDecimal(pay),
			VacationBonusThird: parseDecimal(third),
			SoldPay:            parseDecimal(soldPay),
			SoldBonusThird:     parseDecimal(soldThird),
			GrossTotal:         parseDecimal(gross),
		}
		r.Estimate = est.estimate()
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// THIRTEENTH RECORDS
// =============================================================================

// SaveThirteenth inserts a thirteenth-salary record.
func (s *Store) SaveThirteenth(ctx context.Context, r payroll.ThirteenthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	est := estimateColumns(r.Estimate)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO thirteenth_records
		 (id, employee_id, year, payment_type, payment_month, pay_date, months_worked,
		  base_salary, monthly_part, gross,
		  est_pension_effective, est_withholding_effective, est_pension, est_withholding, est_net,
		  created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EmployeeID, r.Year, string(r.PaymentType), r.PaymentMonth,
		nullDate(r.PayDate), r.MonthsWorked,
		r.BaseSalaryAtCalc.String(), r.MonthlyPart.String(), r.Gross.String(),
		est.pensionEffective, est.withholdingEffective, est.pension, est.withholding, est.net,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save thirteenth record: %w", err)
	}
	return nil
}

// ListThirteenths returns a year's thirteenth records.
func (s *Store) ListThirteenths(ctx context.Context, year int) ([]payroll.ThirteenthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, year, payment_type, payment_month, pay_date, months_worked,
		        base_salary, monthly_part, gross,
		        est_pension_effective, est_withholding_effective, est_pension, est_withholding, est_net,
		        created_at
		 FROM thirteenth_records WHERE year = ? ORDER BY payment_month ASC, created_at ASC`,
		year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []payroll.ThirteenthRecord
	for rows.Next() {
		var r payroll.ThirteenthRecord
		var paymentType, baseSalary, monthly, gross, createdAt string
		var payDate sql.NullString
		var est estimateScan

		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.Year, &paymentType, &r.PaymentMonth,
			&payDate, &r.MonthsWorked,
			&baseSalary, &monthly, &gross,
			&est.pensionEffective, &est.withholdingEffective, &est.pension, &est.withholding, &est.net,
			&createdAt); err != nil {
			return nil, err
		}

		r.PaymentType = payroll.ThirteenthPaymentType(paymentType)
		r.PayDate = scanNullDate(payDate)
		r.BaseSalaryAtCalc = parseDecimal(baseSalary)
		r.MonthlyPart = parseDecimal(monthly)
		r.Gross = parseDecimal(gross)
		r.Estimate = est.estimate()
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// TERMINATION RECORDS
// =============================================================================

// SaveTermination inserts a termination record.
func (s *Store) SaveTermination(ctx context.Context, r payroll.TerminationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO termination_records
		 (id, employee_id, date, type, notice, base_salary, fgts_balance, fine_rate, fine_amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EmployeeID, r.Date.Format(dateOnly),
		string(r.Type), string(r.Notice),
		r.BaseSalaryAtCalc.String(),
		nullDecimal(r.FgtsBalance), nullDecimal(r.FineRate), nullDecimal(r.FineAmount),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save termination record: %w", err)
	}
	return nil
}

// ListTerminations returns the termination records dated in a year.
func (s *Store) ListTerminations(ctx context.Context, year int) ([]payroll.TerminationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, date, type, notice, base_salary, fgts_balance, fine_rate, fine_amount, created_at
		 FROM termination_records
		 WHERE strftime('%Y', date) = ?
		 ORDER BY date ASC`,
		fmt.Sprintf("%04d", year),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []payroll.TerminationRecord
	for rows.Next() {
		var r payroll.TerminationRecord
		var date, typ, notice, baseSalary, createdAt string
		var balance, rate, amount sql.NullString

		if err := rows.Scan(&r.ID, &r.EmployeeID, &date, &typ, &notice,
			&baseSalary, &balance, &rate, &amount, &createdAt); err != nil {
			return nil, err
		}

		r.Date, _ = time.Parse(dateOnly, date)
		r.Type = payroll.TerminationType(typ)
		r.Notice = payroll.NoticeType(notice)
		r.BaseSalaryAtCalc = parseDecimal(baseSalary)
		r.FgtsBalance = scanNullDecimal(balance)
		r.FineRate = scanNullDecimal(rate)
		r.FineAmount = scanNullDecimal(amount)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// LEAVE RECORDS
// =============================================================================

// SaveLeave inserts a leave record.
func (s *Store) SaveLeave(ctx context.Context, r payroll.LeaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leave_records (id, employee_id, kind, start_date, end_date, paid_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EmployeeID, string(r.Kind),
		r.StartDate.Format(dateOnly), r.EndDate.Format(dateOnly), string(r.PaidBy),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save leave record: %w", err)
	}
	return nil
}

// ListLeaves returns the leave records starting in a year.
func (s *Store) ListLeaves(ctx context.Context, year int) ([]payroll.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, kind, start_date, end_date, paid_by, created_at
		 FROM leave_records
		 WHERE strftime('%Y', start_date) = ?
		 ORDER BY start_date ASC`,
		fmt.Sprintf("%04d", year),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []payroll.LeaveRecord
	for rows.Next() {
		var r payroll.LeaveRecord
		var kind, startDate, endDate, paidBy, createdAt string

		if err := rows.Scan(&r.ID, &r.EmployeeID, &kind, &startDate, &endDate, &paidBy, &createdAt); err != nil {
			return nil, err
		}

		r.Kind = payroll.LeaveKind(kind)
		r.StartDate, _ = time.Parse(dateOnly, startDate)
		r.EndDate, _ = time.Parse(dateOnly, endDate)
		r.PaidBy = payroll.PaidBy(paidBy)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// PAYROLL RUNS
// =============================================================================

// SaveRun inserts or updates a payroll run. The (year, month) pair is
// unique; saving an existing competence updates the overtime rate.
func (s *Store) SaveRun(ctx context.Context, r payroll.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payroll_runs (id, year, month, overtime_hour_rate, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(year, month) DO UPDATE SET
			overtime_hour_rate = excluded.overtime_hour_rate`,
		r.ID, r.Year, r.Month, r.OvertimeHourRate.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetRun retrieves the run for a competence. Returns (nil, nil) when absent.
func (s *Store) GetRun(ctx context.Context, year, month int) (*payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r payroll.Run
	var rate, createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, year, month, overtime_hour_rate, created_at FROM payroll_runs WHERE year = ? AND month = ?",
		year, month,
	).Scan(&r.ID, &r.Year, &r.Month, &rate, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.OvertimeHourRate = parseDecimal(rate)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

// SaveLine inserts or updates one employee's line in a run.
func (s *Store) SaveLine(ctx context.Context, l payroll.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payroll_lines
		 (id, run_id, employee_id, base_salary, overtime_hours, overtime_hour_rate, overtime_amount, gross_total)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, employee_id) DO UPDATE SET
			base_salary = excluded.base_salary,
			overtime_hours = excluded.overtime_hours,
			overtime_hour_rate = excluded.overtime_hour_rate,
			overtime_amount = excluded.overtime_amount,
			gross_total = excluded.gross_total`,
		l.ID, l.RunID, l.EmployeeID,
		l.BaseSalary.String(), l.OvertimeHours.String(), l.OvertimeHourRate.String(),
		l.OvertimeAmount.String(), l.GrossTotal.String(),
	)
	return err
}

// ListLines returns a run's lines.
func (s *Store) ListLines(ctx context.Context, runID string) ([]payroll.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, employee_id, base_salary, overtime_hours, overtime_hour_rate, overtime_amount, gross_total
		 FROM payroll_lines WHERE run_id = ? ORDER BY employee_id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []payroll.Line
	for rows.Next() {
		var l payroll.Line
		var base, hours, rate, amount, gross string
		if err := rows.Scan(&l.ID, &l.RunID, &l.EmployeeID, &base, &hours, &rate, &amount, &gross); err != nil {
			return nil, err
		}
		l.BaseSalary = parseDecimal(base)
		l.OvertimeHours = parseDecimal(hours)
		l.OvertimeHourRate = parseDecimal(rate)
		l.OvertimeAmount = parseDecimal(amount)
		l.GrossTotal = parseDecimal(gross)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// =============================================================================
// COMPLIANCE SNAPSHOT (compliance.DataSource interface)
// =============================================================================

// LoadComplianceData assembles the yearly snapshot: tables resolved at
// January 1st plus every record dated in the year. Missing tables load
// as nil; the checks flag them.
func (s *Store) LoadComplianceData(ctx context.Context, year int) (*compliance.Records, error) {
	target := tax.Date(year, 1, 1)
	records := &compliance.Records{Year: year, Employees: make(map[string]payroll.Employee)}

	pension, err := s.ResolveVersion(ctx, tax.KindPension, target)
	if err != nil && !tax.IsNotFound(err) {
		return nil, err
	}
	records.Pension = pension

	withholding, err := s.ResolveVersion(ctx, tax.KindWithholding, target)
	if err != nil && !tax.IsNotFound(err) {
		return nil, err
	}
	records.Withholding = withholding

	cfg, err := s.ResolveDependentDeduction(ctx, target)
	if err != nil && !tax.IsNotFound(err) {
		return nil, err
	}
	records.DependentConfig = cfg

	employees, err := s.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range employees {
		records.Employees[e.ID] = e
	}

	if records.Vacations, err = s.ListVacations(ctx, year); err != nil {
		return nil, err
	}
	if records.Thirteenths, err = s.ListThirteenths(ctx, year); err != nil {
		return nil, err
	}
	if records.Terminations, err = s.ListTerminations(ctx, year); err != nil {
		return nil, err
	}
	if records.Leaves, err = s.ListLeaves(ctx, year); err != nil {
		return nil, err
	}
	return records, nil
}

// =============================================================================
// ESTIMATE COLUMN HELPERS
// =============================================================================

type estimateValues struct {
	pensionEffective     sql.NullString
	withholdingEffective sql.NullString
	pension              sql.NullString
	withholding          sql.NullString
	net                  sql.NullString
}

func estimateColumns(e *payroll.DiscountEstimate) estimateValues {
	if e == nil {
		return estimateValues{}
	}
	return estimateValues{
		pensionEffective:     sql.NullString{String: e.PensionEffective.Format(dateOnly), Valid: true},
		withholdingEffective: sql.NullString{String: e.WithholdingEffective.Format(dateOnly), Valid: true},
		pension:              sql.NullString{String: e.Pension.String(), Valid: true},
		withholding:          sql.NullString{String: e.Withholding.String(), Valid: true},
		net:                  sql.NullString{String: e.Net.String(), Valid: true},
	}
}

type estimateScan struct {
	pensionEffective     sql.NullString
	withholdingEffective sql.NullString
	pension              sql.NullString
	withholding          sql.NullString
	net                  sql.NullString
}

// estimate rebuilds the persisted estimate, or nil when the record was
// saved without one.
func (e estimateScan) estimate() *payroll.DiscountEstimate {
	if !e.pension.Valid {
		return nil
	}

	est := &payroll.DiscountEstimate{
		Pension:     parseDecimal(e.pension.String),
		Withholding: parseDecimal(e.withholding.String),
		Net:         parseDecimal(e.net.String),
	}
	if e.pensionEffective.Valid {
		est.PensionEffective, _ = time.Parse(dateOnly, e.pensionEffective.String)
	}
	if e.withholdingEffective.Valid {
		est.WithholdingEffective, _ = time.Parse(dateOnly, e.withholdingEffective.String)
	}
	return est
}
