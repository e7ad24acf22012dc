/*
Package compliance runs advisory year-end checks over the payroll data.

PURPOSE:
  Given a snapshot of one year's records and the statutory tables active
  at its start, produce a report of issues (things that look wrong) and
  infos (things worth knowing). Checks are pure functions over the
  snapshot; nothing here mutates data.

REMEDIATION:
  The only automatic remediation is table synchronization: when the
  statutory tables for the year are missing or incomplete and the caller
  opted in, the engine invokes the remediator (a sync apply) and
  re-checks. Every other finding is advisory and left to a human.

KEY CONCEPTS IN THIS FILE (compliance.go):
  - Records: the immutable snapshot the checks read
  - Report: issues, infos and the overall OK flag
  - Engine: load snapshot -> run checks -> optional remediation -> re-check

SEE ALSO:
  - checks.go: the individual check functions
*/
package compliance

import (
	"context"
	"fmt"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// SNAPSHOT AND REPORT
// =============================================================================

// Records is the snapshot one compliance pass reads: the year's derived
// compensation records plus the tables resolved at January 1st. Nil
// table fields mean "not resolvable for the year".
type Records struct {
	Year int

	Pension         *tax.BracketVersion
	Withholding     *tax.BracketVersion
	DependentConfig *tax.DependentDeduction

	Employees    map[string]payroll.Employee
	Vacations    []payroll.VacationRecord
	Thirteenths  []payroll.ThirteenthRecord
	Terminations []payroll.TerminationRecord
	Leaves       []payroll.LeaveRecord
}

// EmployeeName resolves an employee ID for report text, falling back to
// the raw ID for records whose employee was since purged.
func (r *Records) EmployeeName(id string) string {
	if e, ok := r.Employees[id]; ok {
		return e.Name
	}
	return id
}

// Report is the outcome of one compliance pass. OK is true when no
// issues were found; infos never affect it.
type Report struct {
	Year       int
	OK         bool
	Remediated bool
	Issues     []string
	Infos      []string
}

// =============================================================================
// ENGINE
// =============================================================================

// DataSource loads the compliance snapshot for a year.
type DataSource interface {
	LoadComplianceData(ctx context.Context, year int) (*Records, error)
}

// Remediator fixes the statutory tables for a year, typically by running
// a synchronization apply.
type Remediator func(ctx context.Context, year int) error

// Engine wires the data source to the check list. Remediate may be nil,
// in which case remediation requests are reported but not acted on.
type Engine struct {
	Source    DataSource
	Remediate Remediator
}

func NewEngine(source DataSource, remediate Remediator) *Engine {
	return &Engine{Source: source, Remediate: remediate}
}

// Check runs every check for the year. With remediate=true and missing
// tables, the remediator is invoked once and the checks run again over a
// fresh snapshot; a failing remediation becomes an issue, never an error.
func (e *Engine) Check(ctx context.Context, year int, remediate bool) (*Report, error) {
	records, err := e.Source.LoadComplianceData(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("load compliance data for %d: %w", year, err)
	}

	report := runChecks(records)

	if remediate && e.Remediate != nil && tablesIncomplete(records) {
		if err := e.Remediate(ctx, year); err != nil {
			report.Issues = append(report.Issues, fmt.Sprintf("table remediation failed: %v", err))
			report.OK = false
			return report, nil
		}

		records, err = e.Source.LoadComplianceData(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("reload compliance data for %d: %w", year, err)
		}
		report = runChecks(records)
		report.Remediated = true
	}
	return report, nil
}

func runChecks(records *Records) *Report {
	report := &Report{Year: records.Year, OK: true}
	for _, check := range allChecks {
		issues, infos := check(records)
		report.Issues = append(report.Issues, issues...)
		report.Infos = append(report.Infos, infos...)
	}
	report.OK = len(report.Issues) == 0
	return report
}
