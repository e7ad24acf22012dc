/*
seed.go - Demo data loader for testing and demonstrations

PURPOSE:
  Populates the database with a known-good statutory table set and a
  small employee roster so the API can be exercised without running a
  synchronization against the official portals first.

WHAT IT LOADS:
  1. Both bracket tables effective 2026-01-01 plus the dependent
     deduction, via the same ReplaceAll path a sync apply uses
  2. Three employees with salaries and dependents

NOTE:
  The seed overwrites the 2026-01-01 versions if present. Only use in
  development/demo environments.

SEE ALSO:
  - handlers.go: LoadSeed route registration
  - factory/tables.go: the document format reused here
*/
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tax"
)

func seedTables() ([]tax.BracketVersion, *tax.DependentDeduction, error) {
	doc, err := factory.ParseTables([]byte(seedTableDocument))
	if err != nil {
		return nil, nil, err
	}
	return doc.Build()
}

// seedTableDocument is the 2026 statutory table set in the manual-entry
// document format.
const seedTableDocument = `{
  "effective_from": "2026-01-01",
  "dependent_deduction": "189.59",
  "tables": {
    "pension": [
      {"upper_bound": "1621.00", "rate": "0.075"},
      {"upper_bound": "2902.84", "rate": "0.09"},
      {"upper_bound": "4354.27", "rate": "0.12"},
      {"rate": "0.14"}
    ],
    "withholding": [
      {"upper_bound": "2428.80", "rate": "0"},
      {"upper_bound": "2826.65", "rate": "0.075", "deduction_parcel": "182.16"},
      {"upper_bound": "3751.05", "rate": "0.15", "deduction_parcel": "394.16"},
      {"upper_bound": "4664.68", "rate": "0.225", "deduction_parcel": "675.49"},
      {"rate": "0.275", "deduction_parcel": "908.73"}
    ]
  }
}`

// LoadSeed loads the demo tables and roster.
func (h *Handler) LoadSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	versions, cfg, err := seedTables()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Seed tables are malformed", err)
		return
	}
	if err := h.Store.ReplaceAll(ctx, versions, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed tables", err)
		return
	}

	hired := tax.Date(2024, time.March, 1)
	roster := []struct {
		employee payroll.Employee
		salary   string
	}{
		{payroll.Employee{ID: uuid.NewString(), Name: "Ana Souza", CPF: "39053344705", HiredAt: &hired, Active: true, Dependents: 2}, "4200.00"},
		{payroll.Employee{ID: uuid.NewString(), Name: "Bruno Lima", CPF: "12345678909", HiredAt: &hired, Active: true, Dependents: 0}, "1685.00"},
		{payroll.Employee{ID: uuid.NewString(), Name: "Carla Mendes", CPF: "98765432100", HiredAt: &hired, Active: true, Dependents: 1}, "3000.00"},
	}

	for _, entry := range roster {
		if err := h.Store.SaveEmployee(ctx, entry.employee); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed employee", err)
			return
		}
		salary, _ := decimal.NewFromString(entry.salary)
		if err := h.Store.SaveSalaryChange(ctx, payroll.SalaryChange{
			EmployeeID:    entry.employee.ID,
			EffectiveFrom: *entry.employee.HiredAt,
			BaseSalary:    salary,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed salary", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"tables_effective": "2026-01-01",
		"employees":        len(roster),
	})
}
