/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements persistence for the whole engine: effective-dated tax
  bracket versions, the dependent-deduction config, the employee
  registry with its salary history, the derived compensation records,
  and monthly payroll runs.

INTERFACES IMPLEMENTED:
  tax.BracketStore:      version resolution and atomic replace
  tax.SyncStore:         all-or-nothing multi-kind apply
  compliance.DataSource: yearly snapshot for the check engine

EFFECTIVE DATING:
  Bracket versions and salary changes resolve the same way: the row with
  the greatest effective_from at or before the target date wins. Older
  rows are never touched, so history stays auditable.

ATOMIC REPLACE:
  Re-syncing a (kind, effective_from) deletes the old row set and
  inserts the new one inside a single transaction. ReplaceAll extends
  the same transaction across both tax kinds plus the dependent config,
  so an apply either fully commits or leaves the store untouched.

CONCURRENCY:
  sync.RWMutex on top of SQLite opened in WAL mode. Multiple readers,
  one writer.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - tax/store.go: interface definitions and resolution contract
  - tax/store/memory.go: in-memory implementation for tests
  - records.go: employee registry, derived records, payroll runs
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/tax"
)

const dateOnly = "2006-01-02"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ tax.SyncStore = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Tax bracket rows, one row set per (kind, effective_from).
	-- position preserves the statutory order; the top-open bracket
	-- stores NULL upper_bound and is always last.
	CREATE TABLE IF NOT EXISTS tax_brackets (
		kind TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		position INTEGER NOT NULL,
		upper_bound TEXT,
		rate TEXT NOT NULL,
		deduction_parcel TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (kind, effective_from, position)
	);

	CREATE INDEX IF NOT EXISTS idx_tax_brackets_resolution
		ON tax_brackets(kind, effective_from DESC);

	-- Dependent-deduction config, effective-dated like brackets.
	CREATE TABLE IF NOT EXISTS dependent_deductions (
		effective_from TEXT PRIMARY KEY,
		per_dependent TEXT NOT NULL
	);

	-- Employee registry
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cpf TEXT NOT NULL DEFAULT '',
		hired_at TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		dependents INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- Effective-dated base salary history
	CREATE TABLE IF NOT EXISTS employee_salaries (
		employee_id TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		PRIMARY KEY (employee_id, effective_from)
	);

	CREATE INDEX IF NOT EXISTS idx_salaries_resolution
		ON employee_salaries(employee_id, effective_from DESC);

	-- Derived compensation records (immutable once written)
	CREATE TABLE IF NOT EXISTS vacation_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		pay_date TEXT,
		enjoyed_days INTEGER NOT NULL,
		sold_days INTEGER NOT NULL,
		base_salary TEXT NOT NULL,
		daily_rate TEXT NOT NULL,
		vacation_pay TEXT NOT NULL,
		vacation_third TEXT NOT NULL,
		sold_pay TEXT NOT NULL,
		sold_third TEXT NOT NULL,
		gross_total TEXT NOT NULL,
		est_pension_effective TEXT,
		est_withholding_effective TEXT,
		est_pension TEXT,
		est_withholding TEXT,
		est_net TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vacations_year
		ON vacation_records(year);
	CREATE INDEX IF NOT EXISTS idx_vacations_employee
		ON vacation_records(employee_id);

	CREATE TABLE IF NOT EXISTS thirteenth_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		payment_type TEXT NOT NULL,
		payment_month INTEGER NOT NULL,
		pay_date TEXT,
		months_worked INTEGER NOT NULL,
		base_salary TEXT NOT NULL,
		monthly_part TEXT NOT NULL,
		gross TEXT NOT NULL,
		est_pension_effective TEXT,
		est_withholding_effective TEXT,
		est_pension TEXT,
		est_withholding TEXT,
		est_net TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_thirteenths_year
		ON thirteenth_records(year);

	CREATE TABLE IF NOT EXISTS termination_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		type TEXT NOT NULL,
		notice TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		fgts_balance TEXT,
		fine_rate TEXT,
		fine_amount TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_terminations_date
		ON termination_records(date);

	CREATE TABLE IF NOT EXISTS leave_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		paid_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_start
		ON leave_records(start_date);

	-- Monthly payroll runs, one per competence
	CREATE TABLE IF NOT EXISTS payroll_runs (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		overtime_hour_rate TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		UNIQUE(year, month)
	);

	CREATE TABLE IF NOT EXISTS payroll_lines (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		overtime_hours TEXT NOT NULL DEFAULT '0',
		overtime_hour_rate TEXT NOT NULL DEFAULT '0',
		overtime_amount TEXT NOT NULL DEFAULT '0',
		gross_total TEXT NOT NULL,
		UNIQUE(run_id, employee_id)
	);

	CREATE INDEX IF NOT EXISTS idx_lines_run
		ON payroll_lines(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BRACKET STORE (tax.BracketStore interface)
// =============================================================================

// ResolveVersion returns the active version for a target date.
func (s *Store) ResolveVersion(ctx context.Context, kind tax.Kind, target time.Time) (*tax.BracketVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var effectiveFrom string
	err := s.db.QueryRowContext(ctx,
		`SELECT effective_from FROM tax_brackets
		 WHERE kind = ? AND effective_from <= ?
		 ORDER BY effective_from DESC LIMIT 1`,
		string(kind), target.Format(dateOnly),
	).Scan(&effectiveFrom)

	if err == sql.ErrNoRows {
		return nil, tax.ErrNoBracketVersion
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bracket version: %w", err)
	}

	return s.loadVersion(ctx, kind, effectiveFrom)
}

func (s *Store) loadVersion(ctx context.Context, kind tax.Kind, effectiveFrom string) (*tax.BracketVersion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT upper_bound, rate, deduction_parcel FROM tax_brackets
		 WHERE kind = ? AND effective_from = ?
		 ORDER BY position ASC`,
		string(kind), effectiveFrom,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load bracket rows: %w", err)
	}
	defer rows.Close()

	v := &tax.BracketVersion{Kind: kind}
	v.EffectiveFrom, _ = time.Parse(dateOnly, effectiveFrom)

	for rows.Next() {
		var upper sql.NullString
		var rate, parcel string
		if err := rows.Scan(&upper, &rate, &parcel); err != nil {
			return nil, fmt.Errorf("failed to scan bracket row: %w", err)
		}

		row := tax.BracketRow{Rate: parseDecimal(rate), DeductionParcel: parseDecimal(parcel)}
		if upper.Valid {
			d := parseDecimal(upper.String)
			row.UpperBound = &d
		}
		v.Rows = append(v.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(v.Rows) == 0 {
		return nil, tax.ErrNoBracketVersion
	}
	return v, nil
}

// ReplaceVersion atomically replaces the row set for the version's
// exact (kind, effective_from).
func (s *Store) ReplaceVersion(ctx context.Context, v tax.BracketVersion) error {
	if err := v.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := replaceVersionTx(ctx, sqlTx, v); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func replaceVersionTx(ctx context.Context, sqlTx *sql.Tx, v tax.BracketVersion) error {
	effectiveFrom := v.EffectiveFrom.Format(dateOnly)

	if _, err := sqlTx.ExecContext(ctx,
		"DELETE FROM tax_brackets WHERE kind = ? AND effective_from = ?",
		string(v.Kind), effectiveFrom,
	); err != nil {
		return fmt.Errorf("failed to delete old bracket rows: %w", err)
	}

	for i, row := range v.Rows {
		var upper *string
		if row.UpperBound != nil {
			u := row.UpperBound.String()
			upper = &u
		}
		if _, err := sqlTx.ExecContext(ctx,
			`INSERT INTO tax_brackets (kind, effective_from, position, upper_bound, rate, deduction_parcel)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			string(v.Kind), effectiveFrom, i, upper, row.Rate.String(), row.DeductionParcel.String(),
		); err != nil {
			return fmt.Errorf("failed to insert bracket row: %w", err)
		}
	}
	return nil
}

// ListVersions returns all versions for a kind, newest first.
func (s *Store) ListVersions(ctx context.Context, kind tax.Kind) ([]tax.BracketVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT effective_from FROM tax_brackets
		 WHERE kind = ? ORDER BY effective_from DESC`,
		string(kind),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var versions []tax.BracketVersion
	for _, d := range dates {
		v, err := s.loadVersion(ctx, kind, d)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, nil
}

// ResolveDependentDeduction returns the config active at the target date.
func (s *Store) ResolveDependentDeduction(ctx context.Context, target time.Time) (*tax.DependentDeduction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var effectiveFrom, perDependent string
	err := s.db.QueryRowContext(ctx,
		`SELECT effective_from, per_dependent FROM dependent_deductions
		 WHERE effective_from <= ?
		 ORDER BY effective_from DESC LIMIT 1`,
		target.Format(dateOnly),
	).Scan(&effectiveFrom, &perDependent)

	if err == sql.ErrNoRows {
		return nil, tax.ErrNoDependentDeduction
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dependent deduction: %w", err)
	}

	cfg := &tax.DependentDeduction{PerDependent: parseDecimal(perDependent)}
	cfg.EffectiveFrom, _ = time.Parse(dateOnly, effectiveFrom)
	return cfg, nil
}

// SaveDependentDeduction inserts or updates the config for its exact
// effective date.
func (s *Store) SaveDependentDeduction(ctx context.Context, cfg tax.DependentDeduction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dependent_deductions (effective_from, per_dependent)
		 VALUES (?, ?)
		 ON CONFLICT(effective_from) DO UPDATE SET
			per_dependent = excluded.per_dependent`,
		cfg.EffectiveFrom.Format(dateOnly), cfg.PerDependent.String(),
	)
	return err
}

// =============================================================================
// SYNC STORE (tax.SyncStore interface)
// =============================================================================

// ReplaceAll replaces every given version and the dependent config as
// one atomic unit.
func (s *Store) ReplaceAll(ctx context.Context, versions []tax.BracketVersion, cfg *tax.DependentDeduction) error {
	for _, v := range versions {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, v := range versions {
		if err := replaceVersionTx(ctx, sqlTx, v); err != nil {
			return err
		}
	}

	if cfg != nil {
		if _, err := sqlTx.ExecContext(ctx,
			`INSERT INTO dependent_deductions (effective_from, per_dependent)
			 VALUES (?, ?)
			 ON CONFLICT(effective_from) DO UPDATE SET
				per_dependent = excluded.per_dependent`,
			cfg.EffectiveFrom.Format(dateOnly), cfg.PerDependent.String(),
		); err != nil {
			return fmt.Errorf("failed to save dependent deduction: %w", err)
		}
	}

	return sqlTx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func scanNullDecimal(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid {
		return nil
	}
	d := parseDecimal(ns.String)
	return &d
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateOnly), Valid: true}
}

func scanNullDate(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(dateOnly, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
