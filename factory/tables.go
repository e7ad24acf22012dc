/*
Package factory provides JSON to Go tax-table conversion.

PURPOSE:
  Converts JSON table documents into tax.BracketVersion values and the
  dependent-deduction config. This is the manual-entry path: when the
  official sources are down or a correction is needed, an operator can
  load the statutory tables from a JSON document without code changes.

WHY JSON?
  - Non-developers can enter the yearly tables
  - Easy integration with the admin endpoint and the CLI
  - Version control for table documents
  - One document carries both tax kinds plus the dependent config

JSON SCHEMA:
  {
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
        {"rate": "0.275", "deduction_parcel": "908.73"}
      ]
    }
  }

  A row without upper_bound is the top-open bracket and must be last.
  Rates are fractions ("0.075" for 7.5%). Amounts use machine notation
  with a dot decimal separator.

USAGE:
  doc, err := factory.ParseTables(jsonBytes)
  versions, cfg, err := doc.Build()
  store.ReplaceAll(ctx, versions, cfg)

SEE ALSO:
  - tax/types.go: BracketVersion and its Validate invariant
  - api/handlers.go: the manual-entry endpoint
  - cli/tables.go: the CLI entry point
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TableDocument is the JSON representation of one effective-dated table
// set for both tax kinds.
type TableDocument struct {
	EffectiveFrom      string               `json:"effective_from"`
	DependentDeduction string               `json:"dependent_deduction,omitempty"`
	Tables             map[string][]RowJSON `json:"tables"`
}

// RowJSON is one bracket row. A missing upper_bound marks the top-open
// bracket.
type RowJSON struct {
	UpperBound      string `json:"upper_bound,omitempty"`
	Rate            string `json:"rate"`
	DeductionParcel string `json:"deduction_parcel,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseTables parses a JSON table document.
func ParseTables(data []byte) (*TableDocument, error) {
	var doc TableDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse table document: %w", err)
	}
	return &doc, nil
}

// Build converts the document into validated bracket versions plus the
// dependent-deduction config (nil when the document omits it). Every
// version must satisfy the ordered-rows invariant or the whole document
// is rejected.
func (doc *TableDocument) Build() ([]tax.BracketVersion, *tax.DependentDeduction, error) {
	effective, err := time.Parse("2006-01-02", doc.EffectiveFrom)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid effective_from %q: %w", doc.EffectiveFrom, err)
	}

	var versions []tax.BracketVersion
	for _, kind := range tax.Kinds {
		rowsJSON, ok := doc.Tables[string(kind)]
		if !ok {
			continue
		}

		rows, err := buildRows(kind, rowsJSON)
		if err != nil {
			return nil, nil, err
		}

		v := tax.BracketVersion{Kind: kind, EffectiveFrom: effective, Rows: rows}
		if err := v.Validate(); err != nil {
			return nil, nil, err
		}
		versions = append(versions, v)
	}

	for name := range doc.Tables {
		if name != string(tax.KindPension) && name != string(tax.KindWithholding) {
			return nil, nil, fmt.Errorf("unknown table kind %q", name)
		}
	}
	if len(versions) == 0 {
		return nil, nil, fmt.Errorf("table document defines no tables")
	}

	var cfg *tax.DependentDeduction
	if doc.DependentDeduction != "" {
		per, err := decimal.NewFromString(doc.DependentDeduction)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid dependent_deduction %q: %w", doc.DependentDeduction, err)
		}
		cfg = &tax.DependentDeduction{EffectiveFrom: effective, PerDependent: per}
	}

	return versions, cfg, nil
}

func buildRows(kind tax.Kind, rowsJSON []RowJSON) ([]tax.BracketRow, error) {
	rows := make([]tax.BracketRow, 0, len(rowsJSON))
	for i, rj := range rowsJSON {
		rate, err := decimal.NewFromString(rj.Rate)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid rate %q: %w", kind, i, rj.Rate, err)
		}

		row := tax.BracketRow{Rate: rate}
		if rj.UpperBound != "" {
			upper, err := decimal.NewFromString(rj.UpperBound)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid upper_bound %q: %w", kind, i, rj.UpperBound, err)
			}
			row.UpperBound = &upper
		}
		if rj.DeductionParcel != "" {
			parcel, err := decimal.NewFromString(rj.DeductionParcel)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid deduction_parcel %q: %w", kind, i, rj.DeductionParcel, err)
			}
			row.DeductionParcel = parcel
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// ToDocument converts versions and config back to the JSON schema, for
// exporting the currently active tables.
func ToDocument(versions []tax.BracketVersion, cfg *tax.DependentDeduction) TableDocument {
	doc := TableDocument{Tables: make(map[string][]RowJSON)}

	for _, v := range versions {
		doc.EffectiveFrom = v.EffectiveFrom.Format("2006-01-02")

		rows := make([]RowJSON, 0, len(v.Rows))
		for _, row := range v.Rows {
			rj := RowJSON{Rate: row.Rate.String()}
			if row.UpperBound != nil {
				rj.UpperBound = row.UpperBound.String()
			}
			if !row.DeductionParcel.IsZero() {
				rj.DeductionParcel = row.DeductionParcel.String()
			}
			rows = append(rows, rj)
		}
		doc.Tables[string(v.Kind)] = rows
	}

	if cfg != nil {
		doc.DependentDeduction = cfg.PerDependent.String()
	}
	return doc
}
