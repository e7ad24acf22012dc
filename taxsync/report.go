package taxsync

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// REPORT - deterministic rendering of a synchronization result
// =============================================================================

// renderReport turns a result into the fixed-order lines shown by the
// CLI and returned by the HTTP endpoint. Ordering follows tax.Kinds so
// the same result always renders identically.
func renderReport(res *Result, apply bool) []string {
	lines := []string{
		fmt.Sprintf("Tax table synchronization - target year %d", res.TargetYear),
		fmt.Sprintf("Suggested effective date: %s", tax.Date(res.TargetYear, 1, 1).Format("2006-01-02")),
		"",
	}

	for _, kind := range tax.Kinds {
		if errText, failed := res.Errors[kind]; failed {
			lines = append(lines,
				fmt.Sprintf("[%s] extraction FAILED", kind),
				fmt.Sprintf("  %s", errText),
				"")
			continue
		}

		ext := res.Extracted[kind]
		lines = append(lines, fmt.Sprintf("[%s] source: %s (%d rows)", kind, res.SourceUsed[kind], len(ext.Rows)))
		for _, row := range ext.Rows {
			lines = append(lines, "  "+formatRow(kind, row))
		}
		if ext.DependentDeduction != nil {
			lines = append(lines, fmt.Sprintf("  dependent deduction: R$ %s/month", FormatDecimalBR(*ext.DependentDeduction)))
		}
		lines = append(lines, "")
	}

	switch {
	case res.Applied:
		lines = append(lines, "Tables persisted.")
	case apply:
		lines = append(lines, "Apply REFUSED: no changes were persisted.")
	default:
		lines = append(lines, "Dry-run: no changes were persisted.")
	}
	return lines
}

func formatRow(kind tax.Kind, row tax.BracketRow) string {
	bound := "above the previous bracket (open)"
	if row.UpperBound != nil {
		bound = "up to R$ " + FormatDecimalBR(*row.UpperBound)
	}

	s := fmt.Sprintf("%s -> %s", bound, formatRate(row.Rate))
	if kind == tax.KindWithholding && !row.DeductionParcel.IsZero() {
		s += fmt.Sprintf(", deduct R$ %s", FormatDecimalBR(row.DeductionParcel))
	}
	return s
}

// formatRate renders a rate fraction as a pt-BR percentage: 0.075 -> "7,5%".
func formatRate(rate decimal.Decimal) string {
	s := rate.Mul(oneHundred).String()
	return strings.ReplaceAll(s, ".", ",") + "%"
}
