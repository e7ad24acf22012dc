package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/tax"
)

// withholdingRows2026 is the statutory single-bracket table: the first
// bracket is exempt and each taxed bracket carries a deduction parcel.
func withholdingRows2026() []tax.BracketRow {
	return []tax.BracketRow{
		{UpperBound: tax.Money("2428.80"), Rate: tax.Rate("0")},
		{UpperBound: tax.Money("2826.65"), Rate: tax.Rate("0.075"), DeductionParcel: *tax.Money("182.16")},
		{UpperBound: tax.Money("3751.05"), Rate: tax.Rate("0.15"), DeductionParcel: *tax.Money("394.16")},
		{UpperBound: tax.Money("4664.68"), Rate: tax.Rate("0.225"), DeductionParcel: *tax.Money("675.49")},
		{Rate: tax.Rate("0.275"), DeductionParcel: *tax.Money("908.73")},
	}
}

var perDependent2026 = tax.Rate("189.59")

func TestComputeBracketDeduction_SingleBracketWholeBase(t *testing.T) {
	// GIVEN an adjusted base in the 15% bracket
	got := tax.ComputeBracketDeduction(money(t, "3000"), perDependent2026, 0, withholdingRows2026())

	// THEN the whole base is taxed at 15% minus that bracket's parcel,
	// not sliced: 3000*0.15 - 394.16 = 55.84
	if got.StringFixed(2) != "55.84" {
		t.Errorf("withholding = %s, want 55.84", got.StringFixed(2))
	}
}

func TestComputeBracketDeduction_DependentsShiftTheBracket(t *testing.T) {
	// GIVEN two dependents pulling the adjusted base into the 7.5% bracket
	got := tax.ComputeBracketDeduction(money(t, "3000"), perDependent2026, 2, withholdingRows2026())

	// THEN the lower bracket applies to the adjusted base:
	// (3000 - 2*189.59)*0.075 - 182.16 = 14.4015 -> 14.40
	if got.StringFixed(2) != "14.40" {
		t.Errorf("withholding = %s, want 14.40", got.StringFixed(2))
	}
}

func TestComputeBracketDeduction_ExemptBracket(t *testing.T) {
	// GIVEN an adjusted base inside the zero-rate bracket
	got := tax.ComputeBracketDeduction(money(t, "2000"), perDependent2026, 0, withholdingRows2026())

	if !got.IsZero() {
		t.Errorf("withholding = %s, want 0", got)
	}
}

func TestComputeBracketDeduction_ClampsNegativeToZero(t *testing.T) {
	// GIVEN a parcel larger than the bracket's tax
	rows := []tax.BracketRow{
		{UpperBound: tax.Money("1000.00"), Rate: tax.Rate("0.10"), DeductionParcel: *tax.Money("500.00")},
		{Rate: tax.Rate("0.20")},
	}

	// WHEN the raw value goes negative (900*0.10 - 500)
	got := tax.ComputeBracketDeduction(money(t, "900"), decimal.Zero, 0, rows)

	// THEN the result clamps to zero
	if !got.IsZero() {
		t.Errorf("withholding = %s, want 0", got)
	}
}

func TestComputeBracketDeduction_DependentsExhaustBase(t *testing.T) {
	// GIVEN enough dependents to zero out the adjusted base
	got := tax.ComputeBracketDeduction(money(t, "1000"), perDependent2026, 10, withholdingRows2026())

	if !got.IsZero() {
		t.Errorf("withholding = %s, want 0", got)
	}
}

func TestComputeBracketDeduction_NonPositiveBase(t *testing.T) {
	got := tax.ComputeBracketDeduction(decimal.Zero, perDependent2026, 0, withholdingRows2026())
	if !got.IsZero() {
		t.Errorf("withholding = %s, want 0", got)
	}
}

func TestComputeBracketDeduction_NoMatchingRow(t *testing.T) {
	// GIVEN a malformed table with no open bracket covering the base
	rows := []tax.BracketRow{
		{UpperBound: tax.Money("1000.00"), Rate: tax.Rate("0.10")},
	}

	got := tax.ComputeBracketDeduction(money(t, "5000"), decimal.Zero, 0, rows)
	if !got.IsZero() {
		t.Errorf("withholding = %s, want 0", got)
	}
}
