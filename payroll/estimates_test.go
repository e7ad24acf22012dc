package payroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tax"
	"github.com/warp/payroll-engine/tax/store"
)

// seededStore returns a memory store carrying the 2026 tables for both
// tax kinds plus the dependent-deduction config.
func seededStore(t *testing.T) *store.Memory {
	t.Helper()

	m := store.NewMemory()
	versions := []tax.BracketVersion{
		{
			Kind:          tax.KindPension,
			EffectiveFrom: tax.Date(2026, time.January, 1),
			Rows: []tax.BracketRow{
				{UpperBound: tax.Money("1621.00"), Rate: tax.Rate("0.075")},
				{UpperBound: tax.Money("2902.84"), Rate: tax.Rate("0.09")},
				{UpperBound: tax.Money("4354.27"), Rate: tax.Rate("0.12")},
				{Rate: tax.Rate("0.14")},
			},
		},
		{
			Kind:          tax.KindWithholding,
			EffectiveFrom: tax.Date(2026, time.January, 1),
			Rows: []tax.BracketRow{
				{UpperBound: tax.Money("2428.80"), Rate: tax.Rate("0")},
				{UpperBound: tax.Money("2826.65"), Rate: tax.Rate("0.075"), DeductionParcel: *tax.Money("182.16")},
				{UpperBound: tax.Money("3751.05"), Rate: tax.Rate("0.15"), DeductionParcel: *tax.Money("394.16")},
				{UpperBound: tax.Money("4664.68"), Rate: tax.Rate("0.225"), DeductionParcel: *tax.Money("675.49")},
				{Rate: tax.Rate("0.275"), DeductionParcel: *tax.Money("908.73")},
			},
		},
	}
	cfg := &tax.DependentDeduction{EffectiveFrom: tax.Date(2026, time.January, 1), PerDependent: tax.Rate("189.59")}
	if err := m.ReplaceAll(context.Background(), versions, cfg); err != nil {
		t.Fatalf("seed tables: %v", err)
	}
	return m
}

func TestEstimate_PensionThenWithholding(t *testing.T) {
	// GIVEN the 2026 tables and a 3000.00 gross with no dependents
	est := payroll.NewEstimator(seededStore(t))

	got, err := est.Estimate(context.Background(), money(t, "3000.00"), tax.Date(2026, time.June, 1), 0)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got == nil {
		t.Fatal("estimate = nil, want values")
	}

	// THEN the pension applies to the gross and the withholding to the
	// gross minus pension: 2751.40*0.075 - 182.16 = 24.195 -> 24.20
	assertMoney(t, "pension", got.Pension, "248.60")
	assertMoney(t, "withholding", got.Withholding, "24.20")
	assertMoney(t, "net", got.Net, "2727.20")
	if got.PensionEffective != tax.Date(2026, time.January, 1) {
		t.Errorf("pension effective = %s, want 2026-01-01", got.PensionEffective)
	}
}

func TestEstimate_DependentsReduceWithholding(t *testing.T) {
	est := payroll.NewEstimator(seededStore(t))

	none, err := est.Estimate(context.Background(), money(t, "4000.00"), tax.Date(2026, time.June, 1), 0)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	two, err := est.Estimate(context.Background(), money(t, "4000.00"), tax.Date(2026, time.June, 1), 2)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	if !two.Withholding.LessThan(none.Withholding) {
		t.Errorf("withholding with dependents %s is not below %s", two.Withholding, none.Withholding)
	}
	if !two.Pension.Equal(none.Pension) {
		t.Errorf("pension changed with dependents: %s vs %s", two.Pension, none.Pension)
	}
}

func TestEstimate_MissingTablesMeansNoEstimate(t *testing.T) {
	// GIVEN an empty store
	est := payroll.NewEstimator(store.NewMemory())

	// THEN the estimate is simply absent, never an error
	got, err := est.Estimate(context.Background(), money(t, "3000.00"), tax.Date(2026, time.June, 1), 0)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got != nil {
		t.Errorf("estimate = %+v, want nil", got)
	}
}

func TestEstimate_DateBeforeTables(t *testing.T) {
	est := payroll.NewEstimator(seededStore(t))

	got, err := est.Estimate(context.Background(), money(t, "3000.00"), tax.Date(2025, time.June, 1), 0)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got != nil {
		t.Errorf("estimate = %+v, want nil before any table is effective", got)
	}
}
