package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

func TestExpectedFineRate(t *testing.T) {
	cases := map[payroll.TerminationType]string{
		payroll.TerminationWithoutCause: "0.4",
		payroll.TerminationAgreement:    "0.2",
		payroll.TerminationWithCause:    "0",
		payroll.TerminationResignation:  "0",
	}
	for typ, want := range cases {
		if got := payroll.ExpectedFineRate(typ).String(); got != want {
			t.Errorf("ExpectedFineRate(%s) = %s, want %s", typ, got, want)
		}
	}
}

func TestComputeTerminationFine_WithoutCause(t *testing.T) {
	// GIVEN a 10000.00 fund balance on a without-cause termination
	res := payroll.ComputeTerminationFine(money(t, "10000.00"), payroll.TerminationWithoutCause, nil)

	// THEN the 40% statutory fine applies
	if res.Rate.String() != "0.4" {
		t.Errorf("rate = %s, want 0.4", res.Rate)
	}
	if res.Fine == nil {
		t.Fatal("fine = nil, want 4000.00")
	}
	assertMoney(t, "fine", *res.Fine, "4000.00")
}

func TestComputeTerminationFine_Agreement(t *testing.T) {
	res := payroll.ComputeTerminationFine(money(t, "10000.00"), payroll.TerminationAgreement, nil)

	if res.Fine == nil {
		t.Fatal("fine = nil, want 2000.00")
	}
	assertMoney(t, "fine", *res.Fine, "2000.00")
}

func TestComputeTerminationFine_OverrideRate(t *testing.T) {
	// GIVEN a manual rate replacing the type-derived one
	override := money(t, "0.5")
	res := payroll.ComputeTerminationFine(money(t, "1000.00"), payroll.TerminationResignation, &override)

	if res.Rate.String() != "0.5" {
		t.Errorf("rate = %s, want 0.5", res.Rate)
	}
	if res.Fine == nil {
		t.Fatal("fine = nil, want 500.00")
	}
	assertMoney(t, "fine", *res.Fine, "500.00")
}

func TestComputeTerminationFine_NoEstimate(t *testing.T) {
	// Resignation carries no fine rate, so no estimate exists.
	res := payroll.ComputeTerminationFine(money(t, "10000.00"), payroll.TerminationResignation, nil)
	if res.Fine != nil {
		t.Errorf("fine = %s, want nil", res.Fine)
	}

	// A zero balance never yields an estimate either.
	res = payroll.ComputeTerminationFine(decimal.Zero, payroll.TerminationWithoutCause, nil)
	if res.Fine != nil {
		t.Errorf("fine = %s, want nil", res.Fine)
	}
}
