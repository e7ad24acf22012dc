package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func assertMoney(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if got.StringFixed(2) != want {
		t.Errorf("%s = %s, want %s", name, got.StringFixed(2), want)
	}
}

func TestComputeVacation_PartialWithSoldDays(t *testing.T) {
	// GIVEN a 1685.00 salary, 15 enjoyed days and 5 sold days
	a := payroll.ComputeVacation(money(t, "1685.00"), 15, 5)

	// THEN each component rounds at its own step and the gross is the
	// exact cent sum of the four rounded parts
	if a.DailyRate.String() != "56.1667" {
		t.Errorf("daily rate = %s, want 56.1667", a.DailyRate)
	}
	assertMoney(t, "vacation pay", a.VacationPay, "842.50")
	assertMoney(t, "vacation third", a.VacationBonusThird, "280.83")
	assertMoney(t, "sold pay", a.SoldPay, "280.83")
	assertMoney(t, "sold third", a.SoldBonusThird, "93.61")
	assertMoney(t, "gross total", a.GrossTotal, "1497.77")
}

func TestComputeVacation_FullMonth(t *testing.T) {
	// GIVEN the full 30 days with nothing sold
	a := payroll.ComputeVacation(money(t, "1685.00"), 30, 0)

	// THEN vacation pay equals the base and the third is base/3
	assertMoney(t, "vacation pay", a.VacationPay, "1685.00")
	assertMoney(t, "vacation third", a.VacationBonusThird, "561.67")
	assertMoney(t, "sold pay", a.SoldPay, "0.00")
	assertMoney(t, "sold third", a.SoldBonusThird, "0.00")
	assertMoney(t, "gross total", a.GrossTotal, "2246.67")
}

func TestComputeVacation_RoundSalary(t *testing.T) {
	// GIVEN a salary that divides evenly by 30
	a := payroll.ComputeVacation(money(t, "3000.00"), 20, 10)

	assertMoney(t, "vacation pay", a.VacationPay, "2000.00")
	assertMoney(t, "vacation third", a.VacationBonusThird, "666.67")
	assertMoney(t, "sold pay", a.SoldPay, "1000.00")
	assertMoney(t, "sold third", a.SoldBonusThird, "333.33")
	assertMoney(t, "gross total", a.GrossTotal, "4000.00")
}

func TestComputeVacation_NonPositiveBase(t *testing.T) {
	a := payroll.ComputeVacation(decimal.Zero, 30, 0)

	if !a.DailyRate.IsZero() || !a.GrossTotal.IsZero() {
		t.Errorf("zero base produced daily %s gross %s, want zeros", a.DailyRate, a.GrossTotal)
	}
}
