package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// TERMINATION - severance-fund fine
// =============================================================================

var (
	fineRateWithoutCause = decimal.NewFromFloat(0.40)
	fineRateAgreement    = decimal.NewFromFloat(0.20)
)

// ExpectedFineRate returns the statutory severance-fund fine rate for a
// termination type: 40% without cause, 20% by mutual agreement, zero
// otherwise.
func ExpectedFineRate(t TerminationType) decimal.Decimal {
	switch t {
	case TerminationWithoutCause:
		return fineRateWithoutCause
	case TerminationAgreement:
		return fineRateAgreement
	default:
		return decimal.Zero
	}
}

// FineResult is the outcome of a termination fine calculation. Fine is nil
// when no estimate applies (zero balance or zero rate).
type FineResult struct {
	Rate decimal.Decimal
	Fine *decimal.Decimal
}

// ComputeTerminationFine computes the severance-fund fine for a balance
// and termination type. overrideRate, when non-nil, replaces the
// type-derived expected rate (manual entry path). The fine estimate only
// exists when both balance and rate are positive.
func ComputeTerminationFine(fgtsBalance decimal.Decimal, t TerminationType, overrideRate *decimal.Decimal) FineResult {
	rate := ExpectedFineRate(t)
	if overrideRate != nil {
		rate = *overrideRate
	}

	res := FineResult{Rate: rate}
	if fgtsBalance.IsPositive() && rate.IsPositive() {
		fine := fgtsBalance.Mul(rate).RoundBank(2)
		res.Fine = &fine
	}
	return res
}
