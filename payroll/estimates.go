/*
estimates.go - Discount estimation against the statutory tables

PURPOSE:
  Attaches pension and withholding discount estimates to a gross amount
  for a competence date. The estimates are didactic, not official: when a
  table is missing for the date the estimate is simply absent, never an
  error.

ORDER OF OPERATIONS:
  1. Pension contribution (progressive) on the gross.
  2. Withholding tax (bracket-deduction) on gross minus the pension
     estimate, using the dependents count and the dependent-deduction
     config active at the competence date.
  3. Net = gross - pension - withholding, only when both exist.

PRECONDITIONS:
  The pension estimate needs the pension bracket version. The withholding
  estimate needs its own bracket version AND the dependent-deduction
  config; either one missing suppresses it.
*/
package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/tax"
)

// DiscountEstimate carries the tax estimates attached to a gross amount.
// EffectiveFrom dates record which table versions produced the numbers.
type DiscountEstimate struct {
	PensionEffective     time.Time
	WithholdingEffective time.Time
	Pension              decimal.Decimal
	Withholding          decimal.Decimal
	Net                  decimal.Decimal
}

// Estimator resolves bracket versions at a point in time and computes
// discount estimates. Safe for concurrent use; it holds no state beyond
// the store handle.
type Estimator struct {
	Store tax.BracketStore
}

func NewEstimator(store tax.BracketStore) *Estimator {
	return &Estimator{Store: store}
}

// Estimate computes the discount estimate for a gross amount at a
// competence date. Returns (nil, nil) when the tables do not fully
// resolve - missing data means "no estimate", not failure. Store errors
// other than not-found are returned as-is.
func (e *Estimator) Estimate(ctx context.Context, gross decimal.Decimal, competence time.Time, dependents int) (*DiscountEstimate, error) {
	pension, err := e.Store.ResolveVersion(ctx, tax.KindPension, competence)
	if err != nil {
		if tax.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	withholding, err := e.Store.ResolveVersion(ctx, tax.KindWithholding, competence)
	if err != nil {
		if tax.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	cfg, err := e.Store.ResolveDependentDeduction(ctx, competence)
	if err != nil {
		if tax.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	pensionEst := tax.ComputeProgressive(gross, pension.Rows)
	withholdingEst := tax.ComputeBracketDeduction(
		gross.Sub(pensionEst), cfg.PerDependent, dependents, withholding.Rows)

	return &DiscountEstimate{
		PensionEffective:     pension.EffectiveFrom,
		WithholdingEffective: withholding.EffectiveFrom,
		Pension:              pensionEst,
		Withholding:          withholdingEst,
		Net:                  tax.RoundMoney(gross.Sub(pensionEst).Sub(withholdingEst)),
	}, nil
}
