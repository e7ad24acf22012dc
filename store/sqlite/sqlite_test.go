package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/tax"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func pensionVersion(year int) tax.BracketVersion {
	return tax.BracketVersion{
		Kind:          tax.KindPension,
		EffectiveFrom: tax.Date(year, time.January, 1),
		Rows: []tax.BracketRow{
			{UpperBound: tax.Money("1621.00"), Rate: tax.Rate("0.075")},
			{UpperBound: tax.Money("2902.84"), Rate: tax.Rate("0.09")},
			{Rate: tax.Rate("0.14")},
		},
	}
}

func withholdingVersion(year int) tax.BracketVersion {
	return tax.BracketVersion{
		Kind:          tax.KindWithholding,
		EffectiveFrom: tax.Date(year, time.January, 1),
		Rows: []tax.BracketRow{
			{UpperBound: tax.Money("2428.80"), Rate: tax.Rate("0")},
			{UpperBound: tax.Money("2826.65"), Rate: tax.Rate("0.075"), DeductionParcel: *tax.Money("182.16")},
			{Rate: tax.Rate("0.275"), DeductionParcel: *tax.Money("908.73")},
		},
	}
}

func TestResolveVersionEffectiveDating(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.ResolveVersion(ctx, tax.KindPension, tax.Date(2026, time.June, 1))
	assert.ErrorIs(t, err, tax.ErrNoBracketVersion)

	require.NoError(t, store.ReplaceVersion(ctx, pensionVersion(2025)))
	require.NoError(t, store.ReplaceVersion(ctx, pensionVersion(2026)))

	// Mid-2025 resolves the 2025 version; 2026 and later the 2026 one.
	v, err := store.ResolveVersion(ctx, tax.KindPension, tax.Date(2025, time.June, 15))
	require.NoError(t, err)
	assert.Equal(t, tax.Date(2025, time.January, 1), v.EffectiveFrom)

	v, err = store.ResolveVersion(ctx, tax.KindPension, tax.Date(2027, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, tax.Date(2026, time.January, 1), v.EffectiveFrom)

	// Row order and the open bracket survive the round trip.
	require.Len(t, v.Rows, 3)
	assert.Equal(t, "1621", v.Rows[0].UpperBound.String())
	assert.Equal(t, "0.075", v.Rows[0].Rate.String())
	assert.Nil(t, v.Rows[2].UpperBound)

	_, err = store.ResolveVersion(ctx, tax.KindPension, tax.Date(2024, time.June, 1))
	assert.ErrorIs(t, err, tax.ErrNoBracketVersion)
}

func TestReplaceVersionSwapsRowSet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.ReplaceVersion(ctx, pensionVersion(2026)))

	corrected := pensionVersion(2026)
	corrected.Rows = []tax.BracketRow{
		{UpperBound: tax.Money("1700.00"), Rate: tax.Rate("0.08")},
		{Rate: tax.Rate("0.15")},
	}
	require.NoError(t, store.ReplaceVersion(ctx, corrected))

	v, err := store.ResolveVersion(ctx, tax.KindPension, tax.Date(2026, time.June, 1))
	require.NoError(t, err)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "1700", v.Rows[0].UpperBound.String())

	versions, err := store.ListVersions(ctx, tax.KindPension)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestReplaceVersionValidates(t *testing.T) {
	store := newTestStore(t)

	bad := pensionVersion(2026)
	bad.Rows = bad.Rows[:2] // no top-open bracket

	err := store.ReplaceVersion(context.Background(), bad)
	require.Error(t, err)
	var invalid *tax.InvalidBracketSetError
	assert.ErrorAs(t, err, &invalid)
}

func TestListVersionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, year := range []int{2024, 2026, 2025} {
		require.NoError(t, store.ReplaceVersion(ctx, pensionVersion(year)))
	}

	versions, err := store.ListVersions(ctx, tax.KindPension)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 2026, versions[0].EffectiveFrom.Year())
	assert.Equal(t, 2024, versions[2].EffectiveFrom.Year())
}

func TestDependentDeductionResolution(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.ResolveDependentDeduction(ctx, tax.Date(2026, time.June, 1))
	assert.ErrorIs(t, err, tax.ErrNoDependentDeduction)

	require.NoError(t, store.SaveDependentDeduction(ctx, tax.DependentDeduction{
		EffectiveFrom: tax.Date(2025, time.January, 1),
		PerDependent:  tax.Rate("180.00"),
	}))
	require.NoError(t, store.SaveDependentDeduction(ctx, tax.DependentDeduction{
		EffectiveFrom: tax.Date(2026, time.January, 1),
		PerDependent:  tax.Rate("189.59"),
	}))

	cfg, err := store.ResolveDependentDeduction(ctx, tax.Date(2026, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, "189.59", cfg.PerDependent.String())
	assert.Equal(t, tax.Date(2026, time.January, 1), cfg.EffectiveFrom)
}

func TestReplaceAllPersistsEverything(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cfg := &tax.DependentDeduction{EffectiveFrom: tax.Date(2026, time.January, 1), PerDependent: tax.Rate("189.59")}
	err := store.ReplaceAll(ctx, []tax.BracketVersion{pensionVersion(2026), withholdingVersion(2026)}, cfg)
	require.NoError(t, err)

	for _, kind := range tax.Kinds {
		v, err := store.ResolveVersion(ctx, kind, tax.Date(2026, time.June, 1))
		require.NoError(t, err)
		assert.Equal(t, kind, v.Kind)
		assert.NoError(t, v.Validate())
	}

	got, err := store.ResolveDependentDeduction(ctx, tax.Date(2026, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, "189.59", got.PerDependent.String())
}

func TestReplaceAllRefusesInvalidBatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	bad := withholdingVersion(2026)
	bad.Rows = nil

	err := store.ReplaceAll(ctx, []tax.BracketVersion{pensionVersion(2026), bad}, nil)
	require.Error(t, err)

	// The valid sibling was not written either.
	_, err = store.ResolveVersion(ctx, tax.KindPension, tax.Date(2026, time.June, 1))
	assert.ErrorIs(t, err, tax.ErrNoBracketVersion)
}
