package taxsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/tax"
	"github.com/warp/payroll-engine/tax/store"
)

// =============================================================================
// FIXTURES - shaped like the official pages, served from httptest
// =============================================================================

const pensionStructuredPage = `<html><body>
<table>
<tr><th>Salário de contribuição</th><th>Alíquota</th></tr>
<tr><td>Até R$ 1.621,00</td><td>7,5%</td></tr>
<tr><td>De R$ 1.621,01 até R$ 2.902,84</td><td>9%</td></tr>
<tr><td>De R$ 2.902,85 até R$ 4.354,27</td><td>12%</td></tr>
<tr><td>Acima de R$ 4.354,27</td><td>14%</td></tr>
</table>
</body></html>`

// Two data rows only: below the guard-rail, the chain must fall back.
const pensionShortStructuredPage = `<html><body>
<table>
<tr><th>Salário de contribuição</th><th>Alíquota</th></tr>
<tr><td>Até R$ 1.621,00</td><td>7,5%</td></tr>
<tr><td>Acima de R$ 1.621,00</td><td>14%</td></tr>
</table>
</body></html>`

const pensionNarrativePage = `<html><body>
<p>As faixas de contribuição foram reajustadas:</p>
<ul>
<li>• 7,5% para quem ganha até R$ 1.621,00</li>
<li>• 9% para salários de R$ 1.621,01 até R$ 2.902,84</li>
<li>• 12% para salários de R$ 2.902,85 até R$ 4.354,27</li>
<li>• 14% para quem ganha acima de R$ 4.354,27</li>
</ul>
</body></html>`

const withholdingStructuredPage = `<html><body>
<table>
<tr><th>Base de cálculo</th><th>Alíquota</th><th>Parcela a deduzir</th></tr>
<tr><td>Até R$ 2.428,80</td><td>0%</td><td>R$ 0,00</td></tr>
<tr><td>Até R$ 2.826,65</td><td>7,5%</td><td>R$ 182,16</td></tr>
<tr><td>Até R$ 3.751,05</td><td>15%</td><td>R$ 394,16</td></tr>
<tr><td>Até R$ 4.664,68</td><td>22,5%</td><td>R$ 675,49</td></tr>
<tr><td>Acima de R$ 4.664,68</td><td>27,5%</td><td>R$ 908,73</td></tr>
</table>
<p>Dedução mensal por dependente: R$ 189,59</p>
</body></html>`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestSynchronizer wires the provider chains at local fixture URLs.
// Empty URLs become dead endpoints so every tier stays reachable code.
func newTestSynchronizer(t *testing.T, st tax.SyncStore, pension, withholding [3]string) *Synchronizer {
	t.Helper()
	dead := serve(t, http.StatusNotFound, "not here").URL
	fill := func(urls [3]string) [3]string {
		for i, u := range urls {
			if u == "" {
				urls[i] = dead
			}
		}
		return urls
	}
	pension, withholding = fill(pension), fill(withholding)

	return &Synchronizer{
		Store:   st,
		Fetcher: NewFetcher(5 * time.Second),
		Providers: map[tax.Kind][]Provider{
			tax.KindPension:     NewProviderChain(tax.KindPension, pension[0], pension[1], pension[2]),
			tax.KindWithholding: NewProviderChain(tax.KindWithholding, withholding[0], withholding[1], withholding[2]),
		},
	}
}

// =============================================================================
// DRY-RUN AND FALLBACK
// =============================================================================

func TestRunDryRun(t *testing.T) {
	st := store.NewMemory()
	s := newTestSynchronizer(t, st,
		[3]string{serve(t, http.StatusOK, pensionStructuredPage).URL, "", ""},
		[3]string{serve(t, http.StatusOK, withholdingStructuredPage).URL, "", ""},
	)

	res, err := s.Run(context.Background(), 2026, false)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Empty(t, res.Errors)

	assert.Equal(t, SourceStructured, res.SourceUsed[tax.KindPension])
	require.Len(t, res.Extracted[tax.KindPension].Rows, 4)
	assert.Equal(t, "1621", res.Extracted[tax.KindPension].Rows[0].UpperBound.String())
	assert.Nil(t, res.Extracted[tax.KindPension].Rows[3].UpperBound)

	wh := res.Extracted[tax.KindWithholding]
	require.Len(t, wh.Rows, 5)
	assert.Equal(t, "182.16", wh.Rows[1].DeductionParcel.String())
	require.NotNil(t, wh.DependentDeduction)
	assert.Equal(t, "189.59", wh.DependentDeduction.String())

	assert.NotEmpty(t, res.ReportLines)

	// A dry-run never touches the store.
	_, err = st.ResolveVersion(context.Background(), tax.KindPension, tax.Date(2026, time.June, 1))
	assert.ErrorIs(t, err, tax.ErrNoBracketVersion)
}

func TestRunFallsBackWhenGuardRailTrips(t *testing.T) {
	// GIVEN a structured page with too few rows and a good narrative page
	st := store.NewMemory()
	s := newTestSynchronizer(t, st,
		[3]string{
			serve(t, http.StatusOK, pensionShortStructuredPage).URL,
			serve(t, http.StatusOK, pensionNarrativePage).URL,
			"",
		},
		[3]string{serve(t, http.StatusOK, withholdingStructuredPage).URL, "", ""},
	)

	res, err := s.Run(context.Background(), 2026, false)
	require.NoError(t, err)

	// THEN the chain skips the partial table and the narrative tier wins
	assert.Equal(t, SourceNarrative, res.SourceUsed[tax.KindPension])
	assert.Len(t, res.Extracted[tax.KindPension].Rows, 4)
	assert.Empty(t, res.Errors)
}

func TestRunChainExhaustedCollectsAllFailures(t *testing.T) {
	st := store.NewMemory()
	s := newTestSynchronizer(t, st,
		[3]string{serve(t, http.StatusOK, pensionStructuredPage).URL, "", ""},
		[3]string{"", "", ""}, // every withholding tier is dead
	)

	res, err := s.Run(context.Background(), 2026, false)
	require.NoError(t, err) // dry-run reports failures, never errors

	errText := res.Errors[tax.KindWithholding]
	assert.Contains(t, errText, SourceStructured)
	assert.Contains(t, errText, SourceNarrative)
	assert.Contains(t, errText, SourceDocument)
	assert.Contains(t, errText, " | ")
}

// =============================================================================
// APPLY SEMANTICS
// =============================================================================

func TestRunApplyPersistsBothKinds(t *testing.T) {
	st := store.NewMemory()
	s := newTestSynchronizer(t, st,
		[3]string{serve(t, http.StatusOK, pensionStructuredPage).URL, "", ""},
		[3]string{serve(t, http.StatusOK, withholdingStructuredPage).URL, "", ""},
	)

	res, err := s.Run(context.Background(), 2026, true)
	require.NoError(t, err)
	assert.True(t, res.Applied)

	ctx := context.Background()
	for _, kind := range tax.Kinds {
		v, err := st.ResolveVersion(ctx, kind, tax.Date(2026, time.June, 1))
		require.NoError(t, err)
		assert.Equal(t, tax.Date(2026, time.January, 1), v.EffectiveFrom)
		require.NoError(t, v.Validate())
	}

	cfg, err := st.ResolveDependentDeduction(ctx, tax.Date(2026, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, "189.59", cfg.PerDependent.String())
}

func TestRunApplyRefusedWhenOneKindFails(t *testing.T) {
	// GIVEN a healthy pension chain and a fully dead withholding chain
	st := store.NewMemory()
	s := newTestSynchronizer(t, st,
		[3]string{serve(t, http.StatusOK, pensionStructuredPage).URL, "", ""},
		[3]string{"", "", ""},
	)

	// WHEN an apply is requested
	res, err := s.Run(context.Background(), 2026, true)

	// THEN the whole apply is refused and NOTHING is persisted, not even
	// the kind that extracted cleanly
	require.Error(t, err)
	assert.ErrorIs(t, err, tax.ErrApplyRefused)

	var refused *tax.ApplyRefusedError
	require.ErrorAs(t, err, &refused)
	assert.Contains(t, refused.Errors, tax.KindWithholding)

	assert.False(t, res.Applied)
	_, err = st.ResolveVersion(context.Background(), tax.KindPension, tax.Date(2026, time.June, 1))
	assert.ErrorIs(t, err, tax.ErrNoBracketVersion)
}

func TestRunApplyRequiresDependentDeduction(t *testing.T) {
	// GIVEN a withholding page whose dependent-deduction phrase is missing
	page := `<html><body><table>
<tr><td>Até R$ 2.428,80</td><td>0%</td><td>R$ 0,00</td></tr>
<tr><td>Até R$ 2.826,65</td><td>7,5%</td><td>R$ 182,16</td></tr>
<tr><td>Até R$ 3.751,05</td><td>15%</td><td>R$ 394,16</td></tr>
<tr><td>Acima de R$ 3.751,05</td><td>22,5%</td><td>R$ 675,49</td></tr>
</table></body></html>`

	st := store.NewMemory()
	s := newTestSynchronizer(t, st,
		[3]string{serve(t, http.StatusOK, pensionStructuredPage).URL, "", ""},
		[3]string{serve(t, http.StatusOK, page).URL, "", ""},
	)

	res, err := s.Run(context.Background(), 2026, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, tax.ErrApplyRefused)
	assert.Contains(t, res.Errors[tax.KindWithholding], "dependent deduction not found")
}
