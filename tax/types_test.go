package tax_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/tax"
)

func TestBracketVersionValidate(t *testing.T) {
	valid := tax.BracketVersion{
		Kind:          tax.KindPension,
		EffectiveFrom: tax.Date(2026, time.January, 1),
		Rows:          pensionRows2026(),
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name string
		rows []tax.BracketRow
	}{
		{"empty row set", nil},
		{
			"no top-open bracket",
			[]tax.BracketRow{
				{UpperBound: tax.Money("1000.00"), Rate: tax.Rate("0.10")},
				{UpperBound: tax.Money("2000.00"), Rate: tax.Rate("0.20")},
			},
		},
		{
			"top-open bracket not last",
			[]tax.BracketRow{
				{Rate: tax.Rate("0.20")},
				{UpperBound: tax.Money("1000.00"), Rate: tax.Rate("0.10")},
			},
		},
		{
			"two top-open brackets",
			[]tax.BracketRow{
				{UpperBound: tax.Money("1000.00"), Rate: tax.Rate("0.10")},
				{Rate: tax.Rate("0.15")},
				{Rate: tax.Rate("0.20")},
			},
		},
		{
			"bounds not ascending",
			[]tax.BracketRow{
				{UpperBound: tax.Money("2000.00"), Rate: tax.Rate("0.10")},
				{UpperBound: tax.Money("1000.00"), Rate: tax.Rate("0.20")},
				{Rate: tax.Rate("0.30")},
			},
		},
		{
			"duplicate bound",
			[]tax.BracketRow{
				{UpperBound: tax.Money("1000.00"), Rate: tax.Rate("0.10")},
				{UpperBound: tax.Money("1000.00"), Rate: tax.Rate("0.20")},
				{Rate: tax.Rate("0.30")},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := tax.BracketVersion{Kind: tax.KindWithholding, EffectiveFrom: valid.EffectiveFrom, Rows: tc.rows}
			err := v.Validate()
			require.Error(t, err)

			var invalid *tax.InvalidBracketSetError
			assert.ErrorAs(t, err, &invalid)
			assert.Equal(t, tax.KindWithholding, invalid.Kind)
		})
	}
}

func TestRoundMoneyBankers(t *testing.T) {
	// Round-half-to-even: ties go to the even neighbor.
	cases := map[string]string{
		"1.005":   "1.00",
		"1.015":   "1.02",
		"1.025":   "1.02",
		"248.599": "248.60",
		"-1.005":  "-1.00",
	}
	for in, want := range cases {
		got := tax.RoundMoney(money(t, in))
		assert.Equal(t, want, got.StringFixed(2), "RoundMoney(%s)", in)
	}
}

func TestCompetenceStart(t *testing.T) {
	got := tax.CompetenceStart(2026, 3)
	assert.Equal(t, tax.Date(2026, time.March, 1), got)
	assert.Equal(t, time.UTC, got.Location())
}
