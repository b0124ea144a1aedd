package token

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits_WholeAmount(t *testing.T) {
	units, err := ToBaseUnits(decimal.RequireFromString("100000"), 18)
	require.NoError(t, err)

	expected, _ := new(big.Int).SetString("100000000000000000000000", 10)
	assert.Equal(t, 0, units.Cmp(expected))
}

func TestToBaseUnits_FractionalAmount(t *testing.T) {
	units, err := ToBaseUnits(decimal.RequireFromString("0.5"), 18)
	require.NoError(t, err)

	expected, _ := new(big.Int).SetString("500000000000000000", 10)
	assert.Equal(t, 0, units.Cmp(expected))
}

func TestToBaseUnits_TooManyDecimalPlaces(t *testing.T) {
	// 19 fractional digits cannot be represented with 18 decimals.
	_, err := ToBaseUnits(decimal.RequireFromString("0.0000000000000000001"), 18)
	assert.Error(t, err)
}

func TestToBaseUnits_NegativeAmount(t *testing.T) {
	_, err := ToBaseUnits(decimal.RequireFromString("-1"), 18)
	assert.Error(t, err)
}

func TestCost_MatchesUnitPriceTimesQuantity(t *testing.T) {
	// Scenario from the storefront: unit price 100000, quantity 2 at 18
	// decimals must be exactly 200000 * 10^18 base units.
	units, err := Cost(decimal.RequireFromString("100000"), 2, 18)
	require.NoError(t, err)

	expected, _ := new(big.Int).SetString("200000000000000000000000", 10)
	assert.Equal(t, 0, units.Cmp(expected))
}

func TestRoundTrip_Exact(t *testing.T) {
	cases := []struct {
		price string
		qty   int64
	}{
		{"100000", 2},
		{"0.000000000000000001", 1},
		{"19.99", 3},
		{"123456789.123456789", 7},
		{"1", 1},
	}

	for _, tc := range cases {
		total := decimal.RequireFromString(tc.price).Mul(decimal.NewFromInt(tc.qty))

		units, err := Cost(decimal.RequireFromString(tc.price), tc.qty, 18)
		require.NoError(t, err, "price %s qty %d", tc.price, tc.qty)

		back := FromBaseUnits(units, 18)
		assert.True(t, total.Equal(back),
			"round trip for %s x %d: got %s, want %s", tc.price, tc.qty, back, total)
	}
}

func TestRoundTrip_NoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 style values that break float64 arithmetic must stay exact.
	price := decimal.RequireFromString("0.1")
	units, err := Cost(price, 3, 18)
	require.NoError(t, err)

	expected, _ := new(big.Int).SetString("300000000000000000", 10)
	assert.Equal(t, 0, units.Cmp(expected))
}
