package fxmath_test

import (
	"testing"

	"github.com/SscSPs/fx_rates_app/internal/utils/fxmath"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundDecimal32(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"pi to seven digits", "3.14159265", "3.141593"},
		{"small magnitude keeps seven significant digits", "0.000123456789", "0.0001234568"},
		{"large magnitude rounds integer digits", "123456789", "123456800"},
		{"half even rounds down to even", "1.2345625", "1.234562"},
		{"half even rounds up to even", "1.2345635", "1.234564"},
		{"exact value passes through", "4.30", "4.30"},
		{"zero passes through", "0", "0"},
		{"negative value", "-3.14159265", "-3.141593"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := decimal.NewFromString(tc.in)
			require.NoError(t, err)
			want, err := decimal.NewFromString(tc.want)
			require.NoError(t, err)
			got := fxmath.RoundDecimal32(in)
			assert.True(t, want.Equal(got), "got %s, want %s", got, want)
		})
	}
}

func TestRoundDisplay_BankersEdgeCases(t *testing.T) {
	// The classic half-even table: .125 rounds down to the even .12,
	// .135 rounds up to the even .14.
	cases := []struct {
		in   string
		want string
	}{
		{"3.125", "3.12"},
		{"3.135", "3.14"},
		{"3.145", "3.14"},
		{"3.155", "3.16"},
		{"2.675", "2.68"},
		{"42.999", "43.00"},
		{"43.005", "43.00"},
	}
	for _, tc := range cases {
		in, err := decimal.NewFromString(tc.in)
		require.NoError(t, err)
		want, err := decimal.NewFromString(tc.want)
		require.NoError(t, err)
		got := fxmath.RoundDisplay(in)
		assert.True(t, want.Equal(got), "RoundDisplay(%s) = %s, want %s", tc.in, got, want)
	}
}

func TestDiv_ByZeroReturnsZero(t *testing.T) {
	got := fxmath.Div(decimal.NewFromInt(10), decimal.Zero)
	assert.True(t, got.IsZero())
}

func TestMul_AppliesPolicyAtEachStep(t *testing.T) {
	a := decimal.RequireFromString("3.14159265")
	b := decimal.RequireFromString("2")
	// The operand is first multiplied exactly, then clamped to 7 significant
	// digits: 6.2831853 -> 6.283185 (half-even on the trailing 3... exact tie
	// does not occur here, plain truncation-by-rounding applies).
	got := fxmath.Mul(a, b)
	assert.Equal(t, "6.283185", got.String())
}
