package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransformer(t *testing.T, tax, margin string) *Transformer {
	t.Helper()
	tr, err := New(decimal.RequireFromString(tax), decimal.RequireFromString(margin))
	require.NoError(t, err)
	return tr
}

func TestNew_RejectsRatesNotAboveOne(t *testing.T) {
	tests := []struct {
		name   string
		tax    string
		margin string
	}{
		{"TaxOne", "1", "1.3"},
		{"TaxBelow", "0.9", "1.3"},
		{"MarginOne", "1.22", "1.0"},
		{"MarginZero", "1.22", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(decimal.RequireFromString(tt.tax), decimal.RequireFromString(tt.margin))
			assert.Error(t, err)
		})
	}
}

func TestPrice(t *testing.T) {
	tr := newTransformer(t, "1.22", "1.30")

	tests := []struct {
		name string
		net  string
		want int64
	}{
		{"Hundred", "100", 159},
		{"Zero", "0", 0},
		{"Negative", "-50", 0},
		{"Fraction", "10.50", 17},    // 16.653
		{"Large", "12345.67", 19580}, // 19580.23262
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Price(decimal.RequireFromString(tt.net)))
		})
	}
}

// TestPrice_HalfRoundsUp pins the rounding mode at the .5 boundary: 1.25 * 1.2 = 1.5 exactly.
func TestPrice_HalfRoundsUp(t *testing.T) {
	tr := newTransformer(t, "1.25", "1.2")

	assert.Equal(t, "1.5", tr.Factor().String())
	assert.Equal(t, int64(2), tr.Price(decimal.NewFromInt(1)))            // 1.5
	assert.Equal(t, int64(5), tr.Price(decimal.NewFromInt(3)))            // 4.5, banker's rounding would give 4
	assert.Equal(t, int64(8), tr.Price(decimal.NewFromInt(5)))            // 7.5
	assert.Equal(t, int64(4), tr.Price(decimal.RequireFromString("2.9"))) // 4.35
}

// TestPrice_MissingNet tests that an absent net price (zero Decimal, JSON null) prices at 0.
func TestPrice_MissingNet(t *testing.T) {
	tr := newTransformer(t, "1.22", "1.30")

	var net decimal.Decimal
	require.NoError(t, net.UnmarshalJSON([]byte("null")))

	assert.Equal(t, int64(0), tr.Price(net))
	assert.Equal(t, int64(0), tr.Price(decimal.Decimal{}))
	assert.Equal(t, int64(0), tr.Price(ParseNetPrice("")))
}

func TestParseNetPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"Consultar", "0"},
		{"$ 1.234,56", "1234.56"},
		{"USD 1,234.56", "1234.56"},
		{"1,5", "1.5"},
		{"99.90", "99.9"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{"U$S 250", "250"},
		{".", "0"},
		{"-15", "15"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseNetPrice(tt.in)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}
