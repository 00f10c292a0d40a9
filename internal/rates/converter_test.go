package rates

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts through the table", func(t *testing.T) {
		t.Parallel()

		table := NewFromFeed(sampleFeed())
		got, err := NewConverter(table).Convert(context.Background(), decimal.RequireFromString("100"), "USD", "JPY")
		require.NoError(t, err)
		require.Equal(t, decimal.RequireFromString("14842.77"), got.Amount)
		require.Equal(t, decimal.RequireFromString("148.4277"), got.Rate)
		require.Equal(t, table.AsOf(), got.RateDate)
	})

	t.Run("empty target means base", func(t *testing.T) {
		t.Parallel()

		got, err := NewConverter(Fallback()).Convert(context.Background(), decimal.RequireFromString("50"), "BGN", "")
		require.NoError(t, err)
		require.Equal(t, "25.56", got.Amount.StringFixed(2))
	})

	t.Run("sees re-based table", func(t *testing.T) {
		t.Parallel()

		table := Fallback()
		converter := NewConverter(table)
		require.NoError(t, table.SetBaseCurrency("BGN"))

		got, err := converter.Convert(context.Background(), decimal.NewFromInt(1), "EUR", "")
		require.NoError(t, err)
		require.Equal(t, "1.96", got.Amount.StringFixed(2))
	})

	t.Run("returns unknown currency", func(t *testing.T) {
		t.Parallel()

		_, err := NewConverter(Fallback()).Convert(context.Background(), decimal.NewFromInt(1), "EUR", "USD")
		require.ErrorIs(t, err, ErrUnknownCurrency)
	})
}
