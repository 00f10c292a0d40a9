package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{"EUR", "€"},
		{"usd", "$"},
		{" bgn ", "лв"},
		{"XAU", "XAU"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Symbol(tt.code))
		})
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	require.Equal(t, "GBP (Pound sterling)", Describe("gbp"))
	require.Equal(t, "XAU", Describe("XAU"))
	require.Empty(t, Name("XAU"))
}

func TestMetadataCoversSymbols(t *testing.T) {
	t.Parallel()

	for code := range CurrencySymbols {
		require.NotEmpty(t, CurrencyNames[code], "missing name for %s", code)
	}
	require.Len(t, CurrencyNames, len(CurrencySymbols))
}
