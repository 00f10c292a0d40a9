package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/ecb-rates/internal/config"
	"gitlab.com/yelinaung/ecb-rates/internal/exchange"
	"gitlab.com/yelinaung/ecb-rates/internal/rates"
)

func sampleTable() *rates.Table {
	return rates.NewFromFeed(exchange.Feed{
		Date: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		Rates: []exchange.Rate{
			{Currency: "USD", Value: "1.0876"},
			{Currency: "JPY", Value: "161.43"},
			{Currency: "BGN", Value: "1.9558"},
			{Currency: "GBP", Value: "0.8541"},
			{Currency: "CHF", Value: "0.9412"},
		},
	})
}

func newTestServer(t *testing.T, table *rates.Table) *Server {
	t.Helper()
	return New(&config.Config{
		TableLocale:     "bg",
		ChartCurrencies: []string{"USD", "GBP"},
	}, table)
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRatesEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("renders default locale", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		rec := do(t, s, http.MethodGet, "/rates")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, sampleTable().RatesTable(mustLabels(t, "bg")), rec.Body.String())
	})

	t.Run("re-bases a private copy", func(t *testing.T) {
		t.Parallel()
		table := sampleTable()
		s := newTestServer(t, table)

		rec := do(t, s, http.MethodGet, "/rates?base=usd&visible=BGN&lang=en")

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "All rates are for 1 USD")
		assert.Contains(t, body, `<tr><td>BGN</td><td align="right">1.7983</td></tr>`)
		assert.NotContains(t, body, "<td>JPY</td>")
		assert.Equal(t, "EUR", table.Base())
	})

	t.Run("unknown base is not found", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		rec := do(t, s, http.MethodGet, "/rates?base=XAU")

		require.Equal(t, http.StatusNotFound, rec.Code)
		resp := decode[ErrorResponse](t, rec)
		assert.Contains(t, resp.Error, "unknown currency")
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("unsupported lang is rejected", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		rec := do(t, s, http.MethodGet, "/rates?lang=de")

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("only GET is routed", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		rec := do(t, s, http.MethodPost, "/rates")

		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func mustLabels(t *testing.T, locale string) rates.Labels {
	t.Helper()
	labels, ok := rates.LabelsFor(locale)
	require.True(t, ok)
	return labels
}

func TestCurrenciesEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, sampleTable())

	rec := do(t, s, http.MethodGet, "/api/currencies")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode[CurrenciesResponse](t, rec)
	assert.Equal(t, "EUR", resp.Base)
	assert.Equal(t, "2026-10-16", resp.Date)
	assert.True(t, resp.Parsed)
	require.Len(t, resp.Currencies, 6)
	assert.Equal(t, CurrencyResponse{Code: "EUR", Rate: "1.0000", Symbol: "€", Name: "Euro"}, resp.Currencies[0])
	assert.Equal(t, "161.43", resp.Currencies[2].Rate)
}

func TestConvertEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("converts amount", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		rec := do(t, s, http.MethodGet, "/api/convert?amount=100&from=usd&to=EUR")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ConvertResponse{
			Amount:   "100",
			From:     "USD",
			To:       "EUR",
			Result:   "91.95",
			Rate:     "0.9195",
			RateDate: "2026-10-16",
		}, decode[ConvertResponse](t, rec))
	})

	t.Run("defaults target to base", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, rates.Fallback())

		rec := do(t, s, http.MethodGet, "/api/convert?amount=50&from=BGN")

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ConvertResponse](t, rec)
		assert.Equal(t, "EUR", resp.To)
		assert.Equal(t, "25.56", resp.Result)
		assert.Empty(t, resp.RateDate)
	})

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing amount", "/api/convert?from=USD", http.StatusBadRequest},
		{"invalid amount", "/api/convert?amount=ten&from=USD", http.StatusBadRequest},
		{"unknown currency", "/api/convert?amount=1&from=XAU&to=EUR", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, sampleTable())

			rec := do(t, s, http.MethodGet, tt.target)

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status, decode[ErrorResponse](t, rec).Status)
		})
	}
}

func TestCrossEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns rate", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		rec := do(t, s, http.MethodGet, "/api/cross?from=GBP&to=JPY")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, CrossResponse{From: "GBP", To: "JPY", Rate: "189.0060"}, decode[CrossResponse](t, rec))
	})

	t.Run("validates target code", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		rec := do(t, s, http.MethodGet, "/api/cross?from=USD&to=XAU")

		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("requires both codes", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		rec := do(t, s, http.MethodGet, "/api/cross?from=USD")

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChartEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("renders configured currencies", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		rec := do(t, s, http.MethodGet, "/chart.png")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "rates_EUR_2026-10-16.png")
		assert.Equal(t, []byte("\x89PNG"), rec.Body.Bytes()[:4])
	})

	t.Run("nothing to chart", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		rec := do(t, s, http.MethodGet, "/chart.png?codes=XAU,EUR")

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("parsed table", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, sampleTable())

		resp := decode[HealthResponse](t, do(t, s, http.MethodGet, "/healthz"))

		assert.Equal(t, HealthResponse{
			Status:     "ok",
			Parsed:     true,
			Date:       "2026-10-16",
			Base:       "EUR",
			Currencies: 6,
		}, resp)
	})

	t.Run("fallback table is degraded", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, rates.New(context.Background(), nil))

		resp := decode[HealthResponse](t, do(t, s, http.MethodGet, "/healthz"))

		assert.Equal(t, "degraded", resp.Status)
		assert.False(t, resp.Parsed)
		assert.Empty(t, resp.Date)
		assert.Equal(t, 2, resp.Currencies)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("SetTable swaps the served table", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, rates.Fallback())
		s.SetTable(sampleTable())

		resp := decode[HealthResponse](t, do(t, s, http.MethodGet, "/healthz"))

		assert.True(t, resp.Parsed)
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	s := New(&config.Config{HTTPAddr: "127.0.0.1:0", TableLocale: "bg"}, sampleTable())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
