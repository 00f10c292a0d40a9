package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ECB_FEED_URL", "ECB_FETCH_TIMEOUT", "BASE_CURRENCY", "TABLE_LOCALE",
		"LOG_LEVEL", "LOG_FORMAT", "HTTP_ADDR", "TELEGRAM_BOT_TOKEN",
		"WHITELISTED_USER_IDS", "WHITELISTED_USERNAMES", "CHART_CURRENCIES",
		"OTEL_EXPORTER", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "http://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml", cfg.FeedURL)
		require.Equal(t, 5*time.Second, cfg.FetchTimeout)
		require.Equal(t, "EUR", cfg.BaseCurrency)
		require.Equal(t, "bg", cfg.TableLocale)
		require.Equal(t, ExporterNone, cfg.OTelExporter)
		require.Equal(t, "ecb-rates", cfg.OTelServiceName)
		require.Equal(t, []string{"USD", "GBP", "CHF", "JPY", "BGN"}, cfg.ChartCurrencies)
		require.False(t, cfg.BotEnabled())
		require.False(t, cfg.ServerEnabled())
	})

	t.Run("loads all config from env", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ECB_FEED_URL", "https://rates.example.com/daily.xml")
		t.Setenv("ECB_FETCH_TIMEOUT", "3s")
		t.Setenv("BASE_CURRENCY", " usd ")
		t.Setenv("TABLE_LOCALE", "EN")
		t.Setenv("HTTP_ADDR", ":8080")
		t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
		t.Setenv("CHART_CURRENCIES", "usd, gbp,,jpy")
		t.Setenv("OTEL_EXPORTER", "stdout")
		t.Setenv("OTEL_SERVICE_NAME", "rates-test")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "https://rates.example.com/daily.xml", cfg.FeedURL)
		require.Equal(t, 3*time.Second, cfg.FetchTimeout)
		require.Equal(t, "USD", cfg.BaseCurrency)
		require.Equal(t, "en", cfg.TableLocale)
		require.Equal(t, "Currency", cfg.Labels().Currency)
		require.True(t, cfg.ServerEnabled())
		require.True(t, cfg.BotEnabled())
		require.Equal(t, []string{"USD", "GBP", "JPY"}, cfg.ChartCurrencies)
		require.Equal(t, ExporterStdout, cfg.OTelExporter)
		require.Equal(t, "rates-test", cfg.OTelServiceName)
	})

	t.Run("uses default timeout for invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ECB_FETCH_TIMEOUT", "invalid")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 5*time.Second, cfg.FetchTimeout)
	})

	t.Run("uses default timeout for negative value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ECB_FETCH_TIMEOUT", "-2s")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 5*time.Second, cfg.FetchTimeout)
	})

	t.Run("parses whitelisted user IDs", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("WHITELISTED_USER_IDS", " 123 ,invalid,,456,")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, []int64{123, 456}, cfg.WhitelistedUserIDs)
	})

	t.Run("strips @ prefix from usernames", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("WHITELISTED_USERNAMES", "@alice, bob ,")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, []string{"alice", "bob"}, cfg.WhitelistedUsernames)
	})

	t.Run("rejects invalid base currency", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BASE_CURRENCY", "EURO")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "BASE_CURRENCY")
	})

	t.Run("rejects unsupported locale", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TABLE_LOCALE", "de")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "TABLE_LOCALE")
	})

	t.Run("collects every validation error", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OTEL_EXPORTER", "zipkin")
		t.Setenv("CHART_CURRENCIES", "USD,DOLLARS")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "OTEL_EXPORTER")
		require.Contains(t, err.Error(), "DOLLARS")
	})
}

func TestIsUserWhitelisted(t *testing.T) {
	t.Run("empty whitelist allows everyone", func(t *testing.T) {
		cfg := &Config{}
		require.True(t, cfg.IsUserWhitelisted(1, "anyone"))
	})

	t.Run("matches user ID", func(t *testing.T) {
		cfg := &Config{WhitelistedUserIDs: []int64{123}}
		require.True(t, cfg.IsUserWhitelisted(123, ""))
		require.False(t, cfg.IsUserWhitelisted(456, ""))
	})

	t.Run("matches username case-insensitively", func(t *testing.T) {
		cfg := &Config{WhitelistedUsernames: []string{"Alice"}}
		require.True(t, cfg.IsUserWhitelisted(1, "@alice"))
		require.False(t, cfg.IsUserWhitelisted(1, "bob"))
		require.False(t, cfg.IsUserWhitelisted(1, ""))
	})
}

func TestLabels(t *testing.T) {
	cfg := &Config{TableLocale: "xx"}
	require.Equal(t, "Валута", cfg.Labels().Currency)
}
