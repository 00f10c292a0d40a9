// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"gitlab.com/yelinaung/ecb-rates/internal/exchange"
	"gitlab.com/yelinaung/ecb-rates/internal/rates"
)

// Telemetry exporters accepted by OTEL_EXPORTER.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

const defaultFetchTimeout = 5 * time.Second

var defaultChartCurrencies = []string{"USD", "GBP", "CHF", "JPY", "BGN"}

// Config holds all configuration for the application.
type Config struct {
	FeedURL      string
	FetchTimeout time.Duration
	BaseCurrency string
	TableLocale  string

	LogLevel  string
	LogFormat string

	HTTPAddr string

	TelegramBotToken     string
	WhitelistedUserIDs   []int64
	WhitelistedUsernames []string

	ChartCurrencies []string

	OTelExporter    string
	OTelEndpoint    string
	OTelServiceName string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		FeedURL:          strings.TrimSpace(os.Getenv("ECB_FEED_URL")),
		FetchTimeout:     defaultFetchTimeout,
		BaseCurrency:     strings.ToUpper(strings.TrimSpace(os.Getenv("BASE_CURRENCY"))),
		TableLocale:      strings.ToLower(strings.TrimSpace(os.Getenv("TABLE_LOCALE"))),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        strings.ToLower(os.Getenv("LOG_FORMAT")),
		HTTPAddr:         strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OTelExporter:     strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER"))),
		OTelEndpoint:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTelServiceName:  strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")),
	}

	if cfg.FeedURL == "" {
		cfg.FeedURL = exchange.DefaultFeedURL
	}
	if timeoutStr := os.Getenv("ECB_FETCH_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil && d > 0 {
			cfg.FetchTimeout = d
		}
	}
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = rates.AnchorCurrency
	}
	if cfg.TableLocale == "" {
		cfg.TableLocale = rates.DefaultLocale
	}
	if cfg.OTelExporter == "" {
		cfg.OTelExporter = ExporterNone
	}
	if cfg.OTelServiceName == "" {
		cfg.OTelServiceName = "ecb-rates"
	}

	cfg.ChartCurrencies = parseCurrencyList(os.Getenv("CHART_CURRENCIES"))
	if len(cfg.ChartCurrencies) == 0 {
		cfg.ChartCurrencies = slices.Clone(defaultChartCurrencies)
	}

	for idStr := range strings.SplitSeq(os.Getenv("WHITELISTED_USER_IDS"), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		cfg.WhitelistedUserIDs = append(cfg.WhitelistedUserIDs, id)
	}

	for username := range strings.SplitSeq(os.Getenv("WHITELISTED_USERNAMES"), ",") {
		username = strings.TrimPrefix(strings.TrimSpace(username), "@")
		if username == "" {
			continue
		}
		cfg.WhitelistedUsernames = append(cfg.WhitelistedUsernames, username)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseCurrencyList splits a comma separated list of codes, dropping blanks.
func parseCurrencyList(raw string) []string {
	var codes []string
	for code := range strings.SplitSeq(raw, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

// validate checks that the configuration is usable.
func (c *Config) validate() error {
	var errs []string

	if !rates.ValidCode(c.BaseCurrency) {
		errs = append(errs, fmt.Sprintf("BASE_CURRENCY %q is not a 3-letter currency code", c.BaseCurrency))
	}

	if _, ok := rates.LabelsFor(c.TableLocale); !ok {
		errs = append(errs, fmt.Sprintf("TABLE_LOCALE %q is not supported (bg, en)", c.TableLocale))
	}

	switch c.OTelExporter {
	case ExporterNone, ExporterStdout, ExporterOTLPGRPC, ExporterOTLPHTTP:
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER %q is not supported", c.OTelExporter))
	}

	for _, code := range c.ChartCurrencies {
		if !rates.ValidCode(code) {
			errs = append(errs, fmt.Sprintf("CHART_CURRENCIES entry %q is not a currency code", code))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Labels returns the rates table captions for the configured locale.
func (c *Config) Labels() rates.Labels {
	labels, ok := rates.LabelsFor(c.TableLocale)
	if !ok {
		labels, _ = rates.LabelsFor(rates.DefaultLocale)
	}
	return labels
}

// BotEnabled reports whether the Telegram bot should run.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// ServerEnabled reports whether the HTTP server should run.
func (c *Config) ServerEnabled() bool {
	return c.HTTPAddr != ""
}

// IsUserWhitelisted checks if a Telegram user ID or username is in the whitelist.
// An empty whitelist allows everyone.
func (c *Config) IsUserWhitelisted(userID int64, username string) bool {
	if len(c.WhitelistedUserIDs) == 0 && len(c.WhitelistedUsernames) == 0 {
		return true
	}

	if slices.Contains(c.WhitelistedUserIDs, userID) {
		return true
	}

	if username != "" {
		username = strings.TrimPrefix(username, "@")
		for _, whitelisted := range c.WhitelistedUsernames {
			if strings.EqualFold(whitelisted, username) {
				return true
			}
		}
	}

	return false
}
