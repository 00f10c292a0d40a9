package bot

import (
	"testing"
	"time"

	"gitlab.com/yelinaung/ecb-rates/internal/config"
	"gitlab.com/yelinaung/ecb-rates/internal/exchange"
	"gitlab.com/yelinaung/ecb-rates/internal/rates"
)

const (
	testChatID = int64(12345)
	testUserID = int64(123456)
)

// sampleTable returns a parsed EUR table dated 2026-10-16.
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

// setupTestBot creates a Bot instance for testing without a Telegram client.
func setupTestBot(t *testing.T, table *rates.Table) *Bot {
	t.Helper()

	cfg := &config.Config{
		TelegramBotToken:   "test-token",
		TableLocale:        "en",
		WhitelistedUserIDs: []int64{testUserID},
		ChartCurrencies:    []string{"USD", "GBP", "CHF"},
	}

	return newBot(cfg, table)
}
