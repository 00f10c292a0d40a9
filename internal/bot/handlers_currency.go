package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/ecb-rates/internal/logger"
	appmodels "gitlab.com/yelinaung/ecb-rates/internal/models"
	"gitlab.com/yelinaung/ecb-rates/internal/rates"
)

const ratesTableFilename = "rates_table.html"

// parseCodes splits "USD,GBP jpy" into upper-cased codes.
func parseCodes(args string) []string {
	fields := strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || r == ' '
	})
	codes := make([]string, 0, len(fields))
	for _, f := range fields {
		codes = append(codes, strings.ToUpper(f))
	}
	return codes
}

// formatRatesText renders the table as preformatted text, since Telegram
// cannot display HTML tables.
func formatRatesText(table *rates.Table, labels rates.Labels, codes []string) string {
	if len(codes) == 0 || (len(codes) == 1 && codes[0] == "ALL") {
		codes = table.CurrencyList()
	}

	var sb strings.Builder
	sb.WriteString("💱 <b>")
	sb.WriteString(escapeHTML(labels.Title))
	sb.WriteString("</b>\n")
	sb.WriteString(escapeHTML(labels.BaseReference + table.Base()))
	if date := table.Date(); date != "" {
		sb.WriteString(" · ")
		sb.WriteString(escapeHTML(date))
	}
	if !table.Parsed() {
		sb.WriteString("\n⚠️ Fallback rates")
	}
	sb.WriteString("\n\n<pre>")

	shown := 0
	for _, code := range codes {
		rate, ok := table.Rate(code)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%-4s %14s %s\n", code, rate, escapeHTML(appmodels.Symbol(code)))
		shown++
	}
	if shown == 0 {
		sb.WriteString("No matching currencies\n")
	}
	sb.WriteString("</pre>")

	return sb.String()
}

// handleRates handles the /rates command.
func (b *Bot) handleRates(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleRatesCore(ctx, tgBot, update)
}

// handleRatesCore is the testable implementation of handleRates.
func (b *Bot) handleRatesCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	codes := parseCodes(extractCommandArgs(update.Message.Text, "/rates"))
	text := formatRatesText(b.snapshot(), b.labels, codes)
	reply(ctx, tg, update, text, "/rates")
}

// handleHTML handles the /html command.
func (b *Bot) handleHTML(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHTMLCore(ctx, tgBot, update)
}

// handleHTMLCore is the testable implementation of handleHTML.
func (b *Bot) handleHTMLCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	codes := parseCodes(extractCommandArgs(update.Message.Text, "/html"))
	table := b.snapshot()
	fragment := table.RatesTable(b.labels, codes...)

	_, err := tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: update.Message.Chat.ID,
		Document: &models.InputFileUpload{
			Filename: ratesTableFilename,
			Data:     bytes.NewReader([]byte(fragment)),
		},
		Caption:   fmt.Sprintf("📄 Rate table against %s", table.Base()),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send rate table document")
		reply(ctx, tg, update, "❌ Failed to send rate table. Please try again.", "/html")
	}
}

// handleCurrencies handles the /currencies command.
func (b *Bot) handleCurrencies(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCurrenciesCore(ctx, tgBot, update)
}

// handleCurrenciesCore is the testable implementation of handleCurrencies.
func (b *Bot) handleCurrenciesCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	table := b.snapshot()
	var sb strings.Builder
	fmt.Fprintf(&sb, "💰 <b>Currencies</b> (%d)\n\n", table.Len())
	for _, code := range table.CurrencyList() {
		sb.WriteString("• <code>")
		sb.WriteString(code)
		sb.WriteString("</code> ")
		sb.WriteString(escapeHTML(appmodels.Symbol(code)))
		if name := appmodels.Name(code); name != "" {
			sb.WriteString(" ")
			sb.WriteString(escapeHTML(name))
		}
		if code == table.Base() {
			sb.WriteString(" (base)")
		}
		sb.WriteString("\n")
	}

	reply(ctx, tg, update, sb.String(), "/currencies")
}

// handleBase handles the /base command.
func (b *Bot) handleBase(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleBaseCore(ctx, tgBot, update)
}

// handleBaseCore is the testable implementation of handleBase.
func (b *Bot) handleBaseCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	code := strings.ToUpper(extractCommandArgs(update.Message.Text, "/base"))
	if code == "" {
		b.mu.Lock()
		base := b.table.Base()
		b.mu.Unlock()
		reply(ctx, tg, update, fmt.Sprintf(
			"💰 Current base currency: <b>%s</b>\n\nUsage: <code>/base USD</code>", base), "/base")
		return
	}

	b.mu.Lock()
	err := b.table.SetBaseCurrency(code)
	b.mu.Unlock()

	if err != nil {
		logger.Log.Debug().Err(err).Str("currency", code).Msg("Rejected base currency")
		reply(ctx, tg, update, baseErrorText(code, err), "/base")
		return
	}

	logger.Log.Info().
		Str("chat_hash", logger.HashChatID(update.Message.Chat.ID)).
		Str("currency", code).
		Msg("Base currency changed")
	reply(ctx, tg, update, fmt.Sprintf("✅ Base currency set to <b>%s</b>", escapeHTML(code)), "/base")
}

func baseErrorText(code string, err error) string {
	switch {
	case errors.Is(err, rates.ErrUnknownCurrency):
		return fmt.Sprintf("❌ Unknown currency: %s\n\nUse /currencies to see every code.", escapeHTML(code))
	case errors.Is(err, rates.ErrZeroRate):
		return fmt.Sprintf("❌ Cannot re-base on %s: its rate rounds to zero.", escapeHTML(code))
	default:
		return "❌ Failed to change base currency. Please try again."
	}
}
