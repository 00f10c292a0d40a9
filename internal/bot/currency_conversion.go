package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/ecb-rates/internal/logger"
	appmodels "gitlab.com/yelinaung/ecb-rates/internal/models"
	"gitlab.com/yelinaung/ecb-rates/internal/rates"
)

var (
	errConvertUsage  = errors.New("usage: /convert <amount> <from> [to]")
	errInvalidAmount = errors.New("invalid amount")
)

// conversionRequest is a parsed /convert command.
type conversionRequest struct {
	Amount decimal.Decimal
	From   string
	To     string
}

// parseConversionArgs parses "100 USD EUR" or "100 USD". A comma is accepted
// as the decimal separator when no dot is present.
func parseConversionArgs(args string) (conversionRequest, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 || len(fields) > 3 {
		return conversionRequest{}, errConvertUsage
	}

	raw := fields[0]
	if !strings.Contains(raw, ".") {
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return conversionRequest{}, fmt.Errorf("%w: %q", errInvalidAmount, fields[0])
	}
	if amount.IsNegative() {
		return conversionRequest{}, fmt.Errorf("%w: must not be negative", errInvalidAmount)
	}

	req := conversionRequest{
		Amount: amount,
		From:   strings.ToUpper(fields[1]),
	}
	if len(fields) == 3 {
		req.To = strings.ToUpper(fields[2])
	}
	return req, nil
}

// conversionErrorText maps a conversion failure to a user-facing message.
func conversionErrorText(err error) string {
	switch {
	case errors.Is(err, rates.ErrUnknownCurrency):
		return fmt.Sprintf("❌ %s\n\nUse /currencies to see every code.", escapeHTML(err.Error()))
	case errors.Is(err, rates.ErrZeroRate):
		return "❌ That currency's rate rounds to zero against the current base."
	default:
		return "❌ Conversion failed. Please try again."
	}
}

// handleConvert handles the /convert command.
func (b *Bot) handleConvert(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleConvertCore(ctx, tgBot, update)
}

// handleConvertCore is the testable implementation of handleConvert.
func (b *Bot) handleConvertCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	req, err := parseConversionArgs(extractCommandArgs(update.Message.Text, "/convert"))
	if err != nil {
		text := "Usage: <code>/convert 100 USD EUR</code>\nThe target defaults to the base currency."
		if errors.Is(err, errInvalidAmount) {
			text = "❌ " + escapeHTML(err.Error()) + "\n\n" + text
		}
		reply(ctx, tg, update, text, "/convert")
		return
	}

	table := b.snapshot()
	to := req.To
	if to == "" {
		to = table.Base()
	}

	result, err := rates.NewConverter(table).Convert(ctx, req.Amount, req.From, to)
	if err != nil {
		logger.Log.Debug().Err(err).Str("from", req.From).Str("to", to).Msg("Conversion failed")
		reply(ctx, tg, update, conversionErrorText(err), "/convert")
		return
	}

	text := fmt.Sprintf("💱 %s %s = <b>%s %s</b>\n1 %s = %s %s",
		req.Amount.String(), req.From,
		result.Amount.StringFixed(2), to,
		req.From, result.Rate.StringFixed(4), to,
	)
	if symbol := appmodels.Symbol(to); symbol != to {
		text = fmt.Sprintf("%s\n\n%s%s", text, escapeHTML(symbol), result.Amount.StringFixed(2))
	}
	if date := table.Date(); date != "" {
		text += "\n📅 " + escapeHTML(date)
	}

	reply(ctx, tg, update, text, "/convert")
}

// handleCross handles the /cross command.
func (b *Bot) handleCross(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCrossCore(ctx, tgBot, update)
}

// handleCrossCore is the testable implementation of handleCross.
func (b *Bot) handleCrossCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	fields := strings.Fields(extractCommandArgs(update.Message.Text, "/cross"))
	if len(fields) != 2 {
		reply(ctx, tg, update, "Usage: <code>/cross GBP JPY</code>", "/cross")
		return
	}

	from, to := strings.ToUpper(fields[0]), strings.ToUpper(fields[1])
	rate, err := b.snapshot().CrossRate(from, to)
	if err != nil {
		reply(ctx, tg, update, conversionErrorText(err), "/cross")
		return
	}

	reply(ctx, tg, update, fmt.Sprintf("💱 1 %s = <b>%s %s</b>", from, rate, to), "/cross")
}
