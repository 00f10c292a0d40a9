package bot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/ecb-rates/internal/chart"
	"gitlab.com/yelinaung/ecb-rates/internal/logger"
)

// handleChart handles the /chart command.
func (b *Bot) handleChart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleChartCore(ctx, tgBot, update)
}

// handleChartCore is the testable implementation of handleChart.
func (b *Bot) handleChartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	codes := parseCodes(extractCommandArgs(update.Message.Text, "/chart"))
	if len(codes) == 0 {
		codes = b.cfg.ChartCurrencies
	}

	table := b.snapshot()
	chartData, err := chart.RenderValueChart(table, codes)
	if err != nil {
		logger.Log.Debug().Err(err).Strs("codes", codes).Msg("Chart not generated")
		reply(ctx, tg, update, "📭 None of those currencies can be charted against "+table.Base()+".", "/chart")
		return
	}

	caption := fmt.Sprintf("📊 Value of 1 unit in <b>%s</b>", table.Base())
	if date := table.Date(); date != "" {
		caption += "\n📅 " + escapeHTML(date)
	}

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: chart.Filename(table),
			Data:     bytes.NewReader(chartData),
		},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to send chart")
		reply(ctx, tg, update, "❌ Failed to send chart. Please try again.", "/chart")
		return
	}

	logger.Log.Info().
		Str("chat_hash", logger.HashChatID(chatID)).
		Int("currencies", len(codes)).
		Msg("Chart sent successfully")
}
