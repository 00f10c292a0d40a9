// Package bot provides the Telegram bot that serves the rate table.
package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/ecb-rates/internal/config"
	"gitlab.com/yelinaung/ecb-rates/internal/logger"
	"gitlab.com/yelinaung/ecb-rates/internal/rates"
)

// Bot wraps the Telegram bot with the shared rate table.
type Bot struct {
	bot    *bot.Bot
	cfg    *config.Config
	labels rates.Labels

	// mu guards table; handlers run concurrently.
	mu    sync.Mutex
	table *rates.Table
}

// New creates a new Bot instance.
func New(cfg *config.Config, table *rates.Table) (*Bot, error) {
	b := newBot(cfg, table)

	opts := []bot.Option{
		bot.WithMiddlewares(b.whitelistMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.registerHandlers()

	return b, nil
}

func newBot(cfg *config.Config, table *rates.Table) *Bot {
	return &Bot{
		cfg:    cfg,
		labels: cfg.Labels(),
		table:  table,
	}
}

// Start begins polling for updates.
func (b *Bot) Start(ctx context.Context) {
	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// registerHandlers sets up command handlers.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rates", bot.MatchTypePrefix, b.handleRates)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/html", bot.MatchTypePrefix, b.handleHTML)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/currencies", bot.MatchTypePrefix, b.handleCurrencies)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/base", bot.MatchTypePrefix, b.handleBase)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/convert", bot.MatchTypePrefix, b.handleConvert)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cross", bot.MatchTypePrefix, b.handleCross)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/chart", bot.MatchTypePrefix, b.handleChart)
}

// snapshot returns a private copy of the shared table.
func (b *Bot) snapshot() *rates.Table {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.table.Clone()
}

// whitelistMiddleware checks if the user is whitelisted before processing.
func (b *Bot) whitelistMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		if !b.allow(ctx, tgBot, update) {
			return
		}
		next(ctx, tgBot, update)
	}
}

// allow logs the update and reports whether its sender may use the bot.
func (b *Bot) allow(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) bool {
	userID := extractUserID(update)
	if userID == 0 {
		return false
	}

	username := extractUsername(update)
	logUserAction(userID, update)

	if b.cfg.IsUserWhitelisted(userID, username) {
		return true
	}

	logger.Log.Warn().
		Str("user_hash", logger.HashUserID(userID)).
		Msg("Blocked non-whitelisted user")
	if update.Message != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "⛔ Sorry, you are not authorized to use this bot.",
		})
	}
	return false
}

// logUserAction logs the user's command without exposing the raw IDs.
func logUserAction(userID int64, update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("chat_hash", logger.HashChatID(update.Message.Chat.ID)).
			Str("text", update.Message.Text).
			Msg("User input")

	case update.EditedMessage != nil:
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("text", update.EditedMessage.Text).
			Msg("Edited message")
	}
}

// extractUsername gets the username from the update.
func extractUsername(update *tgmodels.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	if update.EditedMessage != nil && update.EditedMessage.From != nil {
		return update.EditedMessage.From.Username
	}
	return ""
}

// extractUserID gets the user ID from various update types.
func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.EditedMessage != nil && update.EditedMessage.From != nil {
		return update.EditedMessage.From.ID
	}
	return 0
}

// defaultHandler handles unrecognized messages.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.defaultHandlerCore(ctx, tgBot, update)
}

func (b *Bot) defaultHandlerCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	logger.Log.Debug().
		Str("chat_hash", logger.HashChatID(update.Message.Chat.ID)).
		Msg("Default handler triggered")

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      "I didn't understand that. Use /help to see available commands, or try <code>/convert 100 USD EUR</code>",
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send default response")
	}
}
