package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/ecb-rates/internal/logger"
)

// extractCommandArgs strips the /command prefix (and optional @botname suffix)
// from a message and returns the remaining trimmed arguments.
func extractCommandArgs(text, command string) string {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if strings.HasPrefix(args, "@") {
		if spaceIdx := strings.Index(args, " "); spaceIdx != -1 {
			args = strings.TrimSpace(args[spaceIdx:])
		} else {
			args = ""
		}
	}
	return args
}

// escapeHTML escapes HTML special characters for safe interpolation in Telegram HTML messages.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// formatGreeting returns a greeting suffix with the user's name.
func formatGreeting(firstName string) string {
	if firstName == "" {
		return ""
	}
	return ", " + escapeHTML(firstName)
}

// reply sends an HTML message to the chat of update and logs failures.
func reply(ctx context.Context, tg TelegramAPI, update *models.Update, text, what string) {
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msgf("Failed to send %s response", what)
	}
}

// handleStart handles the /start command.
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

// handleStartCore is the testable implementation of handleStart.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	firstName := ""
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}

	table := b.snapshot()
	source := "the ECB daily feed"
	if !table.Parsed() {
		source = "built-in fallback rates (the ECB feed was unavailable)"
	}

	text := fmt.Sprintf(`👋 Welcome%s!

I quote the euro foreign exchange reference rates of the European Central Bank.

<b>Quick Start:</b>
• <code>/rates</code> - Show every rate against %s
• <code>/convert 100 USD EUR</code> - Convert an amount
• <code>/cross GBP JPY</code> - Show a cross rate

Rates are loaded from %s.
Use /help to see all available commands.`,
		formatGreeting(firstName), table.Base(), source)

	logger.Log.Debug().Str("chat_hash", logger.HashChatID(update.Message.Chat.ID)).Msg("Sending /start response")
	reply(ctx, tg, update, text, "/start")
}

// handleHelp handles the /help command.
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

// handleHelpCore is the testable implementation of handleHelp.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := `📚 <b>Available Commands</b>

<b>Rates:</b>
• <code>/rates [CODES]</code> - Show the rate table, e.g. <code>/rates USD,GBP</code>
• <code>/html [CODES]</code> - Download the rate table as an HTML fragment
• <code>/currencies</code> - List every known currency
• <code>/base &lt;code&gt;</code> - Re-base the table on another currency

<b>Conversion:</b>
• <code>/convert &lt;amount&gt; &lt;from&gt; [to]</code> - Convert an amount (defaults to the base currency)
• <code>/cross &lt;from&gt; &lt;to&gt;</code> - Show how much one unit of a currency buys

<b>Charts:</b>
• <code>/chart [CODES]</code> - Pie chart of what one unit of each currency is worth

<b>Other:</b>
• <code>/help</code> - Show this help message`

	logger.Log.Debug().Str("chat_hash", logger.HashChatID(update.Message.Chat.ID)).Msg("Sending /help response")
	reply(ctx, tg, update, text, "/help")
}
