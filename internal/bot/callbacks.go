package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleCallback processes inline-keyboard presses. The remove buttons carry
// the exact app ID, so the registry's substring matching never applies here.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID

	ack := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(ack); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return
	}
	action, appID := parts[0], parts[1]

	b.log.Info("callback",
		"action", action,
		"app_id", appID,
		"chat_id", chatID,
		"user_id", cb.From.ID,
	)

	switch action {
	case "unwatch":
		removed, err := b.registry.Remove(ctx, tenantID(chatID), appID)
		if err != nil {
			b.reply(chatID, fmt.Sprintf("Failed to remove watch: %v", err))
			return
		}
		if removed == nil {
			b.reply(chatID, "Already removed or not watched.")
			return
		}
		b.reply(chatID, fmt.Sprintf("%s is no longer watched.", removed.DisplayName))
	}
}
