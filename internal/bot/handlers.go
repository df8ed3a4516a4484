package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Steam Watch Bot!

Watch Steam games and get a message here whenever one of them ships an update.

Quick start:
1. /watch <game name> — start watching a game
2. /setchannel — post update notifications to this chat
3. /list — see what you are watching

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Commands:
/watch <name> — search Steam for a game and start watching it
/unwatch <name or app id> — stop watching a game
/list — show watched games (with remove buttons)
/setchannel — send update notifications to this chat
/latest <name> — show the most recent news item for a game`)
}

func (b *Bot) handleWatch(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /watch <game name>")
		return
	}

	app, err := b.resolver.Resolve(ctx, args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Steam search failed: %v", err))
		return
	}
	if app == nil {
		b.reply(chatID, fmt.Sprintf("No Steam game found for %q.", args))
		return
	}

	added, err := b.registry.Add(ctx, tenantID(chatID), app.ID, app.Name)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to save watch: %v", err))
		return
	}
	if !added {
		b.reply(chatID, fmt.Sprintf("Already watching %s.", app.Name))
		return
	}
	b.reply(chatID, fmt.Sprintf("Now watching %s (App ID %s).", app.Name, app.ID))
}

func (b *Bot) handleUnwatch(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /unwatch <name or app id>")
		return
	}

	removed, err := b.registry.Remove(ctx, tenantID(chatID), args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to remove watch: %v", err))
		return
	}
	if removed == nil {
		b.reply(chatID, fmt.Sprintf("No watched game matching %q.", args))
		return
	}
	b.reply(chatID, fmt.Sprintf("%s is no longer watched.", removed.DisplayName))
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	entries, err := b.registry.List(ctx, tenantID(chatID))
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if len(entries) == 0 {
		b.reply(chatID, "You are not watching any games yet. Use /watch <name> to add one.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatWatchList(entries))
	msg.DisableWebPagePreview = true

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, e := range entries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Remove %s", e.DisplayName),
				fmt.Sprintf("unwatch:%s", e.AppID),
			),
		))
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)

	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send watch list", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleSetChannel(ctx context.Context, chatID int64) {
	if err := b.store.SetChannel(ctx, tenantID(chatID), tenantID(chatID)); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to set channel: %v", err))
		return
	}
	b.reply(chatID, "Update notifications will be posted to this chat.")
}

func (b *Bot) handleLatest(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /latest <game name>")
		return
	}

	app, err := b.resolver.Resolve(ctx, args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Steam search failed: %v", err))
		return
	}
	if app == nil {
		b.reply(chatID, fmt.Sprintf("No Steam game found for %q.", args))
		return
	}

	item, err := b.news.LatestNews(ctx, app.ID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to fetch news for %s: %v", app.Name, err))
		return
	}
	if item == nil {
		b.reply(chatID, fmt.Sprintf("No recent news for %s.", app.Name))
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatLatest(app.Name, *item))
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send latest news", "chat_id", chatID, "error", err)
	}
}
