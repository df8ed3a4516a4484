// Package bot implements the Telegram command surface and notification
// delivery. It is a thin caller of the watch registry and the store; all
// update-detection logic lives behind those.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"steamwatch/internal/config"
	"steamwatch/internal/detect"
	"steamwatch/internal/model"
	"steamwatch/internal/steam"
	"steamwatch/internal/storage"
	"steamwatch/internal/watch"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Resolver maps a free-text game name to a Steam app.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*steam.App, error)
}

// Bot is the Telegram bot that handles user commands and delivers update
// notifications.
type Bot struct {
	api      telegramAPI
	registry *watch.Registry
	store    storage.Store
	resolver Resolver
	news     detect.Gateway
	cfg      *config.Config
	log      *slog.Logger
}

// New creates a Bot with the given Telegram token and collaborators.
func New(token string, registry *watch.Registry, store storage.Store, resolver Resolver, news detect.Gateway, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	// The shared HTTP client must outlast Telegram's 60s long-poll requests,
	// so it only backstops a wedged connection; per-delivery deadlines are
	// enforced in Deliver.
	client := &http.Client{Timeout: 90 * time.Second}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:      api,
		registry: registry,
		store:    store,
		resolver: resolver,
		news:     news,
		cfg:      cfg,
		log:      log,
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// Deliver sends an update notification to the given channel, treating ctx as
// the delivery deadline. It implements the scheduler's Dispatcher interface.
func (b *Bot) Deliver(ctx context.Context, channelID string, n model.Notification) error {
	chatID, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid channel id %q: %w", channelID, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, FormatUpdate(n))
	sent := make(chan error, 1)
	go func() {
		_, err := b.api.Send(msg)
		sent <- err
	}()

	select {
	case <-ctx.Done():
		// The send keeps running on the shared client until its own timeout;
		// the sweep moves on without waiting for it.
		return fmt.Errorf("send notification: %w", ctx.Err())
	case err := <-sent:
		if err != nil {
			return fmt.Errorf("send notification: %w", err)
		}
		return nil
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "watch":
		b.handleWatch(ctx, chatID, args)
	case "unwatch":
		b.handleUnwatch(ctx, chatID, args)
	case "list":
		b.handleList(ctx, chatID)
	case "setchannel":
		b.handleSetChannel(ctx, chatID)
	case "latest":
		b.handleLatest(ctx, chatID, args)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}

// tenantID derives the tenant identifier from a chat. The core treats it as
// an opaque string.
func tenantID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
