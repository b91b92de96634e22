// Package bot runs the Telegram long-polling loop and routes updates to handlers.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of tgbotapi.BotAPI handlers talk to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler interface {
	CanHandle(update tgbotapi.Update) bool
	Handle(ctx context.Context, bot Sender, update tgbotapi.Update)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers []Handler
	log      *zap.Logger
}

func New(token string, logger *zap.Logger) (*Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.Named("bot")
	log.Info("authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:      api,
		handlers: make([]Handler, 0),
		log:      log,
	}, nil
}

func (b *Bot) RegisterHandler(h Handler) {
	b.handlers = append(b.handlers, h)
	b.logger().Debug("registered handler", zap.String("handler", handlerName(h)))
}

// Run polls for updates until ctx is cancelled. Updates are handled one at a time.
func (b *Bot) Run(ctx context.Context) error {
	b.logger().Info("starting bot", zap.Int("handlers", len(b.handlers)))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.logger().Info("stopping bot")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, b.api, update)
		}
	}
}

// dispatch hands update to the first handler that accepts it and reports whether one did.
func (b *Bot) dispatch(ctx context.Context, sender Sender, update tgbotapi.Update) bool {
	log := b.logger()

	if update.Message == nil {
		log.Debug("skipping update without message", zap.Int("update_id", update.UpdateID))
		return false
	}
	if from := update.Message.From; from != nil {
		log.Info("message",
			zap.String("first_name", from.FirstName),
			zap.String("username", from.UserName),
			zap.String("text", update.Message.Text))
	}

	for _, handler := range b.handlers {
		if handler.CanHandle(update) {
			log.Debug("handling", zap.String("handler", handlerName(handler)))
			handler.Handle(ctx, sender, update)
			return true
		}
	}

	log.Info("no handler found for update", zap.Int("update_id", update.UpdateID))
	return false
}

func (b *Bot) logger() *zap.Logger {
	if b.log == nil {
		return zap.NewNop()
	}
	return b.log
}

func handlerName(h Handler) string {
	return fmt.Sprintf("%T", h)
}
