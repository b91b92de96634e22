// Package handler implements the Telegram bot commands.
package handler

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/bot"
	"github.com/artur/tubesave/internal/database/models"
)

const timeFormat = "2006-01-02 15:04:05 MST"

// Archiver is the part of archive.Service used by the handlers.
type Archiver interface {
	Execute(ctx context.Context, url string) (*models.VideoRecord, error)
	History(ctx context.Context) ([]models.VideoRecord, error)
}

func send(bot bot.Sender, log *zap.Logger, msg tgbotapi.Chattable) tgbotapi.Message {
	sent, err := bot.Send(msg)
	if err != nil {
		log.Warn("failed to send message", zap.Error(err))
	}
	return sent
}

// request is used for API calls that do not return a message, such as chat actions.
func request(bot bot.Sender, log *zap.Logger, c tgbotapi.Chattable) {
	if _, err := bot.Request(c); err != nil {
		log.Debug("request failed", zap.Error(err))
	}
}

func loggerOrNop(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Named(name)
}
