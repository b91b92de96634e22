package handler

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/bot"
	"github.com/artur/tubesave/internal/database/models"
)

// HistoryLimit is the number of records listed by /history
const HistoryLimit = 10

type HistoryHandler struct {
	archive Archiver
	log     *zap.Logger
}

func NewHistoryHandler(archive Archiver, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{archive: archive, log: loggerOrNop(logger, "history")}
}

func (h *HistoryHandler) CanHandle(update tgbotapi.Update) bool {
	return update.Message != nil && update.Message.IsCommand() && update.Message.Command() == "history"
}

func (h *HistoryHandler) Handle(ctx context.Context, bot bot.Sender, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	records, err := h.archive.History(ctx)
	if err != nil {
		h.log.Error("failed to load history", zap.Error(err))
		send(bot, h.log, tgbotapi.NewMessage(chatID, "❌ Failed to load history: "+err.Error()))
		return
	}

	send(bot, h.log, tgbotapi.NewMessage(chatID, formatHistory(records, HistoryLimit)))
}

func formatHistory(records []models.VideoRecord, limit int) string {
	if len(records) == 0 {
		return "No downloads yet."
	}

	var b strings.Builder
	if len(records) > limit {
		fmt.Fprintf(&b, "📼 Latest %d of %d downloads:\n", limit, len(records))
		records = records[:limit]
	} else {
		fmt.Fprintf(&b, "📼 Downloads (%d):\n", len(records))
	}
	for i, r := range records {
		fmt.Fprintf(&b, "\n%d. %s\n%s\n%s\n", i+1, r.Title, r.URL, r.DownloadedAt.UTC().Format(timeFormat))
	}
	return b.String()
}
