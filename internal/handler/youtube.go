package handler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/archive"
	"github.com/artur/tubesave/internal/bot"
	"github.com/artur/tubesave/internal/database/models"
	"github.com/artur/tubesave/internal/downloader"
)

// MaxUploadSize is the largest file the Bot API accepts as a document
const MaxUploadSize = 50 * 1024 * 1024

// YouTubeHandler treats any plain text message as a video URL and downloads it.
type YouTubeHandler struct {
	archive       Archiver
	maxUploadSize int64
	log           *zap.Logger
}

func NewYouTubeHandler(archive Archiver, logger *zap.Logger) *YouTubeHandler {
	return &YouTubeHandler{
		archive:       archive,
		maxUploadSize: MaxUploadSize,
		log:           loggerOrNop(logger, "youtube"),
	}
}

func (h *YouTubeHandler) CanHandle(update tgbotapi.Update) bool {
	return update.Message != nil &&
		!update.Message.IsCommand() &&
		strings.TrimSpace(update.Message.Text) != ""
}

func (h *YouTubeHandler) Handle(ctx context.Context, bot bot.Sender, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	url := strings.TrimSpace(update.Message.Text)

	request(bot, h.log, tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	status := send(bot, h.log, tgbotapi.NewMessage(chatID, "⏳ Downloading video, please wait..."))

	record, err := h.archive.Execute(ctx, url)
	if err != nil {
		h.log.Warn("download failed", zap.String("url", url), zap.Error(err))
		h.update(bot, chatID, status.MessageID, formatError(err))
		return
	}

	h.update(bot, chatID, status.MessageID, formatRecord(record))
	h.sendFile(bot, chatID, record)
}

// update replaces the status message, or sends a new one when there is none.
func (h *YouTubeHandler) update(bot bot.Sender, chatID int64, messageID int, text string) {
	if messageID == 0 {
		send(bot, h.log, tgbotapi.NewMessage(chatID, text))
		return
	}
	send(bot, h.log, tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func (h *YouTubeHandler) sendFile(bot bot.Sender, chatID int64, record *models.VideoRecord) {
	info, err := os.Stat(record.FilePath)
	if err != nil {
		h.log.Warn("downloaded file is missing", zap.String("path", record.FilePath), zap.Error(err))
		send(bot, h.log, tgbotapi.NewMessage(chatID, "⚠️ The file is no longer available on the server."))
		return
	}

	if info.Size() > h.maxUploadSize {
		send(bot, h.log, tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"📦 The file is too large for Telegram (%s). It is saved at %s",
			downloader.HumanSize(info.Size()), record.FilePath)))
		return
	}

	request(bot, h.log, tgbotapi.NewChatAction(chatID, tgbotapi.ChatUploadDocument))

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(record.FilePath))
	doc.Caption = record.Title
	if _, err := bot.Send(doc); err != nil {
		h.log.Error("failed to send file", zap.String("path", record.FilePath), zap.Error(err))
		send(bot, h.log, tgbotapi.NewMessage(chatID, "❌ Failed to send the file: "+err.Error()))
	}
}

func formatRecord(record *models.VideoRecord) string {
	return fmt.Sprintf("✅ Download completed!\n\nTitle: %s\nFile: %s\nDownloaded: %s",
		record.Title, record.FilePath, record.DownloadedAt.UTC().Format(timeFormat))
}

func formatError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "⚠️ Download cancelled."
	}

	switch archive.KindOf(err) {
	case archive.KindInvalidURL:
		return "❌ " + err.Error() + "\nPlease send a valid URL (e.g. https://youtube.com/watch?v=...)"
	case archive.KindDownloadFailed:
		var dlErr *archive.DownloadError
		errors.As(err, &dlErr)
		return "❌ Failed to download video: " + dlErr.Reason
	case archive.KindNotSaved:
		return "❌ The video was downloaded but could not be added to the history: " + err.Error()
	default:
		return "❌ Unexpected error: " + err.Error()
	}
}
