package handler

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/bot"
)

const helpText = "Send me a YouTube link and I will download the video and keep it in the archive.\n" +
	"A link that was already downloaded is answered from the archive right away.\n\n" +
	"Commands:\n" +
	"/history - the latest downloads\n" +
	"/help - this message"

type StartHandler struct {
	log *zap.Logger
}

func NewStartHandler(logger *zap.Logger) *StartHandler {
	return &StartHandler{log: loggerOrNop(logger, "start")}
}

func (h *StartHandler) CanHandle(update tgbotapi.Update) bool {
	if update.Message == nil || !update.Message.IsCommand() {
		return false
	}
	switch update.Message.Command() {
	case "start", "help":
		return true
	}
	return false
}

func (h *StartHandler) Handle(_ context.Context, bot bot.Sender, update tgbotapi.Update) {
	text := helpText
	if update.Message.Command() == "start" {
		var userName string
		if from := update.Message.From; from != nil {
			userName = getUserName(from.FirstName, from.UserName)
		}
		h.log.Info("greeting user", zap.String("user", userName))
		text = formatGreeting(userName) + "\n\n" + helpText
	}

	send(bot, h.log, tgbotapi.NewMessage(update.Message.Chat.ID, text))
}

func getUserName(firstName, userName string) string {
	if firstName != "" {
		return firstName
	}
	return userName
}

func formatGreeting(userName string) string {
	return "Hi, " + userName + "! Glad to see you! 👋"
}
