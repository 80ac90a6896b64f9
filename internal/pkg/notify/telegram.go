package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// sender is the part of tgbotapi.BotAPI used to deliver messages
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts notifications to a single leaders' chat
type Telegram struct {
	bot    sender
	chatID int64
}

// NewTelegram connects to the Bot API with token
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info().Str("bot", bot.Self.UserName).Int64("chatID", chatID).Msg("Telegram notifications enabled")
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Send posts text to the configured chat
func (t *Telegram) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		logger.Error().Err(err).Int64("chatID", t.chatID).Msg("Failed to send telegram message")
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
