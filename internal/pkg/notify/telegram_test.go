package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (s *stubSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}
	s.sent = append(s.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegramSend(t *testing.T) {
	stub := &stubSender{}
	tg := &Telegram{bot: stub, chatID: -100}

	require.NoError(t, tg.Send(context.Background(), "3 VIPs hoje"))
	require.Len(t, stub.sent, 1)
	assert.Equal(t, int64(-100), stub.sent[0].ChatID)
	assert.Equal(t, "3 VIPs hoje", stub.sent[0].Text)
}

func TestTelegramSendErrors(t *testing.T) {
	tg := &Telegram{bot: &stubSender{err: errors.New("blocked")}, chatID: 1}
	assert.Error(t, tg.Send(context.Background(), "x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, (&Telegram{bot: &stubSender{}, chatID: 1}).Send(ctx, "x"), context.Canceled)
}
