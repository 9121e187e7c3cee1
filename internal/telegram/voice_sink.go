package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// voiceSink — доставка озвучки голосовым сообщением в чат.
type voiceSink struct {
	bot    API
	chatID int64
}

func (v voiceSink) Play(ctx context.Context, audio []byte, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	voice := tgbotapi.NewVoice(v.chatID, tgbotapi.FileBytes{Name: filename, Bytes: audio})
	if _, err := v.bot.Send(voice); err != nil {
		return fmt.Errorf("send voice: %w", err)
	}
	return nil
}
