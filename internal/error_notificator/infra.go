package error_notificator

import (
	"context"
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Infra struct {
	mu          sync.RWMutex
	bot         Sender
	adminChatID int64
}

func NewInfra(bot Sender, adminChatID int64) *Infra {
	return &Infra{bot: bot, adminChatID: adminChatID}
}

// SetBot — позволяет передать бота ПОСЛЕ того, как он инициализировался
func (i *Infra) SetBot(bot Sender) {
	i.mu.Lock()
	i.bot = bot
	i.mu.Unlock()
}

func (i *Infra) Notify(ctx context.Context, sessionID string, err error, details string) error {
	i.mu.RLock()
	bot := i.bot
	i.mu.RUnlock()

	if bot == nil || i.adminChatID == 0 {
		return nil
	}

	text := fmt.Sprintf(
		"❗ Ошибка в переводчике (%s)\n\nОшибка: %v\n\nДетали: %s",
		sessionID,
		err,
		details,
	)

	msg := tgbotapi.NewMessage(i.adminChatID, text)

	_, sendErr := bot.Send(msg)
	if sendErr != nil {
		log.Printf("[error_notificator] send fail: %v", sendErr)
		return sendErr
	}

	return nil
}
