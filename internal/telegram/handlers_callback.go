package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	// всегда отвечаем Telegram
	app.bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	log.Printf("[callback] chat=%d data=%s", chatID, data)

	switch {
	// ---------------------------
	// выбор языка перевода
	// ---------------------------
	case strings.HasPrefix(data, "dst:"):
		code := strings.TrimPrefix(data, "dst:")
		if !app.langs.Known(code) {
			app.reply(chatID, "❓ Не знаю язык: "+code)
			return
		}
		p := app.updatePrefs(chatID, func(p *chatPrefs) { p.target = code })

		// убираем inline
		app.bot.Request(tgbotapi.NewEditMessageReplyMarkup(
			chatID,
			cb.Message.MessageID,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
		))
		app.reply(chatID, fmt.Sprintf("🌐 %s → %s", app.langs.NameForCode(p.source), app.langs.NameForCode(p.target)))

	case data == "swap":
		p := app.updatePrefs(chatID, func(p *chatPrefs) { p.source, p.target = p.target, p.source })
		app.reply(chatID, fmt.Sprintf("🔁 %s → %s", app.langs.NameForCode(p.source), app.langs.NameForCode(p.target)))

	case data == "fav_current":
		if app.session(chatID).SaveCurrentToFavorites() {
			app.reply(chatID, "⭐ Сохранено в избранное.")
		} else {
			app.reply(chatID, "Уже в избранном.")
		}
	}
}
