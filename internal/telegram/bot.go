package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `🌐 Переводчик

Отправь текст или голосовое — пришлю перевод.

/lang <откуда> <куда> — языковая пара (коды или названия)
/from <язык>, /to <язык> — поменять один из языков
/history [поиск] — последние переводы
/fav — в избранное, /favorites — избранное
/stats — статистика, /export — история в CSV
/settings, /set <поле> <значение>, /reset — настройки
/voice on|off — озвучка перевода
/new — новый перевод, /clear — очистить историю, /stop — стоп`

func (app *BotApp) dispatchUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		app.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		app.handleCallback(ctx, update.CallbackQuery)
	}
}

func (app *BotApp) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log.Printf("[bot_touch] chat=%d message=%d", chatID, msg.MessageID)

	if msg.IsCommand() {
		app.handleCommand(ctx, msg)
		return
	}

	// =====================================================
	// КНОПКИ ГЛАВНОЙ КЛАВИАТУРЫ (точное совпадение: любой другой текст переводим)
	// =====================================================
	switch msg.Text {
	case btnHistory:
		app.sendHistory(chatID, "")
		return
	case btnFavorites:
		app.sendFavorites(chatID)
		return
	case btnStats:
		app.sendStats(chatID)
		return
	case btnLanguages:
		app.sendLanguagePicker(chatID)
		return
	case btnNew:
		app.reply(chatID, app.session(chatID).NewTranslation().Text)
		return
	case btnClear:
		app.session(chatID).ClearHistory()
		app.reply(chatID, "История очищена.")
		return
	}

	switch {
	case msg.Voice != nil:
		app.handleVoice(ctx, msg)
	case msg.Audio != nil:
		app.handleVoice(ctx, msg)
	case msg.Text != "":
		app.handleText(ctx, msg)
	default:
		app.reply(chatID, "📎 Отправь текст или голосовое.")
	}
}

func (app *BotApp) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())
	s := app.session(chatID)

	switch msg.Command() {
	case "start", "help":
		m := tgbotapi.NewMessage(chatID, helpText)
		m.ReplyMarkup = app.BuildMainKeyboard()
		app.bot.Send(m)

	case "lang":
		if len(args) != 2 {
			p := app.chatPrefs(chatID)
			app.reply(chatID, fmt.Sprintf("Сейчас: %s → %s\nПример: /lang en fr", app.langs.NameForCode(p.source), app.langs.NameForCode(p.target)))
			return
		}
		app.setLanguages(chatID, args[0], args[1])

	case "from":
		if len(args) != 1 {
			app.reply(chatID, "Пример: /from english")
			return
		}
		app.setLanguages(chatID, args[0], "")

	case "to":
		if len(args) != 1 {
			app.sendLanguagePicker(chatID)
			return
		}
		app.setLanguages(chatID, "", args[0])

	case "swap":
		p := app.updatePrefs(chatID, func(p *chatPrefs) { p.source, p.target = p.target, p.source })
		app.reply(chatID, fmt.Sprintf("🔁 %s → %s", app.langs.NameForCode(p.source), app.langs.NameForCode(p.target)))

	case "history":
		app.sendHistory(chatID, strings.Join(args, " "))

	case "fav":
		if s.SaveCurrentToFavorites() {
			app.reply(chatID, "⭐ Сохранено в избранное.")
		} else {
			app.reply(chatID, "Нечего сохранять или уже в избранном.")
		}

	case "favorites":
		app.sendFavorites(chatID)

	case "clear":
		s.ClearHistory()
		app.reply(chatID, "История очищена.")

	case "new":
		app.reply(chatID, s.NewTranslation().Text)

	case "stop":
		app.reply(chatID, s.Stop().Text)

	case "stats":
		app.sendStats(chatID)

	case "export":
		app.sendExport(chatID)

	case "settings":
		app.reply(chatID, formatSettings(s.Settings()))

	case "set":
		app.handleSet(chatID, args)

	case "reset":
		app.reply(chatID, "Настройки сброшены.\n\n"+formatSettings(s.ResetSettings()))

	case "voice":
		app.handleVoiceToggle(chatID, args)

	default:
		app.reply(chatID, "Неизвестная команда. /help — список команд.")
	}
}

func (app *BotApp) setLanguages(chatID int64, source, target string) {
	var src, dst string
	if source != "" {
		if src = app.langs.Resolve(source); !app.langs.Known(src) {
			app.reply(chatID, "❓ Не знаю язык: "+source)
			return
		}
	}
	if target != "" {
		if dst = app.langs.Resolve(target); !app.langs.Known(dst) {
			app.reply(chatID, "❓ Не знаю язык: "+target)
			return
		}
	}

	p := app.updatePrefs(chatID, func(p *chatPrefs) {
		if src != "" {
			p.source = src
		}
		if dst != "" {
			p.target = dst
		}
	})
	app.reply(chatID, fmt.Sprintf("🌐 %s → %s", app.langs.NameForCode(p.source), app.langs.NameForCode(p.target)))
}

func (app *BotApp) handleVoiceToggle(chatID int64, args []string) {
	if app.tts == nil {
		app.reply(chatID, "🔇 Озвучка не настроена.")
		return
	}
	on := len(args) == 0 || args[0] == "on"
	app.updatePrefs(chatID, func(p *chatPrefs) { p.speak = on })
	if on {
		app.reply(chatID, "🔊 Озвучка включена.")
	} else {
		app.reply(chatID, "🔇 Озвучка выключена.")
	}
}

func (app *BotApp) reply(chatID int64, text string) {
	if _, err := app.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("[bot] send fail chat=%d err=%v", chatID, err)
	}
}
