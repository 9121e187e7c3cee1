package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	btnHistory   = "📜 История"
	btnFavorites = "⭐ Избранное"
	btnStats     = "📊 Статистика"
	btnLanguages = "🌐 Языки"
	btnNew       = "🆕 Новый перевод"
	btnClear     = "🗑 Очистить историю"
)

// быстрый выбор языка перевода
var quickTargets = []string{"en", "es", "fr", "de", "it", "pt", "ru", "uk", "tr", "ar", "zh-cn", "ja"}

func (app *BotApp) BuildMainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	row1 := tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnLanguages),
		tgbotapi.NewKeyboardButton(btnNew),
	)

	row2 := tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnHistory),
		tgbotapi.NewKeyboardButton(btnFavorites),
	)

	row3 := tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnStats),
		tgbotapi.NewKeyboardButton(btnClear),
	)

	kb := tgbotapi.NewReplyKeyboard(row1, row2, row3)
	kb.ResizeKeyboard = true
	return kb
}

// BuildLanguageKeyboard — по три языка в ряд, callback "dst:<code>".
func (app *BotApp) BuildLanguageKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, code := range quickTargets {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(app.langs.NameForCode(code), "dst:"+code))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔁 Поменять местами", "swap"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// resultKeyboard — кнопка под переводом.
func resultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ В избранное", "fav_current"),
		),
	)
}
