package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Vovarama1992/voice_translator/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const historyPageSize = 5

func (app *BotApp) sendHistory(chatID int64, query string) {
	entries := app.session(chatID).Recent(query, historyPageSize)
	if len(entries) == 0 {
		if query != "" {
			app.reply(chatID, "Ничего не найдено.")
		} else {
			app.reply(chatID, "История пуста.")
		}
		return
	}
	app.reply(chatID, "📜 История\n\n"+formatEntries(entries))
}

func (app *BotApp) sendFavorites(chatID int64) {
	favs := app.session(chatID).Favorites()
	if len(favs) == 0 {
		app.reply(chatID, "Избранное пусто.")
		return
	}
	app.reply(chatID, "⭐ Избранное\n\n"+formatEntries(favs))
}

func (app *BotApp) sendStats(chatID int64) {
	s := app.session(chatID)
	if !s.Settings().ShowStats {
		app.reply(chatID, "Статистика скрыта. Включить: /set show_stats on")
		return
	}
	app.reply(chatID, formatStats(s.Stats()))
}

func (app *BotApp) sendExport(chatID int64) {
	data := app.session(chatID).ExportHistory()
	if data == nil {
		app.reply(chatID, "История пуста.")
		return
	}
	name := "translation_history_" + time.Now().Format("20060102_150405") + ".csv"
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := app.bot.Send(doc); err != nil {
		app.reply(chatID, "⚠️ Не удалось отправить файл.")
	}
}

func (app *BotApp) sendLanguagePicker(chatID int64) {
	p := app.chatPrefs(chatID)
	m := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Сейчас: %s → %s\nВыбери язык перевода или /lang <откуда> <куда>:",
		app.langs.NameForCode(p.source), app.langs.NameForCode(p.target),
	))
	m.ReplyMarkup = app.BuildLanguageKeyboard()
	app.bot.Send(m)
}

// handleSet: /set max_history 20, /set theme dark, /set show_stats off.
func (app *BotApp) handleSet(chatID int64, args []string) {
	if len(args) != 2 {
		app.reply(chatID, "Пример: /set max_history 20\nПоля: max_history, speech_timeout, theme, show_stats")
		return
	}

	patch, err := parsePatch(args[0], args[1])
	if err != nil {
		app.reply(chatID, "⚠️ "+err.Error())
		return
	}

	cfg, err := app.session(chatID).UpdateSettings(patch)
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		lines := make([]string, len(verr.Fields))
		for i, f := range verr.Fields {
			lines[i] = "• " + f.Field + ": " + f.Message
		}
		app.reply(chatID, "⚠️ Неверные настройки:\n"+strings.Join(lines, "\n"))
		return
	}
	if err != nil {
		app.reply(chatID, "⚠️ "+err.Error())
		return
	}
	app.reply(chatID, "✅ Сохранено.\n\n"+formatSettings(cfg))
}

func parsePatch(field, value string) (session.SettingsPatch, error) {
	var p session.SettingsPatch
	switch field {
	case "max_history", "speech_timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return p, fmt.Errorf("%s: нужно целое число", field)
		}
		if field == "max_history" {
			p.MaxHistory = &n
		} else {
			p.SpeechTimeout = &n
		}
	case "theme":
		p.Theme = &value
	case "show_stats":
		var on bool
		switch strings.ToLower(value) {
		case "on", "true", "yes", "1":
			on = true
		case "off", "false", "no", "0":
		default:
			return p, fmt.Errorf("show_stats: on или off")
		}
		p.ShowStats = &on
	default:
		return p, fmt.Errorf("неизвестное поле %q", field)
	}
	return p, nil
}

func formatEntries(entries []session.HistoryEntry) string {
	var b strings.Builder
	for i, e := range entries {
		icon := "⌨️"
		if e.InputType == session.InputSpeech {
			icon = "🎙"
		}
		fmt.Fprintf(&b, "%d. %s %s %s → %s\n%s\n→ %s\n\n",
			i+1, icon, e.Timestamp.Format("15:04"),
			e.SourceLanguageName, e.TargetLanguageName,
			e.OriginalText, e.TranslatedText,
		)
	}
	return strings.TrimSpace(b.String())
}

func formatStats(st session.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Статистика\n\nПереводов: %d\nСессия: %s\n", st.TotalTranslations, st.DurationLabel())
	if st.MostUsedTarget != "" {
		fmt.Fprintf(&b, "Чаще всего: %s\n", st.MostUsedTarget)
	}
	for _, c := range st.TargetCounts {
		fmt.Fprintf(&b, "• %s: %d\n", c.Language, c.Count)
	}
	return strings.TrimSpace(b.String())
}

func formatSettings(cfg session.Settings) string {
	stats := "off"
	if cfg.ShowStats {
		stats = "on"
	}
	return fmt.Sprintf(
		"⚙️ Настройки\n\nmax_history: %d\nspeech_timeout: %d с\ntheme: %s\nshow_stats: %s",
		cfg.MaxHistory, cfg.SpeechTimeout, cfg.Theme, stats,
	)
}
