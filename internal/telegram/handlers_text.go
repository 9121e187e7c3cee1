package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Vovarama1992/voice_translator/internal/session"
	"github.com/Vovarama1992/voice_translator/internal/speech"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	log.Printf("[text] start chat=%d", chatID)

	s := app.session(chatID)
	p := app.chatPrefs(chatID)
	before := s.TotalTranslations()

	// === 0. индикатор ===
	sentThinking, _ := app.bot.Send(tgbotapi.NewMessage(chatID, "✨ Перевожу…"))

	// === 1. перевод (+ озвучка) ===
	st := s.SubmitText(ctx, session.TextRequest{
		Text:       msg.Text,
		Speaker:    app.speaker(chatID, p),
		SourceLang: p.source,
		TargetLang: p.target,
	})

	// === 2. удаляем индикатор ===
	app.bot.Request(tgbotapi.NewDeleteMessage(chatID, sentThinking.MessageID))

	// === 3. ответ ===
	app.sendOutcome(chatID, s, before, st, false)

	log.Printf("[text] done chat=%d status=%q", chatID, st.Text)
}

// sendOutcome отправляет перевод, если он состоялся, и статус, если это ошибка.
// Ошибка озвучки не отменяет перевод, поэтому возможны оба сообщения.
func (app *BotApp) sendOutcome(chatID int64, s *session.Session, before int, st session.Status, showOriginal bool) {
	if s.TotalTranslations() > before {
		m := tgbotapi.NewMessage(chatID, formatResult(s.Result(), showOriginal))
		m.ReplyMarkup = resultKeyboard()
		app.bot.Send(m)
	}
	if st.IsError() {
		app.reply(chatID, st.Text)
	}
}

func (app *BotApp) speaker(chatID int64, p chatPrefs) session.Speaker {
	if !p.speak || app.tts == nil {
		return nil
	}
	return speech.NewPlayback(app.tts, voiceSink{bot: app.bot, chatID: chatID}, app.log)
}

func formatResult(r session.TranslationResult, showOriginal bool) string {
	var b strings.Builder
	if showOriginal {
		fmt.Fprintf(&b, "🗣 %s: %s\n\n", r.SourceLanguageName, r.OriginalText)
	}
	fmt.Fprintf(&b, "🌐 %s:\n%s", r.TargetLanguageName, r.TranslatedText)
	return b.String()
}
