package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/Vovarama1992/voice_translator/internal/session"
	"github.com/Vovarama1992/voice_translator/internal/speech"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	fileID := ""
	switch {
	case msg.Voice != nil:
		fileID = msg.Voice.FileID
	case msg.Audio != nil:
		fileID = msg.Audio.FileID
	}

	log.Printf("[voice] start chat=%d fileID=%s", chatID, fileID)

	path, err := app.downloadFile(ctx, fileID)
	if err != nil {
		log.Printf("[voice] download fail chat=%d err=%v", chatID, err)
		app.reply(chatID, "⚠️ Ошибка при загрузке голосового.")
		return
	}
	defer os.Remove(path)

	log.Printf("[voice] saved to %s", path)

	s := app.session(chatID)
	p := app.chatPrefs(chatID)
	before := s.TotalTranslations()

	sentThinking, _ := app.bot.Send(tgbotapi.NewMessage(chatID, "🔄 Распознаю речь…"))

	// голос -> текст -> перевод (-> голос)
	st := s.SubmitSpeech(ctx, session.SpeechRequest{
		Listener:   speech.NewClipListener(app.stt, path),
		Speaker:    app.speaker(chatID, p),
		SourceLang: p.source,
		TargetLang: p.target,
	})

	app.bot.Request(tgbotapi.NewDeleteMessage(chatID, sentThinking.MessageID))
	app.sendOutcome(chatID, s, before, st, true)

	log.Printf("[voice] done chat=%d status=%q", chatID, st.Text)
}

// downloadFile сохраняет файл телеги во временный .ogg.
func (app *BotApp) downloadFile(ctx context.Context, fileID string) (string, error) {
	url, err := app.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := app.httpCli.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: status %d", resp.StatusCode)
	}

	out, err := os.CreateTemp("", "voice_*.ogg")
	if err != nil {
		return "", fmt.Errorf("create tmp: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("save tmp: %w", err)
	}
	out.Close()

	return out.Name(), nil
}
