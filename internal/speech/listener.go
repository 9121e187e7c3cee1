package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vovarama1992/voice_translator/internal/ai"
	"github.com/Vovarama1992/voice_translator/internal/session"
)

const defaultRecognizeTimeout = 60 * time.Second

// ClipListener — шлюз захвата речи поверх уже записанного клипа
// (загруженный файл или голосовое из телеги).
type ClipListener struct {
	stt              STTClient
	path             string
	recognizeTimeout time.Duration
}

func NewClipListener(stt STTClient, path string) *ClipListener {
	return &ClipListener{stt: stt, path: path, recognizeTimeout: defaultRecognizeTimeout}
}

// Listen: клип уже записан, ждать звук не нужно, поэтому таймаут ожидания
// речи сюда не относится. Распознавание ограничено recognizeTimeout.
func (l *ClipListener) Listen(ctx context.Context, _ time.Duration, languageHint string) (string, error) {
	if l.recognizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.recognizeTimeout)
		defer cancel()
	}

	text, err := l.stt.Transcribe(ctx, l.path, languageHint)
	if err != nil {
		return "", classify(err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", session.ErrNoSpeechUnderstood
	}
	return text, nil
}

// classify приводит ошибку провайдера к сентинелам сессии.
// Таймаут остаётся общей ошибкой.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("listen: %w", err)
	}

	var se *StatusError
	if errors.As(err, &se) {
		if se.Unavailable() {
			return fmt.Errorf("%w: %v", session.ErrSpeechServiceUnavailable, err)
		}
		return err
	}

	if ai.IsUnavailable(err) {
		return fmt.Errorf("%w: %v", session.ErrSpeechServiceUnavailable, err)
	}
	return err
}
