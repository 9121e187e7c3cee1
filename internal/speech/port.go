package speech

import (
	"context"
	"fmt"
)

type STTClient interface {
	Transcribe(ctx context.Context, filePath, languageCode string) (string, error) // голос → текст
}

type TTSClient interface {
	Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) // текст → mp3
}

// Sink доставляет готовое аудио слушателю и возвращается после доставки.
type Sink interface {
	Play(ctx context.Context, audio []byte, filename string) error
}

// StatusError — ответ провайдера с не-2xx кодом.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Provider, e.Code, e.Body)
}

// Unavailable: 5xx и 429.
func (e *StatusError) Unavailable() bool {
	return e.Code >= 500 || e.Code == 429
}
