package session

import (
	"context"
	"time"
)

// Translator — шлюз машинного перевода.
type Translator interface {
	Translate(ctx context.Context, text, srcCode, dstCode string) (string, error)
}

// Listener — шлюз захвата речи. Ошибки: ErrNoSpeechUnderstood,
// ErrSpeechServiceUnavailable, всё остальное считается общим сбоем.
type Listener interface {
	Listen(ctx context.Context, timeout time.Duration, languageHint string) (string, error)
}

// Speaker синтезирует и проигрывает текст, возвращается после окончания проигрывания.
type Speaker interface {
	Speak(ctx context.Context, text, languageCode string) error
}

type Languages interface {
	NameForCode(code string) string
}

// Reporter получает все сбои, пойманные действиями сессии.
type Reporter interface {
	Report(ctx context.Context, sessionID string, f *Failure)
}
