package speech

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// === Озвучка: синтез + доставка в sink ===

// Playback реализует session.Speaker: синтезирует перевод и ждёт доставки.
type Playback struct {
	tts  TTSClient
	sink Sink
	log  *zap.Logger
}

func NewPlayback(tts TTSClient, sink Sink, log *zap.Logger) *Playback {
	if log == nil {
		log = zap.NewNop()
	}
	return &Playback{tts: tts, sink: sink, log: log}
}

func (p *Playback) Speak(ctx context.Context, text, languageCode string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	audio, err := p.tts.Synthesize(ctx, text, languageCode)
	if err != nil {
		return err
	}
	if len(audio) == 0 {
		return fmt.Errorf("tts returned empty audio")
	}

	filename := "translation_" + languageCode + ".mp3"
	if err := p.sink.Play(ctx, audio, filename); err != nil {
		return fmt.Errorf("deliver audio: %w", err)
	}

	p.log.Debug("[speech] audio delivered",
		zap.String("lang", languageCode),
		zap.Int("bytes", len(audio)),
	)
	return nil
}

// SinkFunc — адаптер функции к Sink.
type SinkFunc func(ctx context.Context, audio []byte, filename string) error

func (f SinkFunc) Play(ctx context.Context, audio []byte, filename string) error {
	return f(ctx, audio, filename)
}
