package speech

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAITTS — озвучка через OpenAI tts-1. Язык модель определяет по тексту.
type OpenAITTS struct {
	client *openai.Client
	voice  openai.SpeechVoice
}

func NewOpenAITTS(client *openai.Client) *OpenAITTS {
	return &OpenAITTS{client: client, voice: openai.VoiceAlloy}
}

func (t *OpenAITTS) Synthesize(ctx context.Context, text, _ string) ([]byte, error) {
	resp, err := t.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          t.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai tts: %w", err)
	}
	defer resp.Close()

	return io.ReadAll(resp)
}
