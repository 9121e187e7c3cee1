package speech

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/voice_translator/internal/languages"
	openai "github.com/sashabaranov/go-openai"
)

// WhisperClient — распознавание через OpenAI Whisper.
type WhisperClient struct {
	client *openai.Client
}

func NewWhisperClient(client *openai.Client) *WhisperClient {
	return &WhisperClient{client: client}
}

func (c *WhisperClient) Transcribe(ctx context.Context, filePath, languageCode string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filePath,
		Language: languages.BaseCode(languageCode),
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return resp.Text, nil
}
