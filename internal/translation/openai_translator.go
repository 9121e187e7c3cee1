package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type CompletionClient interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

type Languages interface {
	NameForCode(code string) string
}

// OpenAITranslator переводит через chat completion.
type OpenAITranslator struct {
	client    CompletionClient
	languages Languages
	timeout   time.Duration
	log       *zap.Logger
}

func NewOpenAITranslator(client CompletionClient, languages Languages, log *zap.Logger) *OpenAITranslator {
	if log == nil {
		log = zap.NewNop()
	}
	return &OpenAITranslator{
		client:    client,
		languages: languages,
		timeout:   60 * time.Second,
		log:       log,
	}
}

const systemPrompt = `You are a translation engine.
Translate the user's message from %s to %s.
Return ONLY the translated text: no quotes, no explanations, no transliteration.
If the text is already in %s, return it unchanged.`

func (t *OpenAITranslator) Translate(ctx context.Context, text, srcCode, dstCode string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty text")
	}

	src, dst := t.describe(srcCode), t.describe(dstCode)
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, src, dst, dst)},
		{Role: openai.ChatMessageRoleUser, Content: text},
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	reply, err := t.client.GetCompletion(ctx, messages)
	t.log.Debug("[translate] completion done",
		zap.String("src", srcCode),
		zap.String("dst", dstCode),
		zap.Duration("took", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return "", fmt.Errorf("openai translate %s→%s: %w", srcCode, dstCode, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("openai translate %s→%s: empty reply", srcCode, dstCode)
	}
	return reply, nil
}

// describe: "es" → "Spanish (es)". Код оставляем, чтобы модель не путала варианты (zh-cn/zh-tw).
func (t *OpenAITranslator) describe(code string) string {
	if t.languages == nil {
		return code
	}
	name := t.languages.NameForCode(code)
	if name == code {
		return code
	}
	return name + " (" + code + ")"
}
