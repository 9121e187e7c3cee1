package translation

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type stubCompletion struct {
	reply    string
	err      error
	messages []openai.ChatCompletionMessage
}

func (s *stubCompletion) GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	s.messages = messages
	return s.reply, s.err
}

type names map[string]string

func (n names) NameForCode(code string) string {
	if v, ok := n[code]; ok {
		return v
	}
	return code
}

func TestOpenAITranslator_Translate(t *testing.T) {
	t.Parallel()

	stub := &stubCompletion{reply: "  Hola mundo \n"}
	tr := NewOpenAITranslator(stub, names{"en": "English", "es": "Spanish"}, nil)

	got, err := tr.Translate(context.Background(), "Hello world", "en", "es")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Hola mundo" {
		t.Errorf("expected trimmed reply, got %q", got)
	}

	if len(stub.messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(stub.messages))
	}
	sys := stub.messages[0].Content
	if !strings.Contains(sys, "English (en)") || !strings.Contains(sys, "Spanish (es)") {
		t.Errorf("system prompt must name both languages: %q", sys)
	}
	if stub.messages[1].Content != "Hello world" || stub.messages[1].Role != openai.ChatMessageRoleUser {
		t.Errorf("unexpected user message: %+v", stub.messages[1])
	}
}

func TestOpenAITranslator_UnknownCodeKeptAsIs(t *testing.T) {
	t.Parallel()

	stub := &stubCompletion{reply: "ok"}
	tr := NewOpenAITranslator(stub, names{}, nil)
	if _, err := tr.Translate(context.Background(), "x", "tlh", "en"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if !strings.Contains(stub.messages[0].Content, "from tlh to en") {
		t.Errorf("unexpected prompt: %q", stub.messages[0].Content)
	}
}

func TestOpenAITranslator_Errors(t *testing.T) {
	t.Parallel()

	upstream := errors.New("status code: 500")
	tr := NewOpenAITranslator(&stubCompletion{err: upstream}, nil, nil)
	if _, err := tr.Translate(context.Background(), "x", "en", "es"); !errors.Is(err, upstream) {
		t.Errorf("expected wrapped upstream error, got %v", err)
	}

	tr = NewOpenAITranslator(&stubCompletion{reply: "   "}, nil, nil)
	if _, err := tr.Translate(context.Background(), "x", "en", "es"); err == nil {
		t.Error("expected error for empty reply")
	}

	if _, err := tr.Translate(context.Background(), "  ", "en", "es"); err == nil {
		t.Error("expected error for empty text")
	}
}
