package session

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки, которыми шлюз захвата речи сообщает о типовых сбоях.
var (
	ErrNoSpeechUnderstood       = errors.New("speech not understood")
	ErrSpeechServiceUnavailable = errors.New("speech service unavailable")
)

type FailureKind string

const (
	KindInputEmpty               FailureKind = "input_empty"
	KindNoSpeechUnderstood       FailureKind = "no_speech_understood"
	KindSpeechServiceUnavailable FailureKind = "speech_service_unavailable"
	KindTranslationFailure       FailureKind = "translation_failure"
	KindSynthesisFailure         FailureKind = "synthesis_failure"
	KindGenericRuntimeFailure    FailureKind = "generic_runtime_failure"
)

// Failure — сбой, пойманный на границе действия.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func (f *Failure) status() Status {
	switch f.Kind {
	case KindNoSpeechUnderstood:
		return StatusNoSpeech
	case KindSpeechServiceUnavailable:
		return StatusSTTDown
	case KindTranslationFailure:
		return errorStatus("Translation error", f.Err)
	case KindSynthesisFailure:
		return errorStatus("Text-to-speech error", f.Err)
	default:
		return errorStatus("Error", f.Err)
	}
}

// classifyCapture раскладывает ошибку шлюза захвата по видам.
func classifyCapture(err error) *Failure {
	switch {
	case errors.Is(err, ErrNoSpeechUnderstood):
		return &Failure{Kind: KindNoSpeechUnderstood, Err: err}
	case errors.Is(err, ErrSpeechServiceUnavailable):
		return &Failure{Kind: KindSpeechServiceUnavailable, Err: err}
	default:
		return &Failure{Kind: KindGenericRuntimeFailure, Err: err}
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError перечисляет все неверные поля патча настроек.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid settings: " + strings.Join(parts, "; ")
}
