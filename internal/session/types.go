package session

import "time"

type StatusClass string

const (
	ClassReady      StatusClass = "ready"
	ClassListening  StatusClass = "listening"
	ClassProcessing StatusClass = "processing"
	ClassError      StatusClass = "error"
)

type Status struct {
	Text  string      `json:"text"`
	Class StatusClass `json:"class"`
}

func (s Status) IsError() bool { return s.Class == ClassError }

var (
	StatusReady       = Status{Text: "Ready to translate", Class: ClassReady}
	StatusPreparing   = Status{Text: "🎙️ Preparing to listen...", Class: ClassListening}
	StatusListening   = Status{Text: "🎙️ Listening...", Class: ClassListening}
	StatusRecognizing = Status{Text: "🔄 Processing speech...", Class: ClassProcessing}
	StatusTranslating = Status{Text: "✨ Translating...", Class: ClassProcessing}
	StatusComplete    = Status{Text: "✅ Translation complete", Class: ClassReady}
	StatusStopped     = Status{Text: "🛑 Stopped", Class: ClassReady}
	StatusNoSpeech    = Status{Text: "❓ Could not understand audio", Class: ClassError}
	StatusSTTDown     = Status{Text: "❌ Speech recognition error", Class: ClassError}
)

func errorStatus(prefix string, err error) Status {
	return Status{Text: "❌ " + prefix + ": " + err.Error(), Class: ClassError}
}

const (
	InputText   = "text"
	InputSpeech = "speech"
)

type TranslationResult struct {
	OriginalText       string `json:"original_text"`
	TranslatedText     string `json:"translated_text"`
	SourceLanguageName string `json:"source_language_name"`
	TargetLanguageName string `json:"target_language_name"`
}

func (r TranslationResult) IsEmpty() bool {
	return r == TranslationResult{}
}

// HistoryEntry неизменяем после создания, передаётся по значению.
type HistoryEntry struct {
	Timestamp          time.Time `json:"timestamp"`
	OriginalText       string    `json:"original_text"`
	TranslatedText     string    `json:"translated_text"`
	SourceLanguageCode string    `json:"source_language_code"`
	TargetLanguageCode string    `json:"target_language_code"`
	SourceLanguageName string    `json:"source_language_name"`
	TargetLanguageName string    `json:"target_language_name"`
	InputType          string    `json:"input_type,omitempty"`
}

// Equal сравнивает записи по значению. Время сравнивается через time.Equal,
// чтобы не зависеть от монотонной составляющей и локали.
func (e HistoryEntry) Equal(o HistoryEntry) bool {
	return e.Timestamp.Equal(o.Timestamp) &&
		e.OriginalText == o.OriginalText &&
		e.TranslatedText == o.TranslatedText &&
		e.SourceLanguageCode == o.SourceLanguageCode &&
		e.TargetLanguageCode == o.TargetLanguageCode &&
		e.SourceLanguageName == o.SourceLanguageName &&
		e.TargetLanguageName == o.TargetLanguageName &&
		e.InputType == o.InputType
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type Settings struct {
	MaxHistory    int   `json:"max_history"`
	SpeechTimeout int   `json:"speech_timeout"` // секунды
	Theme         Theme `json:"theme"`
	ShowStats     bool  `json:"show_stats"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxHistory:    10,
		SpeechTimeout: 5,
		Theme:         ThemeLight,
		ShowStats:     true,
	}
}

// SettingsPatch — частичное обновление, nil-поля не трогаются.
type SettingsPatch struct {
	MaxHistory    *int    `json:"max_history,omitempty"`
	SpeechTimeout *int    `json:"speech_timeout,omitempty"`
	Theme         *string `json:"theme,omitempty"`
	ShowStats     *bool   `json:"show_stats,omitempty"`
}

type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type Stats struct {
	TotalTranslations int             `json:"total_translations"`
	SessionDuration   time.Duration   `json:"session_duration"`
	MostUsedTarget    string          `json:"most_used_target"`
	TargetCounts      []LanguageCount `json:"target_counts"`
}

// Snapshot — копия состояния для отрисовки.
type Snapshot struct {
	ID                string            `json:"id"`
	Status            Status            `json:"status"`
	Result            TranslationResult `json:"result"`
	History           []HistoryEntry    `json:"history"`
	Favorites         []HistoryEntry    `json:"favorites"`
	Settings          Settings          `json:"settings"`
	Input             string            `json:"input"`
	Listening         bool              `json:"listening"`
	TotalTranslations int               `json:"total_translations"`
	StartTime         time.Time         `json:"start_time"`
}
