package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type FavoritesPolicy int

const (
	// FavoritesDedupe не добавляет запись, равную по значению уже сохранённой.
	FavoritesDedupe FavoritesPolicy = iota
	FavoritesAllowDuplicates
)

func ParseFavoritesPolicy(v string) (FavoritesPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "dedupe":
		return FavoritesDedupe, nil
	case "allow":
		return FavoritesAllowDuplicates, nil
	}
	return FavoritesDedupe, fmt.Errorf("unknown favorites policy %q", v)
}

type Option func(*Session)

func WithID(id string) Option { return func(s *Session) { s.id = id } }

func WithLanguages(l Languages) Option { return func(s *Session) { s.languages = l } }

func WithReporter(r Reporter) Option { return func(s *Session) { s.reporter = r } }

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

func WithFavoritesPolicy(p FavoritesPolicy) Option { return func(s *Session) { s.policy = p } }

// WithSettings задаёт стартовые настройки без проверки диапазонов
// (это конфигурация сервера, а не пользовательский ввод).
func WithSettings(cfg Settings) Option {
	return func(s *Session) {
		if cfg.MaxHistory < 1 {
			cfg.MaxHistory = 1
		}
		if cfg.SpeechTimeout < 1 {
			cfg.SpeechTimeout = 1
		}
		s.settings = cfg
	}
}

// Session — состояние одного пользователя: статус, текущий результат,
// история, избранное и настройки.
//
// Действия (SubmitSpeech, SubmitText) выполняются строго по одному: слот
// занимается на всё время действия, включая вызовы шлюзов. Поля защищены
// отдельным mu, который держится только на время чтения/записи, поэтому
// Snapshot и Stop доступны, пока действие ждёт шлюз.
type Session struct {
	id         string
	translator Translator
	languages  Languages
	reporter   Reporter
	log        *zap.Logger
	now        func() time.Time
	policy     FavoritesPolicy

	slot chan struct{}

	mu        sync.RWMutex
	status    Status
	result    TranslationResult
	history   []HistoryEntry
	favorites []HistoryEntry
	settings  Settings
	input     string
	listening bool
	total     int
	startTime time.Time
}

func New(translator Translator, opts ...Option) *Session {
	s := &Session{
		translator: translator,
		log:        zap.NewNop(),
		now:        time.Now,
		policy:     FavoritesDedupe,
		slot:       make(chan struct{}, 1),
		status:     StatusReady,
		settings:   DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startTime = s.now()
	s.log = s.log.With(zap.String("session_id", s.id))
	return s
}

func (s *Session) ID() string { return s.id }

type SpeechRequest struct {
	Listener   Listener
	Speaker    Speaker // nil — без озвучки
	SourceLang string
	TargetLang string
	Timeout    time.Duration // 0 — из настроек
}

type TextRequest struct {
	Text       string
	Speaker    Speaker
	SourceLang string
	TargetLang string
}

// =========================================================================
// ДЕЙСТВИЯ
// =========================================================================

// SubmitSpeech: Preparing → Listening → Processing → Ready|Error.
func (s *Session) SubmitSpeech(ctx context.Context, req SpeechRequest) Status {
	if err := s.acquire(ctx); err != nil {
		return (&Failure{Kind: KindGenericRuntimeFailure, Err: err}).status()
	}
	defer s.release()

	if req.Listener == nil {
		return s.fail(ctx, &Failure{Kind: KindGenericRuntimeFailure, Err: errors.New("no audio source")})
	}

	s.mu.Lock()
	s.listening = true
	s.status = StatusPreparing
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = time.Duration(s.settings.SpeechTimeout) * time.Second
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.listening = false
		s.mu.Unlock()
	}()

	s.setStatus(StatusListening)
	s.log.Debug("listening", zap.Duration("timeout", timeout), zap.String("lang", req.SourceLang))

	spoken, err := req.Listener.Listen(ctx, timeout, req.SourceLang)
	if err != nil {
		return s.fail(ctx, classifyCapture(err))
	}

	s.setStatus(StatusRecognizing)
	spoken = strings.TrimSpace(spoken)
	if spoken == "" {
		return s.fail(ctx, classifyCapture(ErrNoSpeechUnderstood))
	}

	return s.translate(ctx, spoken, req.SourceLang, req.TargetLang, InputSpeech, req.Speaker)
}

// SubmitText: пустой ввод игнорируется без изменения статуса.
func (s *Session) SubmitText(ctx context.Context, req TextRequest) Status {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return s.Status()
	}

	if err := s.acquire(ctx); err != nil {
		return (&Failure{Kind: KindGenericRuntimeFailure, Err: err}).status()
	}
	defer s.release()

	return s.translate(ctx, text, req.SourceLang, req.TargetLang, InputText, req.Speaker)
}

func (s *Session) translate(ctx context.Context, text, src, dst, inputType string, speaker Speaker) Status {
	s.setStatus(StatusTranslating)

	if s.translator == nil {
		return s.fail(ctx, &Failure{Kind: KindGenericRuntimeFailure, Err: errors.New("translator not configured")})
	}

	start := s.now()
	translated, err := s.translator.Translate(ctx, text, src, dst)
	if err != nil {
		return s.fail(ctx, &Failure{Kind: KindTranslationFailure, Err: err})
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		return s.fail(ctx, &Failure{Kind: KindTranslationFailure, Err: errors.New("empty translation")})
	}

	srcName, dstName := s.nameFor(src), s.nameFor(dst)
	entry := HistoryEntry{
		Timestamp:          s.now(),
		OriginalText:       text,
		TranslatedText:     translated,
		SourceLanguageCode: src,
		TargetLanguageCode: dst,
		SourceLanguageName: srcName,
		TargetLanguageName: dstName,
		InputType:          inputType,
	}

	s.mu.Lock()
	s.total++
	s.result = TranslationResult{
		OriginalText:       text,
		TranslatedText:     translated,
		SourceLanguageName: srcName,
		TargetLanguageName: dstName,
	}
	s.history = append(s.history, entry)
	s.trimHistoryLocked()
	if inputType == InputText {
		s.input = ""
	}
	s.mu.Unlock()

	s.log.Info("translated",
		zap.String("input", inputType),
		zap.String("src", src),
		zap.String("dst", dst),
		zap.Duration("took", s.now().Sub(start)),
	)

	if speaker != nil {
		if err := speaker.Speak(ctx, translated, dst); err != nil {
			return s.fail(ctx, &Failure{Kind: KindSynthesisFailure, Err: err})
		}
	}

	s.setStatus(StatusComplete)
	return StatusComplete
}

// Stop только меняет статус: уже запущенный вызов шлюза не прерывается,
// и действие по завершении выставит свой итоговый статус.
func (s *Session) Stop() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = false
	s.status = StatusStopped
	return s.status
}

func (s *Session) NewTranslation() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = TranslationResult{}
	s.status = StatusReady
	return s.status
}

func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

func (s *Session) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

// =========================================================================
// ИЗБРАННОЕ
// =========================================================================

// SaveCurrentToFavorites добавляет последнюю запись истории, если есть текущий результат.
func (s *Session) SaveCurrentToFavorites() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result.IsEmpty() || len(s.history) == 0 {
		return false
	}
	return s.addFavoriteLocked(s.history[len(s.history)-1])
}

func (s *Session) SaveToFavorites(e HistoryEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addFavoriteLocked(e)
}

func (s *Session) addFavoriteLocked(e HistoryEntry) bool {
	if s.policy == FavoritesDedupe {
		for _, f := range s.favorites {
			if f.Equal(e) {
				return false
			}
		}
	}
	s.favorites = append(s.favorites, e)
	return true
}

// =========================================================================
// ЧТЕНИЕ
// =========================================================================

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) Result() TranslationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

func (s *Session) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.history)
}

func (s *Session) Favorites() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.favorites)
}

func (s *Session) TotalTranslations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:                s.id,
		Status:            s.status,
		Result:            s.result,
		History:           cloneEntries(s.history),
		Favorites:         cloneEntries(s.favorites),
		Settings:          s.settings,
		Input:             s.input,
		Listening:         s.listening,
		TotalTranslations: s.total,
		StartTime:         s.startTime,
	}
}

// =========================================================================
// ВНУТРЕННЕЕ
// =========================================================================

func (s *Session) acquire(ctx context.Context) error {
	select {
	case s.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) release() { <-s.slot }

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Session) fail(ctx context.Context, f *Failure) Status {
	st := f.status()
	s.setStatus(st)

	s.log.Warn("action failed", zap.String("kind", string(f.Kind)), zap.Error(f.Err))
	if s.reporter != nil {
		s.reporter.Report(ctx, s.id, f)
	}
	return st
}

// trimHistoryLocked выкидывает самые старые записи сверх лимита.
func (s *Session) trimHistoryLocked() {
	limit := s.settings.MaxHistory
	if n := len(s.history); n > limit {
		s.history = append([]HistoryEntry(nil), s.history[n-limit:]...)
	}
}

func (s *Session) nameFor(code string) string {
	if s.languages == nil {
		return code
	}
	return s.languages.NameForCode(code)
}

func cloneEntries(in []HistoryEntry) []HistoryEntry {
	if len(in) == 0 {
		return nil
	}
	return append([]HistoryEntry(nil), in...)
}
