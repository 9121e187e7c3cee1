package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ---- fakes ----

type fakeTranslator struct {
	mu    sync.Mutex
	calls int
	err   error
	// dict[dst][text]; если нет — "[dst] text"
	dict map[string]map[string]string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (f *fakeTranslator) Translate(ctx context.Context, text, src, dst string) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if d, ok := f.dict[dst]; ok {
		if v, ok := d[text]; ok {
			return v, nil
		}
	}
	return "[" + dst + "] " + text, nil
}

type fakeListener struct {
	text    string
	err     error
	timeout time.Duration
	hint    string
	release chan struct{} // если задан — Listen ждёт его
}

func (f *fakeListener) Listen(ctx context.Context, timeout time.Duration, hint string) (string, error) {
	f.timeout = timeout
	f.hint = hint
	if f.release != nil {
		<-f.release
	}
	return f.text, f.err
}

type fakeSpeaker struct {
	spoken []string
	err    error
}

func (f *fakeSpeaker) Speak(ctx context.Context, text, lang string) error {
	f.spoken = append(f.spoken, lang+":"+text)
	return f.err
}

type fakeLanguages map[string]string

func (f fakeLanguages) NameForCode(code string) string {
	if n, ok := f[code]; ok {
		return n
	}
	return code
}

type recordingReporter struct {
	mu    sync.Mutex
	kinds []FailureKind
}

func (r *recordingReporter) Report(ctx context.Context, sessionID string, f *Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, f.Kind)
}

var testLangs = fakeLanguages{"en": "English", "es": "Spanish", "fr": "French", "de": "German"}

func newTestSession(tr Translator, opts ...Option) *Session {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	clock := func() time.Time {
		return base.Add(time.Duration(tick.Add(1)) * time.Second)
	}
	all := append([]Option{WithID("test"), WithLanguages(testLangs), WithClock(clock)}, opts...)
	return New(tr, all...)
}

func text(s *Session, t, src, dst string) Status {
	return s.SubmitText(context.Background(), TextRequest{Text: t, SourceLang: src, TargetLang: dst})
}

// ---- text path ----

func TestSubmitText_SuccessAppendsOneEntry(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeTranslator{dict: map[string]map[string]string{"es": {"Hello": "Hola"}}})

	st := text(s, "Hello", "en", "es")
	if st != StatusComplete {
		t.Fatalf("expected complete status, got %+v", st)
	}
	if s.TotalTranslations() != 1 {
		t.Errorf("expected total 1, got %d", s.TotalTranslations())
	}

	h := s.History()
	if len(h) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(h))
	}
	e := h[0]
	if e.OriginalText != "Hello" || e.TranslatedText != "Hola" {
		t.Errorf("unexpected entry texts: %+v", e)
	}
	if e.SourceLanguageName != "English" || e.TargetLanguageName != "Spanish" {
		t.Errorf("unexpected language names: %+v", e)
	}
	if e.InputType != InputText {
		t.Errorf("expected input type text, got %q", e.InputType)
	}
	if e.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	r := s.Result()
	if r.TranslatedText != "Hola" || r.TargetLanguageName != "Spanish" {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestSubmitText_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{}
	s := newTestSession(tr)
	text(s, "seed", "en", "fr")
	s.Stop()

	before := s.Snapshot()
	for _, in := range []string{"", "   ", "\n\t"} {
		st := text(s, in, "en", "fr")
		if st != before.Status {
			t.Errorf("input %q changed status to %+v", in, st)
		}
	}

	after := s.Snapshot()
	if len(after.History) != len(before.History) || after.TotalTranslations != before.TotalTranslations {
		t.Errorf("empty input mutated state: before=%+v after=%+v", before, after)
	}
	if after.Result != before.Result || after.Status != before.Status {
		t.Errorf("empty input mutated result/status")
	}
	if tr.calls != 1 {
		t.Errorf("translator must not be called for empty input, calls=%d", tr.calls)
	}
}

func TestSubmitText_InputBufferClearedOnSuccessOnly(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{err: errors.New("quota")}
	s := newTestSession(tr)

	s.SetInput("draft")
	text(s, "draft", "en", "es")
	if got := s.Snapshot().Input; got != "draft" {
		t.Errorf("input must survive failure, got %q", got)
	}

	tr.err = nil
	text(s, "draft", "en", "es")
	if got := s.Snapshot().Input; got != "" {
		t.Errorf("input must be cleared on success, got %q", got)
	}
}

func TestSubmitText_TranslationFailureKeepsState(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{}
	rep := &recordingReporter{}
	s := newTestSession(tr, WithReporter(rep))
	text(s, "one", "en", "de")
	prev := s.Snapshot()

	tr.err = errors.New("upstream 502")
	st := text(s, "two", "en", "de")

	if !st.IsError() || !strings.Contains(st.Text, "upstream 502") {
		t.Fatalf("expected error status with message, got %+v", st)
	}
	cur := s.Snapshot()
	if cur.Result != prev.Result || len(cur.History) != len(prev.History) || cur.TotalTranslations != 1 {
		t.Errorf("failure must not mutate result/history/counter")
	}
	if len(rep.kinds) != 1 || rep.kinds[0] != KindTranslationFailure {
		t.Errorf("expected one translation failure report, got %v", rep.kinds)
	}
}

func TestSubmitText_EmptyTranslationIsFailure(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeTranslator{dict: map[string]map[string]string{"es": {"x": "  "}}})
	st := text(s, "x", "en", "es")
	if !st.IsError() {
		t.Fatalf("expected error, got %+v", st)
	}
	if len(s.History()) != 0 {
		t.Error("history must stay empty")
	}
}

// ---- history bound ----

func TestHistory_FIFOEviction(t *testing.T) {
	t.Parallel()

	cfg := DefaultSettings()
	cfg.MaxHistory = 2
	s := newTestSession(&fakeTranslator{}, WithSettings(cfg))

	for _, in := range []string{"T1", "T2", "T3"} {
		text(s, in, "en", "es")
	}

	h := s.History()
	if len(h) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(h))
	}
	if h[0].OriginalText != "T2" || h[1].OriginalText != "T3" {
		t.Errorf("expected [T2 T3], got [%s %s]", h[0].OriginalText, h[1].OriginalText)
	}
	if s.TotalTranslations() != 3 {
		t.Errorf("expected total 3, got %d", s.TotalTranslations())
	}
}

func TestHistory_BoundHoldsAfterEveryAction(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeTranslator{})
	for i := 0; i < 25; i++ {
		text(s, strings.Repeat("a", i+1), "en", "es")
		if n := len(s.History()); n > s.Settings().MaxHistory {
			t.Fatalf("history %d exceeds bound %d", n, s.Settings().MaxHistory)
		}
	}

	five := 5
	if _, err := s.UpdateSettings(SettingsPatch{MaxHistory: &five}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	h := s.History()
	if len(h) != 5 {
		t.Fatalf("expected history trimmed to 5, got %d", len(h))
	}
	if h[4].OriginalText != strings.Repeat("a", 25) {
		t.Error("newest entry must survive trimming")
	}
}

func TestClearHistory_KeepsFavoritesAndCounters(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeTranslator{})
	text(s, "hello", "en", "es")
	s.SaveCurrentToFavorites()

	s.ClearHistory()

	if len(s.History()) != 0 {
		t.Error("history must be empty")
	}
	if len(s.Favorites()) != 1 {
		t.Error("favorites must survive")
	}
	if s.TotalTranslations() != 1 {
		t.Error("counter must survive")
	}
	if s.Result().IsEmpty() {
		t.Error("result must survive")
	}
}

func TestNewTranslation_ClearsResultOnly(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeTranslator{})
	text(s, "hello", "en", "es")

	st := s.NewTranslation()
	if st != StatusReady {
		t.Errorf("expected ready, got %+v", st)
	}
	if !s.Result().IsEmpty() {
		t.Error("result must be cleared")
	}
	if len(s.History()) != 1 {
		t.Error("history must stay")
	}
}

// ---- speech path ----

func TestSubmitSpeech_Success(t *testing.T) {
	t.Parallel()

	l := &fakeListener{text: " Hello "}
	sp := &fakeSpeaker{}
	s := newTestSession(&fakeTranslator{dict: map[string]map[string]string{"es": {"Hello": "Hola"}}})

	st := s.SubmitSpeech(context.Background(), SpeechRequest{
		Listener: l, Speaker: sp, SourceLang: "en", TargetLang: "es",
	})
	if st != StatusComplete {
		t.Fatalf("expected complete, got %+v", st)
	}
	if l.timeout != 5*time.Second {
		t.Errorf("expected default 5s timeout, got %v", l.timeout)
	}
	if l.hint != "en" {
		t.Errorf("expected language hint en, got %q", l.hint)
	}
	if len(sp.spoken) != 1 || sp.spoken[0] != "es:Hola" {
		t.Errorf("unexpected playback: %v", sp.spoken)
	}

	h := s.History()
	if len(h) != 1 || h[0].OriginalText != "Hello" || h[0].InputType != InputSpeech {
		t.Errorf("unexpected history: %+v", h)
	}
	if s.Snapshot().Listening {
		t.Error("listening flag must be cleared after the action")
	}
}

func TestSubmitSpeech_ExplicitTimeout(t *testing.T) {
	t.Parallel()

	l := &fakeListener{text: "hi"}
	s := newTestSession(&fakeTranslator{})
	s.SubmitSpeech(context.Background(), SpeechRequest{Listener: l, SourceLang: "en", TargetLang: "fr", Timeout: 12 * time.Second})

	if l.timeout != 12*time.Second {
		t.Errorf("expected 12s, got %v", l.timeout)
	}
}

func TestSubmitSpeech_NoSpeechUnderstood(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{}
	s := newTestSession(tr)
	text(s, "before", "en", "es")
	prev := s.Snapshot()

	st := s.SubmitSpeech(context.Background(), SpeechRequest{
		Listener:   &fakeListener{err: ErrNoSpeechUnderstood},
		SourceLang: "en",
		TargetLang: "es",
	})

	if st.Class != ClassError || st.Text == "" {
		t.Fatalf("expected non-empty error status, got %+v", st)
	}
	if st != StatusNoSpeech {
		t.Errorf("expected no-speech status, got %+v", st)
	}
	cur := s.Snapshot()
	if cur.Result != prev.Result || len(cur.History) != len(prev.History) {
		t.Error("state must be unchanged")
	}
	if tr.calls != 1 {
		t.Errorf("translator must not be called, calls=%d", tr.calls)
	}
}

func TestSubmitSpeech_FailureKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		text string
		want FailureKind
	}{
		{"unavailable", ErrSpeechServiceUnavailable, "", KindSpeechServiceUnavailable},
		{"wrapped unavailable", errors.Join(errors.New("dial tcp"), ErrSpeechServiceUnavailable), "", KindSpeechServiceUnavailable},
		{"timeout", context.DeadlineExceeded, "", KindGenericRuntimeFailure},
		{"blank transcript", nil, "   ", KindNoSpeechUnderstood},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rep := &recordingReporter{}
			s := newTestSession(&fakeTranslator{}, WithReporter(rep))
			st := s.SubmitSpeech(context.Background(), SpeechRequest{
				Listener: &fakeListener{err: tc.err, text: tc.text}, SourceLang: "en", TargetLang: "es",
			})
			if !st.IsError() {
				t.Fatalf("expected error status, got %+v", st)
			}
			if len(rep.kinds) != 1 || rep.kinds[0] != tc.want {
				t.Errorf("expected %s, got %v", tc.want, rep.kinds)
			}
			if len(s.History()) != 0 {
				t.Error("history must stay empty")
			}
		})
	}
}

func TestSubmitSpeech_NilListener(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeTranslator{})
	st := s.SubmitSpeech(context.Background(), SpeechRequest{SourceLang: "en", TargetLang: "es"})
	if !st.IsError() {
		t.Fatalf("expected error, got %+v", st)
	}
}

func TestSubmitSpeech_SynthesisFailureKeepsTranslation(t *testing.T) {
	t.Parallel()

	s := newTestSession(&fakeTranslator{})
	st := s.SubmitSpeech(context.Background(), SpeechRequest{
		Listener:   &fakeListener{text: "hello"},
		Speaker:    &fakeSpeaker{err: errors.New("no audio device")},
		SourceLang: "en",
		TargetLang: "es",
	})

	if !st.IsError() || !strings.Contains(st.Text, "Text-to-speech") {
		t.Fatalf("expected synthesis error status, got %+v", st)
	}
	if len(s.History()) != 1 || s.TotalTranslations() != 1 {
		t.Error("successful translation must be recorded even if playback fails")
	}
}

// ---- concurrency ----

func TestStop_DoesNotInterruptInFlightAction(t *testing.T) {
	t.Parallel()

	l := &fakeListener{text: "hello", release: make(chan struct{})}
	s := newTestSession(&fakeTranslator{})

	done := make(chan Status, 1)
	go func() {
		done <- s.SubmitSpeech(context.Background(), SpeechRequest{Listener: l, SourceLang: "en", TargetLang: "es"})
	}()

	waitFor(t, func() bool { return s.Status() == StatusListening })
	if !s.Snapshot().Listening {
		t.Error("expected listening flag while capture is in flight")
	}

	if st := s.Stop(); st != StatusStopped {
		t.Fatalf("expected stopped, got %+v", st)
	}
	if s.Snapshot().Listening {
		t.Error("stop must clear listening flag")
	}

	close(l.release)
	if st := <-done; st != StatusComplete {
		t.Errorf("in-flight action still completes, got %+v", st)
	}
	if len(s.History()) != 1 {
		t.Error("in-flight action must still record its result")
	}
}

func TestActions_AreSerialized(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{delay: 2 * time.Millisecond}
	cfg := DefaultSettings()
	cfg.MaxHistory = 100
	s := newTestSession(tr, WithSettings(cfg))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text(s, strings.Repeat("x", i+1), "en", "es")
		}(i)
	}
	wg.Wait()

	if got := tr.maxInFlight.Load(); got != 1 {
		t.Errorf("expected at most one translation in flight, got %d", got)
	}
	if s.TotalTranslations() != 20 || len(s.History()) != 20 {
		t.Errorf("expected 20 translations, got total=%d history=%d", s.TotalTranslations(), len(s.History()))
	}
}

func TestSubmit_CancelledWhileWaitingForSlot(t *testing.T) {
	t.Parallel()

	l := &fakeListener{text: "hello", release: make(chan struct{})}
	s := newTestSession(&fakeTranslator{})

	done := make(chan struct{})
	go func() {
		s.SubmitSpeech(context.Background(), SpeechRequest{Listener: l, SourceLang: "en", TargetLang: "es"})
		close(done)
	}()
	waitFor(t, func() bool { return s.Status() == StatusListening })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := s.SubmitText(ctx, TextRequest{Text: "queued", SourceLang: "en", TargetLang: "es"})
	if !st.IsError() {
		t.Fatalf("expected error for cancelled wait, got %+v", st)
	}
	if s.Status() != StatusListening {
		t.Errorf("cancelled wait must not clobber in-flight status, got %+v", s.Status())
	}

	close(l.release)
	<-done
	if len(s.History()) != 1 || s.History()[0].OriginalText != "hello" {
		t.Errorf("only the in-flight action must be recorded: %+v", s.History())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached in time")
		}
		time.Sleep(time.Millisecond)
	}
}
