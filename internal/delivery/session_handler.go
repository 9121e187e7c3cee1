package delivery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice_translator/internal/languages"
	"github.com/Vovarama1992/voice_translator/internal/session"
	"github.com/Vovarama1992/voice_translator/internal/speech"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

const (
	defaultSource = "en"
	defaultTarget = "es"
	maxUpload     = 20 << 20
)

// AudioStore — куда HTTP-фронт кладёт озвучку (S3).
type AudioStore interface {
	PutAudio(ctx context.Context, sessionID string, audio []byte) (string, error)
}

type SessionHandler struct {
	registry *session.Registry
	langs    *languages.Directory
	stt      speech.STTClient
	tts      speech.TTSClient // nil — озвучка выключена
	audio    AudioStore       // nil — озвучка выключена
	log      *logger.ZapLogger
}

func NewSessionHandler(
	registry *session.Registry,
	langs *languages.Directory,
	stt speech.STTClient,
	tts speech.TTSClient,
	audio AudioStore,
	log *logger.ZapLogger,
) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		langs:    langs,
		stt:      stt,
		tts:      tts,
		audio:    audio,
		log:      log,
	}
}

type actionResponse struct {
	Status   session.Status            `json:"status"`
	Result   session.TranslationResult `json:"result"`
	AudioURL string                    `json:"audio_url,omitempty"`
}

// =========================================================================
// СЕССИИ
// =========================================================================

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Create()
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.registry.Delete(chi.URLParam(r, "id")) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =========================================================================
// ПЕРЕВОД
// =========================================================================

func (h *SessionHandler) TranslateText(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Text   *string `json:"text"` // nil — берём буфер ввода
		Source string  `json:"source"`
		Target string  `json:"target"`
		Speak  bool    `json:"speak"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	src, dst, ok := h.pair(w, req.Source, req.Target)
	if !ok {
		return
	}

	text := s.Snapshot().Input
	if req.Text != nil {
		text = *req.Text
	}

	sink := h.sink(s.ID(), req.Speak)
	st := s.SubmitText(r.Context(), session.TextRequest{
		Text:       text,
		Speaker:    sink.speaker(h.tts),
		SourceLang: src,
		TargetLang: dst,
	})

	writeJSON(w, http.StatusOK, actionResponse{Status: st, Result: s.Result(), AudioURL: sink.URL()})
}

func (h *SessionHandler) TranslateSpeech(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Service: "delivery", Error: err})
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}

	src, dst, ok := h.pair(w, r.FormValue("source"), r.FormValue("target"))
	if !ok {
		return
	}

	var timeout time.Duration
	if v := r.FormValue("timeout"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec < session.MinSpeechTimeout || sec > session.MaxSpeechTimeout {
			http.Error(w, "invalid timeout", http.StatusBadRequest)
			return
		}
		timeout = time.Duration(sec) * time.Second
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing file", Service: "delivery", Error: err})
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	clip, err := saveTemp(file, filepath.Ext(header.Filename))
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "failed to store upload", Service: "delivery", Error: err})
		http.Error(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(clip)

	sink := h.sink(s.ID(), r.FormValue("speak") == "true")
	st := s.SubmitSpeech(r.Context(), session.SpeechRequest{
		Listener:   speech.NewClipListener(h.stt, clip),
		Speaker:    sink.speaker(h.tts),
		SourceLang: src,
		TargetLang: dst,
		Timeout:    timeout,
	})

	writeJSON(w, http.StatusOK, actionResponse{Status: st, Result: s.Result(), AudioURL: sink.URL()})
}

func (h *SessionHandler) SetInput(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.SetInput(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Status: s.Stop(), Result: s.Result()})
}

func (h *SessionHandler) NewTranslation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Status: s.NewTranslation(), Result: s.Result()})
}

// =========================================================================
// ИСТОРИЯ / ИЗБРАННОЕ
// =========================================================================

func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries := s.Recent(strings.TrimSpace(r.URL.Query().Get("q")), limit)
	if entries == nil {
		entries = []session.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *SessionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	data := s.ExportHistory()
	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	name := "translation_history_" + time.Now().Format("20060102_150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "export write failed", Service: "delivery", Error: err})
	}
}

func (h *SessionHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	favs := s.Favorites()
	if favs == nil {
		favs = []session.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, favs)
}

// SaveCurrentFavorite сохраняет последний перевод.
func (h *SessionHandler) SaveCurrentFavorite(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": s.SaveCurrentToFavorites()})
}

// SaveFavorite сохраняет запись истории по индексу (0 — самая старая).
func (h *SessionHandler) SaveFavorite(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	history := s.History()
	if idx < 0 || idx >= len(history) {
		http.Error(w, "history entry not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"saved": s.SaveToFavorites(history[idx])})
}

func (h *SessionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	st := s.Stats()
	snap := s.Snapshot()
	writeJSON(w, http.StatusOK, struct {
		session.Stats
		DurationLabel string `json:"duration_label"`
		ShowStats     bool   `json:"show_stats"`
	}{
		Stats:         st,
		DurationLabel: st.DurationLabel(),
		ShowStats:     snap.Settings.ShowStats,
	})
}

// =========================================================================
// НАСТРОЙКИ
// =========================================================================

func (h *SessionHandler) Settings(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Settings())
}

func (h *SessionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var patch session.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	cfg, err := s.UpdateSettings(patch)
	var verr *session.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": verr.Error(), "fields": verr.Fields})
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SessionHandler) ResetSettings(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.ResetSettings())
}

// =========================================================================
// ЯЗЫКИ
// =========================================================================

func (h *SessionHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.langs.Languages())
}

// =========================================================================
// HELPERS
// =========================================================================

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
	}
	return s, ok
}

// pair принимает и коды, и названия языков.
func (h *SessionHandler) pair(w http.ResponseWriter, source, target string) (string, string, bool) {
	if source == "" {
		source = defaultSource
	}
	if target == "" {
		target = defaultTarget
	}

	src, dst := h.langs.Resolve(source), h.langs.Resolve(target)
	if !h.langs.Known(src) {
		http.Error(w, "unknown source language: "+source, http.StatusBadRequest)
		return "", "", false
	}
	if !h.langs.Known(dst) {
		http.Error(w, "unknown target language: "+target, http.StatusBadRequest)
		return "", "", false
	}
	return src, dst, true
}

func (h *SessionHandler) sink(sessionID string, speak bool) *uploadSink {
	if !speak || h.tts == nil || h.audio == nil {
		return nil
	}
	return &uploadSink{store: h.audio, sessionID: sessionID}
}

// uploadSink — Sink для HTTP: кладёт mp3 в хранилище и запоминает ссылку.
type uploadSink struct {
	store     AudioStore
	sessionID string
	url       string
}

func (u *uploadSink) Play(ctx context.Context, audio []byte, _ string) error {
	url, err := u.store.PutAudio(ctx, u.sessionID, audio)
	if err != nil {
		return err
	}
	u.url = url
	return nil
}

func (u *uploadSink) URL() string {
	if u == nil {
		return ""
	}
	return u.url
}

func (u *uploadSink) speaker(tts speech.TTSClient) session.Speaker {
	if u == nil {
		return nil
	}
	return speech.NewPlayback(tts, u, nil)
}

func saveTemp(r io.Reader, ext string) (string, error) {
	if ext == "" {
		ext = ".ogg"
	}
	f, err := os.CreateTemp("", "clip_*"+ext)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
