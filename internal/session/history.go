package session

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Search отдаёт записи истории, где term (без учёта регистра) входит в
// исходный или переведённый текст. Пустой term — вся история, пробелы
// в term значимы.
// Каждый проход берёт свежий снимок, поэтому последовательность можно
// перебирать повторно.
func (s *Session) Search(term string) iter.Seq[HistoryEntry] {
	needle := strings.ToLower(term)

	return func(yield func(HistoryEntry) bool) {
		for _, e := range s.History() {
			if needle != "" &&
				!strings.Contains(strings.ToLower(e.OriginalText), needle) &&
				!strings.Contains(strings.ToLower(e.TranslatedText), needle) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Recent — результат Search от новых к старым, не больше limit (limit <= 0 — все).
func (s *Session) Recent(term string, limit int) []HistoryEntry {
	out := slices.Collect(s.Search(term))
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalTranslations: s.total,
		SessionDuration:   s.now().Sub(s.startTime),
	}

	idx := make(map[string]int)
	for _, e := range s.history {
		i, ok := idx[e.TargetLanguageName]
		if !ok {
			i = len(st.TargetCounts)
			idx[e.TargetLanguageName] = i
			st.TargetCounts = append(st.TargetCounts, LanguageCount{Language: e.TargetLanguageName})
		}
		st.TargetCounts[i].Count++
	}

	// при равенстве побеждает язык, встреченный первым
	best := 0
	for _, c := range st.TargetCounts {
		if c.Count > best {
			best = c.Count
			st.MostUsedTarget = c.Language
		}
	}

	return st
}

// DurationLabel: "3 minutes", "2 hours", "now".
func (st Stats) DurationLabel() string {
	var zero time.Time
	return strings.TrimSpace(humanize.RelTime(zero, zero.Add(st.SessionDuration), "", ""))
}

var exportHeader = []string{
	"timestamp",
	"original_text",
	"translated_text",
	"source_language_code",
	"target_language_code",
	"source_language_name",
	"target_language_name",
	"input_type",
}

// ExportHistory — CSV с заголовком, по строке на запись. Пустая история — nil.
// Сбой записи тоже даёт nil, обрезанный файл не отдаём.
func (s *Session) ExportHistory() []byte {
	entries := s.History()
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	if err := writeCSV(&buf, entries); err != nil {
		s.log.Error("export history", zap.Error(err))
		return nil
	}
	return buf.Bytes()
}

func writeCSV(out io.Writer, entries []HistoryEntry) error {
	w := csv.NewWriter(out)
	if err := w.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		err := w.Write([]string{
			e.Timestamp.Format(time.RFC3339),
			e.OriginalText,
			e.TranslatedText,
			e.SourceLanguageCode,
			e.TargetLanguageCode,
			e.SourceLanguageName,
			e.TargetLanguageName,
			e.InputType,
		})
		if err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
