package session

import (
	"fmt"
	"strings"
)

// Допустимые диапазоны настроек.
const (
	MinMaxHistory    = 5
	MaxMaxHistory    = 100
	MinSpeechTimeout = 1
	MaxSpeechTimeout = 15
)

func (s *Session) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings проверяет патч целиком. Если хоть одно поле вне диапазона,
// ничего не применяется и возвращается *ValidationError со всеми ошибками.
func (s *Session) UpdateSettings(p SettingsPatch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := applyPatch(s.settings, p)
	if err != nil {
		return s.settings, err
	}
	s.settings = next
	s.trimHistoryLocked()
	return s.settings, nil
}

func (s *Session) ResetSettings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = DefaultSettings()
	s.trimHistoryLocked()
	return s.settings
}

func applyPatch(cur Settings, p SettingsPatch) (Settings, error) {
	var bad []FieldError

	if p.MaxHistory != nil {
		v := *p.MaxHistory
		if v < MinMaxHistory || v > MaxMaxHistory {
			bad = append(bad, FieldError{
				Field:   "max_history",
				Message: fmt.Sprintf("must be between %d and %d, got %d", MinMaxHistory, MaxMaxHistory, v),
			})
		} else {
			cur.MaxHistory = v
		}
	}

	if p.SpeechTimeout != nil {
		v := *p.SpeechTimeout
		if v < MinSpeechTimeout || v > MaxSpeechTimeout {
			bad = append(bad, FieldError{
				Field:   "speech_timeout",
				Message: fmt.Sprintf("must be between %d and %d, got %d", MinSpeechTimeout, MaxSpeechTimeout, v),
			})
		} else {
			cur.SpeechTimeout = v
		}
	}

	if p.Theme != nil {
		switch Theme(strings.ToLower(strings.TrimSpace(*p.Theme))) {
		case ThemeLight:
			cur.Theme = ThemeLight
		case ThemeDark:
			cur.Theme = ThemeDark
		default:
			bad = append(bad, FieldError{
				Field:   "theme",
				Message: fmt.Sprintf("must be %q or %q, got %q", ThemeLight, ThemeDark, *p.Theme),
			})
		}
	}

	if p.ShowStats != nil {
		cur.ShowStats = *p.ShowStats
	}

	if len(bad) > 0 {
		return cur, &ValidationError{Fields: bad}
	}
	return cur, nil
}
