package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Port     string
	APIToken string // пусто — HTTP API без авторизации

	OpenAIKey   string
	OpenAIModel string

	STTProvider string // openai | deepgram
	DeepgramKey string

	TTSProvider       string // elevenlabs | openai | none
	ElevenLabsKey     string
	ElevenLabsVoiceID string

	S3 S3

	TelegramToken string
	AdminChatID   int64

	SessionIdleTTL     time.Duration
	FavoritesPolicy    string
	CORSOrigins        []string
	RateLimitPerMinute int
}

type S3 struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

// Enabled: без эндпоинта и бакета HTTP-озвучка выключена.
func (s S3) Enabled() bool { return s.Endpoint != "" && s.Bucket != "" }

// Load читает .env (если есть) и окружение.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:              get("PORT", "8080"),
		APIToken:          get("API_TOKEN", ""),
		OpenAIKey:         get("OPENAI_API_KEY", ""),
		OpenAIModel:       get("OPENAI_MODEL", ""),
		STTProvider:       strings.ToLower(get("STT_PROVIDER", "openai")),
		DeepgramKey:       get("DEEPGRAM_API_KEY", ""),
		TTSProvider:       strings.ToLower(get("TTS_PROVIDER", "elevenlabs")),
		ElevenLabsKey:     get("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: get("ELEVENLABS_VOICE_ID", ""),
		S3: S3{
			Endpoint:  get("S3_ENDPOINT", ""),
			AccessKey: get("S3_ACCESS_KEY", ""),
			SecretKey: get("S3_SECRET_KEY", ""),
			Bucket:    get("S3_BUCKET", ""),
			Region:    get("S3_REGION", ""),
		},
		TelegramToken:   get("TELEGRAM_BOT_TOKEN", ""),
		FavoritesPolicy: strings.ToLower(get("FAVORITES_POLICY", "dedupe")),
		CORSOrigins:     splitList(get("CORS_ORIGINS", "*")),
	}

	var errs error

	if cfg.OpenAIKey == "" {
		errs = multierr.Append(errs, errors.New("OPENAI_API_KEY is not set"))
	}

	switch cfg.STTProvider {
	case "openai":
	case "deepgram":
		if cfg.DeepgramKey == "" {
			errs = multierr.Append(errs, errors.New("DEEPGRAM_API_KEY is not set"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("STT_PROVIDER %q: want openai or deepgram", cfg.STTProvider))
	}

	switch cfg.TTSProvider {
	case "openai", "none":
	case "elevenlabs":
		if cfg.ElevenLabsKey == "" {
			errs = multierr.Append(errs, errors.New("ELEVENLABS_API_KEY is not set"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("TTS_PROVIDER %q: want elevenlabs, openai or none", cfg.TTSProvider))
	}

	if v := get("ADMIN_CHAT_ID", ""); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("ADMIN_CHAT_ID: %w", err))
		}
		cfg.AdminChatID = id
	}

	ttl, err := time.ParseDuration(get("SESSION_IDLE_TTL", "2h"))
	switch {
	case err != nil:
		errs = multierr.Append(errs, fmt.Errorf("SESSION_IDLE_TTL: %w", err))
	case ttl <= 0:
		errs = multierr.Append(errs, errors.New("SESSION_IDLE_TTL must be positive"))
	}
	cfg.SessionIdleTTL = ttl

	limit, err := strconv.Atoi(get("RATE_LIMIT_PER_MINUTE", "120"))
	switch {
	case err != nil:
		errs = multierr.Append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err))
	case limit <= 0:
		errs = multierr.Append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	cfg.RateLimitPerMinute = limit

	if errs != nil {
		return Config{}, errs
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
