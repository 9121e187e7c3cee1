package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/voice_translator/internal/ai"
	"github.com/Vovarama1992/voice_translator/internal/config"
	"github.com/Vovarama1992/voice_translator/internal/delivery"
	"github.com/Vovarama1992/voice_translator/internal/error_notificator"
	"github.com/Vovarama1992/voice_translator/internal/infra"
	"github.com/Vovarama1992/voice_translator/internal/languages"
	"github.com/Vovarama1992/voice_translator/internal/session"
	"github.com/Vovarama1992/voice_translator/internal/speech"
	"github.com/Vovarama1992/voice_translator/internal/telegram"
	"github.com/Vovarama1992/voice_translator/internal/translation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const sweepEvery = 5 * time.Minute

func main() {

	// =========================================================================
	// ENV / LOGGING
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// CLIENTS (AI / STT / TTS)
	// =========================================================================

	langs := languages.Default()
	openAIClient := ai.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
	translator := translation.NewOpenAITranslator(openAIClient, langs, baseLogger)

	var stt speech.STTClient
	switch cfg.STTProvider {
	case "deepgram":
		stt = speech.NewDeepgramClient(cfg.DeepgramKey)
	default:
		stt = speech.NewWhisperClient(openAIClient.Raw())
	}

	var tts speech.TTSClient
	switch cfg.TTSProvider {
	case "elevenlabs":
		tts = speech.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
	case "openai":
		tts = speech.NewOpenAITTS(openAIClient.Raw())
	}

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	var audioStore delivery.AudioStore
	if cfg.S3.Enabled() {
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		store, err := infra.NewS3AudioStore(initCtx, infra.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
		})
		cancel()
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		audioStore = store
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	errInfra := error_notificator.NewInfra(nil, cfg.AdminChatID)
	errService := error_notificator.NewService(errInfra, baseLogger)

	// =========================================================================
	// SESSIONS
	// =========================================================================

	policy, err := session.ParseFavoritesPolicy(cfg.FavoritesPolicy)
	if err != nil {
		log.Fatalf("FAVORITES_POLICY: %v", err)
	}

	registry := session.NewRegistry(
		translator,
		baseLogger,
		session.WithLanguages(langs),
		session.WithReporter(errService),
		session.WithFavoritesPolicy(policy),
	)

	// =========================================================================
	// TELEGRAM BOT
	// =========================================================================

	var bot *tgbotapi.BotAPI
	botDone := make(chan struct{})
	if cfg.TelegramToken != "" {
		bot, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("failed to init telegram bot: %v", err)
		}
		errInfra.SetBot(bot)

		botApp := telegram.NewBotApp(bot, registry, langs, stt, tts, baseLogger)
		go func() {
			defer close(botDone)
			botApp.Run(ctx, telegram.Listen(bot))
		}()
	} else {
		close(botDone)
	}

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	handler := delivery.NewSessionHandler(registry, langs, stt, tts, audioStore, zl)
	router := delivery.NewRouter(handler, delivery.RouterConfig{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		APIToken:           cfg.APIToken,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// =========================================================================
	// BACKGROUND JOBS
	// =========================================================================

	go func() {
		ticker := time.NewTicker(sweepEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := registry.Sweep(cfg.SessionIdleTTL); removed > 0 {
					log.Printf("[cleanup-sessions] removed %d idle sessions, %d left", removed, registry.Len())
				}
			}
		}
	}()

	// =========================================================================
	// START SERVER
	// =========================================================================

	go func() {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "listening at " + srv.Addr,
			Service: "voice_translator",
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	// =========================================================================
	// SHUTDOWN
	// =========================================================================

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	errs := srv.Shutdown(shutdownCtx)
	if bot != nil {
		bot.StopReceivingUpdates()
	}
	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		errs = multierr.Append(errs, errors.New("telegram handlers did not finish in time"))
	}
	errs = multierr.Append(errs, baseLogger.Sync())

	if errs != nil {
		log.Printf("[shutdown] %v", errs)
	}
	log.Printf("[shutdown] done")
}
