package telegram

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Vovarama1992/voice_translator/internal/languages"
	"github.com/Vovarama1992/voice_translator/internal/session"
	"github.com/Vovarama1992/voice_translator/internal/speech"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// API — часть *tgbotapi.BotAPI, которой пользуется бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// chatPrefs — языковая пара и озвучка для чата.
type chatPrefs struct {
	source string
	target string
	speak  bool
}

type BotApp struct {
	bot      API
	registry *session.Registry
	langs    *languages.Directory
	stt      speech.STTClient
	tts      speech.TTSClient // nil — без озвучки
	httpCli  *http.Client
	log      *zap.Logger

	mu    sync.Mutex
	prefs map[int64]*chatPrefs

	wg sync.WaitGroup
}

func NewBotApp(
	bot API,
	registry *session.Registry,
	langs *languages.Directory,
	stt speech.STTClient,
	tts speech.TTSClient,
	log *zap.Logger,
) *BotApp {
	if log == nil {
		log = zap.NewNop()
	}
	return &BotApp{
		bot:      bot,
		registry: registry,
		langs:    langs,
		stt:      stt,
		tts:      tts,
		httpCli:  &http.Client{Timeout: 30 * time.Second},
		log:      log,
		prefs:    make(map[int64]*chatPrefs),
	}
}

// Run обрабатывает апдейты до закрытия канала или отмены ctx,
// затем ждёт уже запущенные обработчики.
func (app *BotApp) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	log.Printf("[bot_app] started")
	defer app.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			app.wg.Add(1)
			go func() {
				defer app.wg.Done()
				app.dispatchUpdate(ctx, update)
			}()
		}
	}
}

func (app *BotApp) session(chatID int64) *session.Session {
	return app.registry.GetOrCreate("tg:" + strconv.FormatInt(chatID, 10))
}

func (app *BotApp) chatPrefs(chatID int64) chatPrefs {
	app.mu.Lock()
	defer app.mu.Unlock()

	p, ok := app.prefs[chatID]
	if !ok {
		p = &chatPrefs{source: "en", target: "es", speak: app.tts != nil}
		app.prefs[chatID] = p
	}
	return *p
}

func (app *BotApp) updatePrefs(chatID int64, fn func(p *chatPrefs)) chatPrefs {
	app.chatPrefs(chatID)

	app.mu.Lock()
	defer app.mu.Unlock()
	p := app.prefs[chatID]
	fn(p)
	if app.tts == nil {
		p.speak = false
	}
	return *p
}

// Listen подписывается на апдейты long polling'ом.
func Listen(bot *tgbotapi.BotAPI) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	log.Printf("[bot_app] polling as @%s", bot.Self.UserName)
	return bot.GetUpdatesChan(u)
}
