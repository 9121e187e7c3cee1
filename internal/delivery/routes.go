package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type RouterConfig struct {
	CORSOrigins        []string
	RateLimitPerMinute int
	APIToken           string
}

func NewRouter(h *SessionHandler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	RegisterRoutes(r, h, cfg.APIToken)
	return r
}

func RegisterRoutes(r chi.Router, h *SessionHandler, apiToken string) {
	r.Group(func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			AuthMiddleware(apiToken),
		)

		pr.Get("/languages", h.Languages)

		// --- сессии ---
		pr.Post("/sessions", h.Create)
		pr.Get("/sessions/{id}", h.Get)
		pr.Delete("/sessions/{id}", h.Delete)

		// --- перевод ---
		pr.Post("/sessions/{id}/translate/text", h.TranslateText)
		pr.Post("/sessions/{id}/translate/speech", h.TranslateSpeech)
		pr.Put("/sessions/{id}/input", h.SetInput)
		pr.Post("/sessions/{id}/stop", h.Stop)
		pr.Post("/sessions/{id}/new", h.NewTranslation)

		// --- история ---
		pr.Get("/sessions/{id}/history", h.History)
		pr.Delete("/sessions/{id}/history", h.ClearHistory)
		pr.Get("/sessions/{id}/history/export", h.ExportHistory)

		// --- избранное ---
		pr.Get("/sessions/{id}/favorites", h.Favorites)
		pr.Post("/sessions/{id}/favorites", h.SaveCurrentFavorite)
		pr.Post("/sessions/{id}/favorites/{index}", h.SaveFavorite)

		pr.Get("/sessions/{id}/stats", h.Stats)

		// --- настройки ---
		pr.Get("/sessions/{id}/settings", h.Settings)
		pr.Patch("/sessions/{id}/settings", h.UpdateSettings)
		pr.Post("/sessions/{id}/settings/reset", h.ResetSettings)
	})
}
