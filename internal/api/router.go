package api

import (
	"log/slog"
	"net/http"

	"github.com/dom/creek-dictionary/internal/api/handlers"
	"github.com/dom/creek-dictionary/internal/api/middleware"
	"github.com/dom/creek-dictionary/internal/config"
	"github.com/dom/creek-dictionary/internal/logging"
	"github.com/dom/creek-dictionary/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, gate *middleware.Gate, cfg *config.Config, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestLogger(&chiMiddleware.DefaultLogFormatter{
		Logger:  logging.StdLogger(log.With(slog.String("component", "http")), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(gate.Handler)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth, log)
	entryHandler := handlers.NewEntryHandler(services.Entries, log)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.Login)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", entryHandler.List)
			r.Post("/", entryHandler.Create)
			r.Get("/{id}", entryHandler.Get)
			r.Put("/{id}", entryHandler.Update)
			r.Delete("/{id}", entryHandler.Delete)
		})
	})

	return r
}
