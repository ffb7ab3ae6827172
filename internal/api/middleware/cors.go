package middleware

import (
	"net/http"

	"github.com/dom/creek-dictionary/internal/config"
	"github.com/rs/cors"
)

// CORS answers browser preflights before the gate sees them.
func CORS(cfg config.CORS) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         cfg.MaxAge,
	}).Handler
}
