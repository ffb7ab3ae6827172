package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dom/creek-dictionary/internal/auth"
	"github.com/dom/creek-dictionary/internal/domain"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenValidator checks a raw bearer credential.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Gate sits in front of every route. Requests to a public path pass through
// untouched; every other request needs a valid bearer credential. The gate
// never touches the data store.
type Gate struct {
	tokens TokenValidator
	public map[string]struct{}
	log    *slog.Logger
}

func NewGate(tokens TokenValidator, publicPaths []string, log *slog.Logger) *Gate {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		if p = strings.TrimSpace(p); p != "" {
			public[p] = struct{}{}
		}
	}
	return &Gate{
		tokens: tokens,
		public: public,
		log:    log.With(slog.String("component", "gate")),
	}
}

// IsPublic reports whether path bypasses authentication. Matching is exact.
func (g *Gate) IsPublic(path string) bool {
	_, ok := g.public[path]
	return ok
}

// Authenticate extracts the bearer credential from r and validates it. The
// signature is never checked when the header itself is malformed.
func (g *Gate) Authenticate(r *http.Request) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, domain.ErrAuthMissing
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, fmt.Errorf("%w: expected bearer scheme", domain.ErrAuthMalformed)
	}

	if token == "" {
		return nil, fmt.Errorf("%w: empty bearer token", domain.ErrAuthMalformed)
	}
	// Exactly one space separates the scheme from the token.
	if strings.ContainsAny(token, " \t") {
		return nil, fmt.Errorf("%w: unexpected whitespace in bearer token", domain.ErrAuthMalformed)
	}

	return g.tokens.Validate(token)
}

func (g *Gate) Handler(next http.Handler) http.Handler {
	const op = "middleware.Gate"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.IsPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := g.Authenticate(r)
		if err != nil {
			g.log.WarnContext(r.Context(), "request rejected",
				slog.String("op", op),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
			reject(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the claims the gate attached to an authenticated
// request.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

func reject(w http.ResponseWriter, err error) {
	msg := "invalid token"
	switch {
	case errors.Is(err, domain.ErrAuthMissing):
		msg = "authorization header required"
	case errors.Is(err, domain.ErrAuthExpired):
		msg = "token expired"
	case errors.Is(err, domain.ErrAuthMalformed):
		msg = "malformed token"
	}

	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
