// Package auth mints and validates the signed bearer credentials handed out at
// login, and verifies stored password hashes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dom/creek-dictionary/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long a login credential stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Claims is the payload signed into every credential. Subject carries the
// user's email and ExpiresAt the absolute expiry (issued-at + ttl).
type Claims struct {
	jwt.RegisteredClaims
}

type Option func(*TokenCodec)

// WithClock overrides the time source used for both minting and validation.
func WithClock(now func() time.Time) Option {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// TokenCodec signs and verifies HS256 credentials with a single process-wide
// secret. It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokenCodec(secret []byte, opts ...Option) *TokenCodec {
	c := &TokenCodec{
		secret: secret,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c
}

// Mint signs a credential for subject that expires ttl from now. An empty
// subject is rejected because Validate would never accept it.
func (c *TokenCodec) Mint(subject string, ttl time.Duration) (string, error) {
	const op = "auth.Mint"

	if subject == "" {
		return "", fmt.Errorf("%s: %w: empty subject", op, domain.ErrInvalidInput)
	}

	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiry(now, ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
	}

	return signed, nil
}

// Validate parses tokenString and checks its signature and expiry. Every
// failure is reported as one of domain.ErrAuthMalformed,
// domain.ErrAuthInvalidSignature or domain.ErrAuthExpired.
func (c *TokenCodec) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", classify(err), err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrAuthMalformed)
	}

	return claims, nil
}

// expiry rounds now+ttl up to the next whole second. NumericDate only
// carries seconds, and truncating would cut the ttl short.
func expiry(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if t := exp.Truncate(time.Second); t.Before(exp) {
		return t.Add(time.Second)
	}
	return exp
}

// signature is verified before the claims, so a forged token never reports
// as expired.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrAuthInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrAuthExpired
	default:
		return domain.ErrAuthMalformed
	}
}
