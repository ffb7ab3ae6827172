package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dom/creek-dictionary/internal/auth"
	"github.com/dom/creek-dictionary/internal/domain"
	"github.com/dom/creek-dictionary/internal/repository"
)

// dummyHash is compared against when the email is unknown, so a missing
// account costs the same bcrypt round as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	hash, err := auth.HashPassword("creek-dictionary-dummy-password")
	if err != nil {
		panic(err)
	}
	return hash
})

type AuthService struct {
	pool     repository.Pool
	tokens   TokenMinter
	tokenTTL time.Duration
	log      *slog.Logger
}

func NewAuthService(pool repository.Pool, tokens TokenMinter, tokenTTL time.Duration, log *slog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = auth.DefaultTokenTTL
	}
	return &AuthService{
		pool:     pool,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Login exchanges an email and password for a signed credential. Unknown
// emails and wrong passwords both fail with domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	const op = "service.AuthService.Login"
	log := s.log.With(slog.String("op", op))

	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, fmt.Errorf("%s: %w: email and password are required", op, domain.ErrInvalidInput)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	user, err := conn.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			auth.VerifyPassword(input.Password, dummyHash())
			log.InfoContext(ctx, "login rejected")
			return nil, fmt.Errorf("%s: %w", op, domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !auth.VerifyPassword(input.Password, user.PasswordHash) {
		log.InfoContext(ctx, "login rejected")
		return nil, fmt.Errorf("%s: %w", op, domain.ErrInvalidCredentials)
	}

	token, err := s.tokens.Mint(user.Email, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.InfoContext(ctx, "login succeeded", slog.Int("user_id", user.ID))

	return &AuthResult{
		Token: token,
		Email: user.Email,
	}, nil
}

// CreateUser stores a new account. There is no registration endpoint; the
// operator CLI is the only caller.
func (s *AuthService) CreateUser(ctx context.Context, email, password string) (*domain.User, error) {
	const op = "service.AuthService.CreateUser"

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%s: %w: invalid email %q", op, domain.ErrInvalidInput, email)
	}
	if password == "" {
		return nil, fmt.Errorf("%s: %w: password is required", op, domain.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrInvalidInput, err)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := conn.Users().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.InfoContext(ctx, "user created", slog.String("op", op), slog.Int("user_id", user.ID))

	return user, nil
}
