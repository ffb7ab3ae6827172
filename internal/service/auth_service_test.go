package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dom/creek-dictionary/internal/auth"
	"github.com/dom/creek-dictionary/internal/domain"
	"github.com/dom/creek-dictionary/internal/service"
	"github.com/dom/creek-dictionary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(pool *testutil.MemoryPool) (*service.AuthService, *auth.TokenCodec) {
	codec := auth.NewTokenCodec([]byte(testutil.TestSecret))
	return service.NewAuthService(pool, codec, time.Hour, testutil.DiscardLogger()), codec
}

func TestAuthService_Login(t *testing.T) {
	pool := testutil.NewMemoryPool()
	authService, codec := newAuthService(pool)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("a@x.io").
		WithPassword("pw1").
		BuildIn(t, pool)

	tests := []struct {
		name    string
		input   service.LoginInput
		wantErr error
	}{
		{
			name:  "successful login",
			input: service.LoginInput{Email: user.Email, Password: rawPassword},
		},
		{
			name:    "wrong password",
			input:   service.LoginInput{Email: user.Email, Password: "nope"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "unknown email",
			input:   service.LoginInput{Email: "ghost@x.io", Password: "pw1"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "missing password",
			input:   service.LoginInput{Email: user.Email},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing email",
			input:   service.LoginInput{Password: "pw1"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, user.Email, result.Email)

			claims, err := codec.Validate(result.Token)
			require.NoError(t, err)
			assert.Equal(t, user.Email, claims.Subject)
		})
	}

	assert.Zero(t, pool.Outstanding(), "every lease must be released")
}

func TestAuthService_Login_FailuresIndistinguishable(t *testing.T) {
	pool := testutil.NewMemoryPool()
	authService, _ := newAuthService(pool)
	ctx := context.Background()

	testutil.NewUserBuilder().WithEmail("a@x.io").WithPassword("pw1").BuildIn(t, pool)

	_, unknownErr := authService.Login(ctx, service.LoginInput{Email: "b@x.io", Password: "pw1"})
	_, wrongErr := authService.Login(ctx, service.LoginInput{Email: "a@x.io", Password: "pw2"})

	require.ErrorIs(t, unknownErr, domain.ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, domain.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAuthService_Login_TokenExpiresAfterTTL(t *testing.T) {
	pool := testutil.NewMemoryPool()
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := issued

	codec := auth.NewTokenCodec([]byte(testutil.TestSecret), auth.WithClock(func() time.Time { return now }))
	authService := service.NewAuthService(pool, codec, time.Hour, testutil.DiscardLogger())

	testutil.NewUserBuilder().WithEmail("a@x.io").WithPassword("pw1").BuildIn(t, pool)

	result, err := authService.Login(context.Background(), service.LoginInput{Email: "a@x.io", Password: "pw1"})
	require.NoError(t, err)

	now = issued.Add(30 * time.Minute)
	_, err = codec.Validate(result.Token)
	require.NoError(t, err)

	now = issued.Add(2 * time.Hour)
	_, err = codec.Validate(result.Token)
	assert.ErrorIs(t, err, domain.ErrAuthExpired)
}

func TestAuthService_Login_PoolFailure(t *testing.T) {
	pool := testutil.NewMemoryPool()
	authService, _ := newAuthService(pool)

	for _, poolErr := range []error{domain.ErrPoolExhausted, domain.ErrStoreUnavailable} {
		pool.FailAcquire(poolErr)

		_, err := authService.Login(context.Background(), service.LoginInput{Email: "a@x.io", Password: "pw1"})
		assert.ErrorIs(t, err, poolErr)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	}
}

type failingMinter struct{}

func (failingMinter) Mint(string, time.Duration) (string, error) {
	return "", errors.Join(domain.ErrInternal, errors.New("signer broken"))
}

func TestAuthService_Login_MintFailure(t *testing.T) {
	pool := testutil.NewMemoryPool()
	authService := service.NewAuthService(pool, failingMinter{}, time.Hour, testutil.DiscardLogger())
	testutil.NewUserBuilder().WithEmail("a@x.io").WithPassword("pw1").BuildIn(t, pool)

	_, err := authService.Login(context.Background(), service.LoginInput{Email: "a@x.io", Password: "pw1"})
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Zero(t, pool.Outstanding())
}

func TestAuthService_CreateUser(t *testing.T) {
	pool := testutil.NewMemoryPool()
	authService, _ := newAuthService(pool)
	ctx := context.Background()

	user, err := authService.CreateUser(ctx, " new@x.io ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", user.Email)
	assert.True(t, auth.VerifyPassword("secret", user.PasswordHash))

	_, err = authService.CreateUser(ctx, "new@x.io", "other")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = authService.CreateUser(ctx, "not-an-email", "secret")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = authService.CreateUser(ctx, "x@x.io", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	result, err := authService.Login(ctx, service.LoginInput{Email: "new@x.io", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", result.Email)
}
