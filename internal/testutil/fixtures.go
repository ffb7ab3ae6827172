package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/dom/creek-dictionary/internal/auth"
	"github.com/dom/creek-dictionary/internal/domain"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with a random email
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:    gofakeit.Email(),
		password: "testpassword123",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hash, err := auth.HashPassword(b.password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Email:        b.email,
		PasswordHash: hash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildIn stores the user in an in-memory pool and returns it with the raw password
func (b *UserBuilder) BuildIn(t *testing.T, pool *MemoryPool) (*domain.User, string) {
	t.Helper()
	return pool.AddUser(t, b.email, b.password), b.password
}

// NewEntry returns an entry with random words and the given tags
func NewEntry(tags *string) domain.Entry {
	return domain.Entry{
		Creek:   gofakeit.Word(),
		English: gofakeit.Word(),
		Tags:    tags,
	}
}

// CreateEntry inserts an entry directly into the database
func CreateEntry(t *testing.T, db *gorm.DB, entry domain.Entry) *domain.Entry {
	t.Helper()

	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("failed to create entry: %v", err)
	}
	return &entry
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Login authenticates through the API and returns the bearer token
func Login(t *testing.T, ts *TestServer, email, password string) string {
	t.Helper()

	resp := Do(t, NewJSONRequest(t, http.MethodPost, ts.URL("/api/login"), map[string]string{
		"email":    email,
		"password": password,
	}, ""))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}

	var login LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return login.Token
}

// NewJSONRequest creates an HTTP request with a JSON body and optional bearer token
func NewJSONRequest(t *testing.T, method, url string, body any, token string) *http.Request {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// NewFormRequest creates an HTTP request with a form-encoded body and optional bearer token
func NewFormRequest(t *testing.T, method, target string, form url.Values, token string) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, target, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends req with the default client
func Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL, err)
	}
	return resp
}
