package api_test

import (
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/dom/creek-dictionary/internal/domain"
	"github.com/dom/creek-dictionary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Health(t *testing.T) {
	ts, _ := testutil.NewMemoryServer(t)

	resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, ts.URL("/health"), nil, ""))
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestRouter_CORSPreflight(t *testing.T) {
	ts, _ := testutil.NewMemoryServer(t)

	tests := []struct {
		name        string
		origin      string
		wantAllowed bool
	}{
		{name: "allowed origin", origin: "http://localhost:3000", wantAllowed: true},
		{name: "foreign origin", origin: "http://evil.example", wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodOptions, ts.URL("/api/entries"), nil)
			require.NoError(t, err)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			req.Header.Set("Access-Control-Request-Headers", "Authorization")

			resp := testutil.Do(t, req)
			defer resp.Body.Close()

			assert.NotEqual(t, http.StatusUnauthorized, resp.StatusCode, "preflight must not reach the gate")
			if tt.wantAllowed {
				assert.Equal(t, tt.origin, resp.Header.Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "3600", resp.Header.Get("Access-Control-Max-Age"))
			} else {
				assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRouter_UnknownPathRequiresToken(t *testing.T) {
	ts, _ := testutil.NewMemoryServer(t)

	resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, ts.URL("/api/nope"), nil, ""))
	defer resp.Body.Close()

	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "authorization header required")
}

func TestRouter_EndToEnd_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ts, testDB := testutil.NewTestServer(t)
	user, password := testutil.NewUserBuilder().
		WithEmail("a@x.io").
		WithPassword("pw1").
		Build(t, testDB.DB)

	token := testutil.Login(t, ts, user.Email, password)

	resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.URL("/api/entries"),
		map[string]any{"creek": "hvse", "english": "sun"}, token))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var created domain.Entry
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()

	resp = testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet,
		ts.URL("/api/entries/"+strconv.Itoa(created.ID)), nil, token))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var fetched domain.Entry
	testutil.AssertJSONResponse(t, resp, &fetched)
	resp.Body.Close()
	assert.Equal(t, created, fetched)

	resp = testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.URL("/api/login"),
		map[string]string{"email": user.Email, "password": "wrong"}, ""))
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "invalid credentials")
	resp.Body.Close()
}
