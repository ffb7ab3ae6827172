package handlers_test

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/dom/creek-dictionary/internal/domain"
	"github.com/dom/creek-dictionary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authenticatedServer(t *testing.T) (*testutil.TestServer, *testutil.MemoryPool, string) {
	t.Helper()

	ts, pool := testutil.NewMemoryServer(t)
	user, password := testutil.NewUserBuilder().BuildIn(t, pool)
	return ts, pool, testutil.Login(t, ts, user.Email, password)
}

func TestEntryHandler_RequiresToken(t *testing.T) {
	ts, pool, _ := authenticatedServer(t)
	before := pool.Acquired()

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/entries"},
		{http.MethodGet, "/api/entries/1"},
		{http.MethodPost, "/api/entries"},
		{http.MethodPut, "/api/entries/1"},
		{http.MethodDelete, "/api/entries/1"},
	}

	for _, r := range requests {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			resp := testutil.Do(t, testutil.NewJSONRequest(t, r.method, ts.URL(r.path), nil, ""))
			defer resp.Body.Close()

			testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "authorization header required")
		})
	}

	assert.Equal(t, before, pool.Acquired(), "rejected requests must not touch the store")
}

func TestEntryHandler_CRUD(t *testing.T) {
	ts, pool, token := authenticatedServer(t)

	resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.URL("/api/entries"),
		map[string]any{"creek": "hvse", "english": "sun", "tags": "nature"}, token))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var created domain.Entry
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()

	require.NotZero(t, created.ID)
	assert.Equal(t, "hvse", created.Creek)
	require.NotNil(t, created.Tags)
	assert.Equal(t, "nature", *created.Tags)

	entryURL := ts.URL("/api/entries/" + strconv.Itoa(created.ID))

	resp = testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, entryURL, nil, token))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var fetched domain.Entry
	testutil.AssertJSONResponse(t, resp, &fetched)
	resp.Body.Close()
	assert.Equal(t, created, fetched)

	resp = testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPut, entryURL,
		map[string]any{"creek": "hvse", "english": "sunlight"}, token))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var updated domain.Entry
	testutil.AssertJSONResponse(t, resp, &updated)
	resp.Body.Close()
	assert.Equal(t, "sunlight", updated.English)
	assert.Nil(t, updated.Tags)

	resp = testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, ts.URL("/api/entries"), nil, token))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var list []domain.Entry
	testutil.AssertJSONResponse(t, resp, &list)
	resp.Body.Close()
	require.Len(t, list, 1)
	assert.Equal(t, updated, list[0])

	resp = testutil.Do(t, testutil.NewJSONRequest(t, http.MethodDelete, entryURL, nil, token))
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)
	resp.Body.Close()

	resp = testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, entryURL, nil, token))
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "entry not found")
	resp.Body.Close()

	_, ok := pool.Entry(created.ID)
	assert.False(t, ok)
	assert.Zero(t, pool.Outstanding())
}

func TestEntryHandler_Create_Form(t *testing.T) {
	ts, pool, token := authenticatedServer(t)

	resp := testutil.Do(t, testutil.NewFormRequest(t, http.MethodPost, ts.URL("/api/entries"),
		url.Values{"creek": {"vce"}, "english": {"water"}}, token))
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var created domain.Entry
	testutil.AssertJSONResponse(t, resp, &created)
	assert.Nil(t, created.Tags)

	stored, ok := pool.Entry(created.ID)
	require.True(t, ok)
	assert.Equal(t, "water", stored.English)
}

func TestEntryHandler_Errors(t *testing.T) {
	ts, pool, token := authenticatedServer(t)
	existing := pool.AddEntry(t, testutil.NewEntry(nil))
	existingURL := ts.URL("/api/entries/" + strconv.Itoa(existing.ID))

	tests := []struct {
		name           string
		method         string
		url            string
		body           any
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "non numeric id",
			method:         http.MethodGet,
			url:            ts.URL("/api/entries/abc"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid entry id",
		},
		{
			name:           "zero id",
			method:         http.MethodDelete,
			url:            ts.URL("/api/entries/0"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid entry id",
		},
		{
			name:           "get missing",
			method:         http.MethodGet,
			url:            ts.URL("/api/entries/999"),
			expectedStatus: http.StatusNotFound,
			expectedError:  "entry not found",
		},
		{
			name:           "update missing",
			method:         http.MethodPut,
			url:            ts.URL("/api/entries/999"),
			body:           map[string]string{"creek": "a", "english": "b"},
			expectedStatus: http.StatusNotFound,
			expectedError:  "entry not found",
		},
		{
			name:           "delete missing",
			method:         http.MethodDelete,
			url:            ts.URL("/api/entries/999"),
			expectedStatus: http.StatusNotFound,
			expectedError:  "entry not found",
		},
		{
			name:           "create without english",
			method:         http.MethodPost,
			url:            ts.URL("/api/entries"),
			body:           map[string]string{"creek": "a"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request",
		},
		{
			name:           "update with wrong field types",
			method:         http.MethodPut,
			url:            existingURL,
			body:           map[string]int{"creek": 1},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request body",
		},
		{
			name:           "create with empty body",
			method:         http.MethodPost,
			url:            ts.URL("/api/entries"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.Do(t, testutil.NewJSONRequest(t, tt.method, tt.url, tt.body, token))
			defer resp.Body.Close()

			testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedError)
		})
	}

	stored, ok := pool.Entry(existing.ID)
	require.True(t, ok)
	assert.Equal(t, existing, stored)
}

func TestEntryHandler_PoolExhausted(t *testing.T) {
	ts, pool, token := authenticatedServer(t)
	pool.FailAcquire(domain.ErrPoolExhausted)

	resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, ts.URL("/api/entries"), nil, token))
	defer resp.Body.Close()

	testutil.AssertErrorResponse(t, resp, http.StatusServiceUnavailable, "service unavailable")
}
