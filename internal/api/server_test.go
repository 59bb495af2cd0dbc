package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notekeeper/notekeeper-server/internal/auth"
	"github.com/notekeeper/notekeeper-server/internal/http/response"
	"github.com/notekeeper/notekeeper-server/internal/metrics"
	"github.com/notekeeper/notekeeper-server/internal/service"
	"github.com/notekeeper/notekeeper-server/internal/store/sqlstore"
	"github.com/notekeeper/notekeeper-server/internal/validation"
)

// testClock starts at a fixed instant and ticks one millisecond per read so
// rows get distinct, ordered timestamps.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api   humatest.TestAPI
	clock *testClock
}

// setupTestServer creates a server backed by a temp-dir SQLite store.
func setupTestServer(t *testing.T, devMode bool) *testServer {
	t.Helper()
	ctx := context.Background()
	clock := &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	st, err := sqlstore.Open(ctx, sqlstore.Options{
		DSN:     filepath.Join(t.TempDir(), "api.db"),
		Migrate: true,
		Now:     clock.Now,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{9}, auth.KeyLength), 30*time.Minute, auth.WithClock(clock.Now))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validation.New()
	m := metrics.New()
	access := service.NewAccessMediator()

	services := &Services{
		Auth: service.NewAuthService(st, tokens, v, m, logger),
		PasswordReset: service.NewPasswordResetService(st, v, m, logger, service.PasswordResetConfig{
			TTL:     time.Hour,
			DevMode: devMode,
			Now:     clock.Now,
		}),
		Book:    service.NewBookService(st, access, v, m, logger),
		Chapter: service.NewChapterService(st, access, v, m, logger),
		Note:    service.NewNoteService(st, access, v, logger),
		Tag:     service.NewTagService(st, access, v, logger),
	}

	s := NewServer(st, services, m, logger, Options{
		Version:        "test",
		CORSOrigins:    []string{"http://localhost:3000"},
		MetricsEnabled: true,
	})

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		clock:  clock,
	}
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), "body: %s", resp.Body.String())
	return v
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// register creates an account and returns a session token for it.
func (ts *testServer) register(t *testing.T, email, password string) string {
	t.Helper()

	resp := ts.api.Post("/api/auth/register", map[string]any{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	return ts.login(t, email, password)
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	resp := ts.api.Post("/api/auth/login", map[string]any{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	return decode[TokenResponse](t, resp).AccessToken
}

// hierarchy creates book -> chapter -> note for the token's user.
func (ts *testServer) hierarchy(t *testing.T, token, book, chapter, content string) (BookResponse, ChapterResponse, NoteResponse) {
	t.Helper()

	resp := ts.api.Post("/api/books", bearer(token), map[string]any{"name": book})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	b := decode[BookResponse](t, resp)

	resp = ts.api.Post("/api/books/"+itoa(b.ID)+"/chapters", bearer(token), map[string]any{"name": chapter})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	c := decode[ChapterResponse](t, resp)

	resp = ts.api.Post("/api/chapters/"+itoa(c.ID)+"/notes", bearer(token), map[string]any{"content": content})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	n := decode[NoteResponse](t, resp)

	return b, c, n
}

func assertError(t *testing.T, resp *httptest.ResponseRecorder, status int, code string) response.ErrorBody {
	t.Helper()
	require.Equal(t, status, resp.Code, resp.Body.String())

	body := decode[response.ErrorBody](t, resp)
	assert.Equal(t, code, body.Code)
	assert.Equal(t, body.Message, body.Detail)
	return body
}

func TestRootAndHealth(t *testing.T) {
	ts := setupTestServer(t, false)

	resp := ts.api.Get("/")
	require.Equal(t, http.StatusOK, resp.Code)
	root := decode[RootResponse](t, resp)
	assert.Equal(t, "NoteKeeper API", root.Name)
	assert.Equal(t, "test", root.Version)
	assert.Equal(t, "/docs", root.Docs)

	resp = ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	health := decode[HealthResponse](t, resp)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
}

func TestHealth_DatabaseDown(t *testing.T) {
	ts := setupTestServer(t, false)
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "unhealthy", decode[HealthResponse](t, resp).Status)
}

func TestRequestIDHeader(t *testing.T) {
	ts := setupTestServer(t, false)

	resp := ts.api.Get("/health")
	assert.Len(t, resp.Header().Get(requestIDHeader), 12)

	resp = ts.api.Get("/health", requestIDHeader+": client-supplied")
	assert.Equal(t, "client-supplied", resp.Header().Get(requestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t, false)
	ts.api.Get("/health")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `notekeeper_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	ts := setupTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/books", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenAPIDocument(t *testing.T) {
	ts := setupTestServer(t, false)

	resp := ts.api.Get("/openapi.json")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "/api/notes/search")
}
