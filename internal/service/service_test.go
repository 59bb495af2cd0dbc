package service

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notekeeper/notekeeper-server/internal/auth"
	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/metrics"
	"github.com/notekeeper/notekeeper-server/internal/store"
	"github.com/notekeeper/notekeeper-server/internal/store/sqlstore"
	"github.com/notekeeper/notekeeper-server/internal/validation"
)

// testClock is a settable time source shared by the store and services.
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

type testEnv struct {
	store    store.Store
	clock    *testClock
	auth     *AuthService
	reset    *PasswordResetService
	books    *BookService
	chapters *ChapterService
	notes    *NoteService
	tags     *TagService
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T, devMode bool) *testEnv {
	t.Helper()
	ctx := context.Background()
	clock := &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	st, err := sqlstore.Open(ctx, sqlstore.Options{
		DSN:     filepath.Join(t.TempDir(), "svc.db"),
		Migrate: true,
		Now:     clock.Now,
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{5}, auth.KeyLength), 30*time.Minute, auth.WithClock(clock.Now))
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	v := validation.New()
	m := metrics.New()
	access := NewAccessMediator()

	return &testEnv{
		store:    st,
		clock:    clock,
		auth:     NewAuthService(st, tokens, v, m, logger),
		reset:    NewPasswordResetService(st, v, m, logger, PasswordResetConfig{TTL: time.Hour, DevMode: devMode, Now: clock.Now}),
		books:    NewBookService(st, access, v, m, logger),
		chapters: NewChapterService(st, access, v, m, logger),
		notes:    NewNoteService(st, access, v, logger),
		tags:     NewTagService(st, access, v, logger),
		metrics:  m,
	}
}

func (e *testEnv) register(t *testing.T, email, password string) *domain.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterRequest{Email: email, Password: password})
	require.NoError(t, err)
	return u
}

// hierarchy creates a book, chapter and note for user.
func (e *testEnv) hierarchy(t *testing.T, userID int64, book, chapter, content string) (*domain.Book, *domain.Chapter, *domain.Note) {
	t.Helper()
	ctx := context.Background()

	b, err := e.books.Create(ctx, userID, CreateBookRequest{Name: book})
	require.NoError(t, err)
	c, err := e.chapters.Create(ctx, userID, b.ID, CreateChapterRequest{Name: chapter})
	require.NoError(t, err)
	n, err := e.notes.Create(ctx, userID, c.ID, CreateNoteRequest{Content: content})
	require.NoError(t, err)
	return b, c, n
}
