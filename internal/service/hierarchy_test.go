package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	domainerrors "github.com/notekeeper/notekeeper-server/internal/errors"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

func ptr[T any](v T) *T { return &v }

func TestAccess_CrossUserIsNotFound(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	alice := env.register(t, "alice@x.com", "pw")
	bob := env.register(t, "bob@x.com", "pw")
	book, chapter, note := env.hierarchy(t, alice.ID, "Trip", "Day1", "sea view")
	tag, err := env.tags.Create(ctx, alice.ID, CreateTagRequest{Name: "travel"})
	require.NoError(t, err)

	cases := []struct {
		name string
		call func() error
		msg  string
	}{
		{"get book", func() error { _, err := env.books.Get(ctx, bob.ID, book.ID); return err }, "Book not found"},
		{"update book", func() error {
			_, err := env.books.Update(ctx, bob.ID, book.ID, UpdateBookRequest{Name: ptr("x")})
			return err
		}, "Book not found"},
		{"delete book", func() error { return env.books.Delete(ctx, bob.ID, book.ID) }, "Book not found"},
		{"list chapters", func() error { _, err := env.chapters.ListByBook(ctx, bob.ID, book.ID); return err }, "Book not found"},
		{"create chapter", func() error {
			_, err := env.chapters.Create(ctx, bob.ID, book.ID, CreateChapterRequest{Name: "x"})
			return err
		}, "Book not found"},
		{"get chapter", func() error { _, err := env.chapters.Get(ctx, bob.ID, chapter.ID); return err }, "Chapter not found"},
		{"update chapter", func() error {
			_, err := env.chapters.Update(ctx, bob.ID, chapter.ID, UpdateChapterRequest{Name: ptr("x")})
			return err
		}, "Chapter not found"},
		{"delete chapter", func() error { return env.chapters.Delete(ctx, bob.ID, chapter.ID) }, "Chapter not found"},
		{"list notes", func() error { _, err := env.notes.ListByChapter(ctx, bob.ID, chapter.ID); return err }, "Chapter not found"},
		{"create note", func() error {
			_, err := env.notes.Create(ctx, bob.ID, chapter.ID, CreateNoteRequest{Content: "x"})
			return err
		}, "Chapter not found"},
		{"get note", func() error { _, err := env.notes.Get(ctx, bob.ID, note.ID); return err }, "Note not found"},
		{"update note", func() error {
			_, err := env.notes.Update(ctx, bob.ID, note.ID, UpdateNoteRequest{Content: ptr("x")})
			return err
		}, "Note not found"},
		{"delete note", func() error { return env.notes.Delete(ctx, bob.ID, note.ID) }, "Note not found"},
		{"update tag", func() error {
			_, err := env.tags.Update(ctx, bob.ID, tag.ID, UpdateTagRequest{Name: ptr("x")})
			return err
		}, "Tag not found"},
		{"delete tag", func() error { return env.tags.Delete(ctx, bob.ID, tag.ID) }, "Tag not found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.ErrorIs(t, err, domainerrors.ErrNotFound)
			assert.Equal(t, tc.msg, err.Error())
		})
	}

	// Nothing Bob tried changed Alice's data.
	got, err := env.notes.Get(ctx, alice.ID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "sea view", got.Content)
	books, err := env.books.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestAccess_MissingAndForeignLookIdentical(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	alice := env.register(t, "alice@x.com", "pw")
	bob := env.register(t, "bob@x.com", "pw")
	book, _, _ := env.hierarchy(t, alice.ID, "Trip", "Day1", "x")

	_, foreign := env.books.Get(ctx, bob.ID, book.ID)
	_, missing := env.books.Get(ctx, bob.ID, book.ID+1000)
	_, invalid := env.books.Get(ctx, bob.ID, 0)

	assert.Equal(t, foreign.Error(), missing.Error())
	assert.Equal(t, foreign.Error(), invalid.Error())
}

func TestBookService_CRUD(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	user := env.register(t, "a@x.com", "pw")

	empty, err := env.books.List(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	b1, err := env.books.Create(ctx, user.ID, CreateBookRequest{Name: "First"})
	require.NoError(t, err)
	_, err = env.books.Create(ctx, user.ID, CreateBookRequest{Name: "Second"})
	require.NoError(t, err)

	_, err = env.books.Create(ctx, user.ID, CreateBookRequest{Name: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	updated, err := env.books.Update(ctx, user.ID, b1.ID, UpdateBookRequest{Name: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.UpdatedAt.After(b1.UpdatedAt))

	unchanged, err := env.books.Update(ctx, user.ID, b1.ID, UpdateBookRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", unchanged.Name)

	_, err = env.books.Update(ctx, user.ID, b1.ID, UpdateBookRequest{Name: ptr("")})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	books, err := env.books.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Renamed", books[0].Name)
	assert.Equal(t, "Second", books[1].Name)
}

func TestBookService_NoteCount(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	user := env.register(t, "a@x.com", "pw")

	book, chapter, _ := env.hierarchy(t, user.ID, "Trip", "Day1", "one")
	_, err := env.notes.Create(ctx, user.ID, chapter.ID, CreateNoteRequest{Content: "two"})
	require.NoError(t, err)
	other, err := env.chapters.Create(ctx, user.ID, book.ID, CreateChapterRequest{Name: "Day2"})
	require.NoError(t, err)
	_, err = env.notes.Create(ctx, user.ID, other.ID, CreateNoteRequest{Content: "three"})
	require.NoError(t, err)

	got, err := env.books.Get(ctx, user.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.NoteCount)
}

func TestBookService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	user := env.register(t, "a@x.com", "pw")

	book, chapter, note := env.hierarchy(t, user.ID, "Trip", "Day1", "one")
	_, err := env.notes.Create(ctx, user.ID, chapter.ID, CreateNoteRequest{Content: "two"})
	require.NoError(t, err)
	keep, keepChapter, keepNote := env.hierarchy(t, user.ID, "Other", "Ch", "stays")

	require.NoError(t, env.books.Delete(ctx, user.ID, book.ID))

	_, err = env.books.Get(ctx, user.ID, book.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = env.chapters.Get(ctx, user.ID, chapter.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = env.notes.Get(ctx, user.ID, note.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.books.Get(ctx, user.ID, keep.ID)
	assert.NoError(t, err)
	_, err = env.chapters.Get(ctx, user.ID, keepChapter.ID)
	assert.NoError(t, err)
	_, err = env.notes.Get(ctx, user.ID, keepNote.ID)
	assert.NoError(t, err)

}

func TestChapterService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	user := env.register(t, "a@x.com", "pw")

	book, chapter, note := env.hierarchy(t, user.ID, "Trip", "Day1", "one")
	sibling, err := env.chapters.Create(ctx, user.ID, book.ID, CreateChapterRequest{Name: "Day2"})
	require.NoError(t, err)

	require.NoError(t, env.chapters.Delete(ctx, user.ID, chapter.ID))

	_, err = env.notes.Get(ctx, user.ID, note.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	chapters, err := env.chapters.ListByBook(ctx, user.ID, book.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, sibling.ID, chapters[0].ID)
}

func TestChapterService_ListAndUpdate(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	user := env.register(t, "a@x.com", "pw")

	book, first, _ := env.hierarchy(t, user.ID, "Trip", "Day1", "x")
	_, err := env.chapters.Create(ctx, user.ID, book.ID, CreateChapterRequest{Name: "Day2"})
	require.NoError(t, err)

	renamed, err := env.chapters.Update(ctx, user.ID, first.ID, UpdateChapterRequest{Name: ptr("Arrival")})
	require.NoError(t, err)
	assert.Equal(t, "Arrival", renamed.Name)
	assert.Equal(t, book.ID, renamed.BookID)

	chapters, err := env.chapters.ListByBook(ctx, user.ID, book.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, "Arrival", chapters[0].Name)
	assert.Equal(t, "Day2", chapters[1].Name)
}

func TestNoteService_ContentIsNFC(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	user := env.register(t, "a@x.com", "pw")

	_, chapter, _ := env.hierarchy(t, user.ID, "Trip", "Day1", "x")

	decomposed := "cafe\u0301"
	note, err := env.notes.Create(ctx, user.ID, chapter.ID, CreateNoteRequest{Content: decomposed})
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", note.Content)

	updated, err := env.notes.Update(ctx, user.ID, note.ID, UpdateNoteRequest{Content: ptr("résumé")})
	require.NoError(t, err)
	assert.Equal(t, "résumé", updated.Content)

	results, err := env.notes.Search(ctx, user.ID, decomposed)
	require.NoError(t, err)
	assert.Empty(t, results, "content was updated away from café")

	results, err = env.notes.Search(ctx, user.ID, "sumé")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, note.ID, results[0].ID)
}

func TestNoteService_ListNewestFirst(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	user := env.register(t, "a@x.com", "pw")

	_, chapter, first := env.hierarchy(t, user.ID, "Trip", "Day1", "first")
	second, err := env.notes.Create(ctx, user.ID, chapter.ID, CreateNoteRequest{Content: "second"})
	require.NoError(t, err)

	notes, err := env.notes.ListByChapter(ctx, user.ID, chapter.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)
}

func TestNoteService_Search(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	alice := env.register(t, "alice@x.com", "pw")
	bob := env.register(t, "bob@x.com", "pw")
	book, chapter, note := env.hierarchy(t, alice.ID, "Trip", "Day1", "Saw the Sea today")
	env.hierarchy(t, bob.ID, "Bob's", "Ch", "sea of bob")

	results, err := env.notes.Search(ctx, alice.ID, "sea")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, note.ID, results[0].ID)
	assert.Equal(t, "Day1", results[0].ChapterName)
	assert.Equal(t, book.ID, results[0].BookID)
	assert.Equal(t, "Trip", results[0].BookName)
	assert.Equal(t, chapter.ID, results[0].ChapterID)

	for _, q := range []string{"", "   ", "\t"} {
		results, err := env.notes.Search(ctx, alice.ID, q)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results, "query %q", q)
	}

	results, err = env.notes.Search(ctx, alice.ID, "%")
	require.NoError(t, err)
	assert.Empty(t, results, "wildcards are literal")
}

func TestNoteService_SearchKeepsSurroundingSpaces(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	user := env.register(t, "a@x.com", "pw")

	_, chapter, _ := env.hierarchy(t, user.ID, "Trip", "Day1", "seashell collection")
	spaced, err := env.notes.Create(ctx, user.ID, chapter.ID, CreateNoteRequest{Content: "Saw the sea"})
	require.NoError(t, err)

	results, err := env.notes.Search(ctx, user.ID, " sea")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, spaced.ID, results[0].ID)

	results, err = env.notes.Search(ctx, user.ID, "sea")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestNoteService_SearchLimit(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	user := env.register(t, "a@x.com", "pw")

	_, chapter, _ := env.hierarchy(t, user.ID, "Trip", "Day1", "match 0")
	for i := 1; i <= store.SearchLimit+5; i++ {
		_, err := env.notes.Create(ctx, user.ID, chapter.ID, CreateNoteRequest{Content: "match " + strings.Repeat("x", i)})
		require.NoError(t, err)
	}

	results, err := env.notes.Search(ctx, user.ID, "match")
	require.NoError(t, err)
	assert.Len(t, results, store.SearchLimit)
	assert.Equal(t, "match "+strings.Repeat("x", store.SearchLimit+5), results[0].Content)
}

func TestTagService_CRUD(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	user := env.register(t, "a@x.com", "pw")

	beta, err := env.tags.Create(ctx, user.ID, CreateTagRequest{Name: "beta"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTagColor, beta.Color)

	_, err = env.tags.Create(ctx, user.ID, CreateTagRequest{Name: "alpha", Color: "bg-red-500"})
	require.NoError(t, err)

	tags, err := env.tags.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "bg-red-500", tags[0].Color)

	recolored, err := env.tags.Update(ctx, user.ID, beta.ID, UpdateTagRequest{Color: ptr("bg-green-500")})
	require.NoError(t, err)
	assert.Equal(t, "beta", recolored.Name)
	assert.Equal(t, "bg-green-500", recolored.Color)

	require.NoError(t, env.tags.Delete(ctx, user.ID, beta.ID))
	err = env.tags.Delete(ctx, user.ID, beta.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.tags.Create(ctx, user.ID, CreateTagRequest{Name: " "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
