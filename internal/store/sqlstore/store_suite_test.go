package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

// runStoreSuite exercises store.Store behavior that must hold on every
// dialect. newStore returns an empty, migrated store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("HierarchyOrdering", func(t *testing.T) { testHierarchyOrdering(t, newStore(t)) })
	t.Run("Owners", func(t *testing.T) { testOwners(t, newStore(t)) })
	t.Run("Search", func(t *testing.T) { testSearch(t, newStore(t)) })
	t.Run("Tags", func(t *testing.T) { testTags(t, newStore(t)) })
	t.Run("ResetTokens", func(t *testing.T) { testResetTokens(t, newStore(t)) })
	t.Run("CascadeBook", func(t *testing.T) { testCascadeBook(t, newStore(t)) })
	t.Run("CascadeUser", func(t *testing.T) { testCascadeUser(t, newStore(t)) })
	t.Run("ForeignKeys", func(t *testing.T) { testForeignKeys(t, newStore(t)) })
}

// fixture is a user with one book, one chapter, and one note.
type fixture struct {
	user    *domain.User
	book    *domain.Book
	chapter *domain.Chapter
	note    *domain.Note
}

func seed(t *testing.T, s store.Store, email, bookName, chapterName, content string) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture

	inTx(t, s, func(tx store.Tx) error {
		f.user = &domain.User{Email: email, PasswordHash: "hash"}
		if err := tx.CreateUser(ctx, f.user); err != nil {
			return err
		}
		f.book = &domain.Book{UserID: f.user.ID, Name: bookName}
		if err := tx.CreateBook(ctx, f.book); err != nil {
			return err
		}
		f.chapter = &domain.Chapter{BookID: f.book.ID, Name: chapterName}
		if err := tx.CreateChapter(ctx, f.chapter); err != nil {
			return err
		}
		f.note = &domain.Note{ChapterID: f.chapter.ID, Content: content}
		return tx.CreateNote(ctx, f.note)
	})
	return f
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	name := "Ann"

	var created domain.User
	inTx(t, s, func(tx store.Tx) error {
		created = domain.User{Email: "  Ann@Example.com ", PasswordHash: "h1", Name: &name}
		return tx.CreateUser(ctx, &created)
	})
	if created.ID <= 0 {
		t.Fatalf("expected positive id, got %d", created.ID)
	}
	if created.Email != "ann@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}

	err := s.InTx(ctx, func(tx store.Tx) error {
		return tx.CreateUser(ctx, &domain.User{Email: "ANN@example.com", PasswordHash: "h2"})
	})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for duplicate email, got %v", err)
	}

	inTx(t, s, func(tx store.Tx) error {
		got, err := tx.GetUserByEmail(ctx, "ann@EXAMPLE.com")
		if err != nil {
			return err
		}
		if got.ID != created.ID || got.Name == nil || *got.Name != "Ann" {
			t.Errorf("unexpected user %+v", got)
		}
		if !got.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("created_at round trip: %v != %v", got.CreatedAt, created.CreatedAt)
		}

		if err := tx.UpdateUserPassword(ctx, created.ID, "h3"); err != nil {
			return err
		}
		got, err = tx.GetUser(ctx, created.ID)
		if err != nil {
			return err
		}
		if got.PasswordHash != "h3" {
			t.Errorf("password hash = %q", got.PasswordHash)
		}

		if _, err := tx.GetUser(ctx, created.ID+100); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := tx.UpdateUserPassword(ctx, created.ID+100, "x"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound updating missing user, got %v", err)
		}
		return nil
	})
}

func testHierarchyOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seed(t, s, "order@x.com", "First", "Ch1", "one")

	inTx(t, s, func(tx store.Tx) error {
		second := &domain.Book{UserID: f.user.ID, Name: "Second"}
		if err := tx.CreateBook(ctx, second); err != nil {
			return err
		}
		ch2 := &domain.Chapter{BookID: f.book.ID, Name: "Ch2"}
		if err := tx.CreateChapter(ctx, ch2); err != nil {
			return err
		}
		for _, c := range []string{"two", "three"} {
			if err := tx.CreateNote(ctx, &domain.Note{ChapterID: f.chapter.ID, Content: c}); err != nil {
				return err
			}
		}
		if err := tx.CreateNote(ctx, &domain.Note{ChapterID: ch2.ID, Content: "four"}); err != nil {
			return err
		}

		books, err := tx.ListBooksByUser(ctx, f.user.ID)
		if err != nil {
			return err
		}
		if len(books) != 2 || books[0].Name != "First" || books[1].Name != "Second" {
			t.Fatalf("books out of order: %+v", books)
		}
		if books[0].NoteCount != 4 || books[1].NoteCount != 0 {
			t.Errorf("note counts = %d, %d; want 4, 0", books[0].NoteCount, books[1].NoteCount)
		}

		chapters, err := tx.ListChaptersByBook(ctx, f.book.ID)
		if err != nil {
			return err
		}
		if len(chapters) != 2 || chapters[0].Name != "Ch1" || chapters[1].Name != "Ch2" {
			t.Errorf("chapters out of order: %+v", chapters)
		}

		notes, err := tx.ListNotesByChapter(ctx, f.chapter.ID)
		if err != nil {
			return err
		}
		var contents []string
		for _, n := range notes {
			contents = append(contents, n.Content)
		}
		if fmt.Sprint(contents) != "[three two one]" {
			t.Errorf("notes not newest first: %v", contents)
		}

		empty, err := tx.ListNotesByChapter(ctx, ch2.ID+100)
		if err != nil {
			return err
		}
		if empty == nil || len(empty) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", empty)
		}

		before := f.book.UpdatedAt
		f.book.Name = "Renamed"
		if err := tx.UpdateBook(ctx, f.book); err != nil {
			return err
		}
		if !f.book.UpdatedAt.After(before) {
			t.Errorf("updated_at not refreshed")
		}
		got, err := tx.GetBook(ctx, f.book.ID)
		if err != nil {
			return err
		}
		if got.Name != "Renamed" || !got.UpdatedAt.Equal(f.book.UpdatedAt) {
			t.Errorf("book after update: %+v", got)
		}

		f.note.Content = "edited"
		if err := tx.UpdateNote(ctx, f.note); err != nil {
			return err
		}
		n, err := tx.GetNote(ctx, f.note.ID)
		if err != nil {
			return err
		}
		if n.Content != "edited" {
			t.Errorf("note content = %q", n.Content)
		}

		f.chapter.Name = "Ch1b"
		return tx.UpdateChapter(ctx, f.chapter)
	})
}

func testOwners(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := seed(t, s, "a@x.com", "A", "A1", "a note")
	b := seed(t, s, "b@x.com", "B", "B1", "b note")

	inTx(t, s, func(tx store.Tx) error {
		checks := []struct {
			name string
			fn   func(context.Context, int64) (int64, error)
			id   int64
			want int64
		}{
			{"book a", tx.BookOwner, a.book.ID, a.user.ID},
			{"book b", tx.BookOwner, b.book.ID, b.user.ID},
			{"chapter a", tx.ChapterOwner, a.chapter.ID, a.user.ID},
			{"note b", tx.NoteOwner, b.note.ID, b.user.ID},
		}
		for _, c := range checks {
			got, err := c.fn(ctx, c.id)
			if err != nil {
				t.Errorf("%s: %v", c.name, err)
				continue
			}
			if got != c.want {
				t.Errorf("%s: owner %d, want %d", c.name, got, c.want)
			}
		}

		for name, fn := range map[string]func(context.Context, int64) (int64, error){
			"book": tx.BookOwner, "chapter": tx.ChapterOwner, "note": tx.NoteOwner, "tag": tx.TagOwner,
		} {
			if _, err := fn(ctx, 99999); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("%s owner of missing row: %v", name, err)
			}
		}
		return nil
	})
}

func testSearch(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := seed(t, s, "a@x.com", "Trip", "Day1", "Saw the sea")
	seed(t, s, "b@x.com", "Other", "Day1", "The sea is mine")

	inTx(t, s, func(tx store.Tx) error {
		for _, c := range []string{"Discount 100% off", "100 percent", "snake_case", "snakeXcase", "SEASHELLS"} {
			if err := tx.CreateNote(ctx, &domain.Note{ChapterID: a.chapter.ID, Content: c}); err != nil {
				return err
			}
		}

		results, err := tx.SearchNotes(ctx, a.user.ID, "sea", store.SearchLimit)
		if err != nil {
			return err
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results for sea, got %d", len(results))
		}
		// Newest first.
		if results[0].Content != "SEASHELLS" || results[1].Content != "Saw the sea" {
			t.Errorf("unexpected order: %q, %q", results[0].Content, results[1].Content)
		}
		r := results[1]
		if r.BookName != "Trip" || r.ChapterName != "Day1" || r.BookID != a.book.ID || r.ID != a.note.ID {
			t.Errorf("unexpected enrichment: %+v", r)
		}

		pct, err := tx.SearchNotes(ctx, a.user.ID, "100%", store.SearchLimit)
		if err != nil {
			return err
		}
		if len(pct) != 1 || pct[0].Content != "Discount 100% off" {
			t.Errorf("%% not matched literally: %+v", pct)
		}

		under, err := tx.SearchNotes(ctx, a.user.ID, "snake_case", store.SearchLimit)
		if err != nil {
			return err
		}
		if len(under) != 1 || under[0].Content != "snake_case" {
			t.Errorf("_ not matched literally: %+v", under)
		}

		none, err := tx.SearchNotes(ctx, a.user.ID, "", store.SearchLimit)
		if err != nil {
			return err
		}
		if none == nil || len(none) != 0 {
			t.Errorf("blank query should return empty slice, got %#v", none)
		}
		return nil
	})

	inTx(t, s, func(tx store.Tx) error {
		for i := range store.SearchLimit + 5 {
			if err := tx.CreateNote(ctx, &domain.Note{ChapterID: a.chapter.ID, Content: fmt.Sprintf("bulk %d", i)}); err != nil {
				return err
			}
		}
		results, err := tx.SearchNotes(ctx, a.user.ID, "bulk", 0)
		if err != nil {
			return err
		}
		if len(results) != store.SearchLimit {
			t.Errorf("expected %d results, got %d", store.SearchLimit, len(results))
		}
		return nil
	})
}

func testTags(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seed(t, s, "tags@x.com", "B", "C", "N")

	inTx(t, s, func(tx store.Tx) error {
		work := &domain.Tag{UserID: f.user.ID, Name: "work"}
		if err := tx.CreateTag(ctx, work); err != nil {
			return err
		}
		if work.Color != domain.DefaultTagColor {
			t.Errorf("default color = %q", work.Color)
		}
		if err := tx.CreateTag(ctx, &domain.Tag{UserID: f.user.ID, Name: "home", Color: "bg-red-500"}); err != nil {
			return err
		}

		tags, err := tx.ListTagsByUser(ctx, f.user.ID)
		if err != nil {
			return err
		}
		if len(tags) != 2 || tags[0].Name != "home" || tags[1].Name != "work" {
			t.Errorf("tags not ordered by name: %+v", tags)
		}

		work.Color = "bg-green-500"
		if err := tx.UpdateTag(ctx, work); err != nil {
			return err
		}
		got, err := tx.GetTag(ctx, work.ID)
		if err != nil {
			return err
		}
		if got.Color != "bg-green-500" {
			t.Errorf("color = %q", got.Color)
		}

		owner, err := tx.TagOwner(ctx, work.ID)
		if err != nil {
			return err
		}
		if owner != f.user.ID {
			t.Errorf("tag owner = %d", owner)
		}

		if err := tx.DeleteTagRow(ctx, work.ID); err != nil {
			return err
		}
		if err := tx.DeleteTagRow(ctx, work.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("second delete: %v", err)
		}
		return nil
	})
}

func testResetTokens(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seed(t, s, "reset@x.com", "B", "C", "N")
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	inTx(t, s, func(tx store.Tx) error {
		live := &domain.PasswordResetToken{UserID: f.user.ID, TokenHash: "live", ExpiresAt: base.Add(time.Hour)}
		if err := tx.CreateResetToken(ctx, live); err != nil {
			return err
		}
		stale := &domain.PasswordResetToken{UserID: f.user.ID, TokenHash: "stale", ExpiresAt: base.Add(-time.Minute)}
		if err := tx.CreateResetToken(ctx, stale); err != nil {
			return err
		}

		got, err := tx.GetResetTokenByHash(ctx, "live")
		if err != nil {
			return err
		}
		if got.Used || got.UserID != f.user.ID || !got.ExpiresAt.Equal(live.ExpiresAt) {
			t.Errorf("unexpected token %+v", got)
		}

		ok, err := tx.MarkResetTokenUsed(ctx, live.ID)
		if err != nil || !ok {
			t.Fatalf("first mark: ok=%v err=%v", ok, err)
		}
		ok, err = tx.MarkResetTokenUsed(ctx, live.ID)
		if err != nil || ok {
			t.Errorf("second mark: ok=%v err=%v, want false, nil", ok, err)
		}
		got, err = tx.GetResetTokenByHash(ctx, "live")
		if err != nil {
			return err
		}
		if !got.Used {
			t.Error("token not marked used")
		}

		n, err := tx.DeleteExpiredResetTokens(ctx, base)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("purged %d, want 1", n)
		}
		if _, err := tx.GetResetTokenByHash(ctx, "stale"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("stale token still present: %v", err)
		}
		if _, err := tx.GetResetTokenByHash(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("unknown digest: %v", err)
		}
		return nil
	})
}

func testCascadeBook(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seed(t, s, "cb@x.com", "Doomed", "C1", "n1")
	keep := seed(t, s, "keep@x.com", "Kept", "K1", "k1")

	inTx(t, s, func(tx store.Tx) error {
		if err := tx.CreateNote(ctx, &domain.Note{ChapterID: f.chapter.ID, Content: "n2"}); err != nil {
			return err
		}
		c2 := &domain.Chapter{BookID: f.book.ID, Name: "C2"}
		if err := tx.CreateChapter(ctx, c2); err != nil {
			return err
		}
		return tx.CreateNote(ctx, &domain.Note{ChapterID: c2.ID, Content: "n3"})
	})

	inTx(t, s, func(tx store.Tx) error {
		res, err := domain.CascadeDeleteBook(ctx, tx, f.book.ID)
		if err != nil {
			return err
		}
		if res.Books != 1 || res.Chapters != 2 || res.Notes != 3 {
			t.Errorf("cascade result %+v", res)
		}
		return nil
	})

	inTx(t, s, func(tx store.Tx) error {
		if _, err := tx.GetBook(ctx, f.book.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("book survived: %v", err)
		}
		if _, err := tx.GetChapter(ctx, f.chapter.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("chapter survived: %v", err)
		}
		if _, err := tx.GetNote(ctx, f.note.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("note survived: %v", err)
		}
		if _, err := tx.GetNote(ctx, keep.note.ID); err != nil {
			t.Errorf("unrelated note removed: %v", err)
		}
		return nil
	})
}

func testCascadeUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seed(t, s, "gone@x.com", "B1", "C1", "n1")
	keep := seed(t, s, "stay@x.com", "B", "C", "n")

	inTx(t, s, func(tx store.Tx) error {
		if err := tx.CreateBook(ctx, &domain.Book{UserID: f.user.ID, Name: "B2"}); err != nil {
			return err
		}
		if err := tx.CreateTag(ctx, &domain.Tag{UserID: f.user.ID, Name: "t"}); err != nil {
			return err
		}
		return tx.CreateResetToken(ctx, &domain.PasswordResetToken{
			UserID: f.user.ID, TokenHash: "gone-token", ExpiresAt: time.Now().Add(time.Hour),
		})
	})

	inTx(t, s, func(tx store.Tx) error {
		res, err := domain.CascadeDeleteUser(ctx, tx, f.user.ID)
		if err != nil {
			return err
		}
		want := domain.CascadeResult{Books: 2, Chapters: 1, Notes: 1, Tags: 1, ResetTokens: 1}
		if res != want {
			t.Errorf("cascade result %+v, want %+v", res, want)
		}
		return nil
	})

	inTx(t, s, func(tx store.Tx) error {
		if _, err := tx.GetUser(ctx, f.user.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("user survived: %v", err)
		}
		books, err := tx.ListBooksByUser(ctx, f.user.ID)
		if err != nil {
			return err
		}
		if len(books) != 0 {
			t.Errorf("books survived: %+v", books)
		}
		if _, err := tx.GetResetTokenByHash(ctx, "gone-token"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("reset token survived: %v", err)
		}
		if _, err := tx.GetUser(ctx, keep.user.ID); err != nil {
			t.Errorf("other user removed: %v", err)
		}
		return nil
	})
}

func testForeignKeys(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := seed(t, s, "fk@x.com", "B", "C", "N")

	err := s.InTx(ctx, func(tx store.Tx) error {
		return tx.CreateChapter(ctx, &domain.Chapter{BookID: f.book.ID + 1000, Name: "orphan"})
	})
	if err == nil {
		t.Error("expected foreign key violation for missing book")
	}

	// Deleting a parent row directly must fail while children exist.
	err = s.InTx(ctx, func(tx store.Tx) error {
		return tx.DeleteBookRow(ctx, f.book.ID)
	})
	if err == nil {
		t.Error("expected foreign key violation deleting a book with chapters")
	}
}
