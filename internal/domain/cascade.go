package domain

import "context"

// CascadeDeleter is the set of single-level deletes the hierarchy store
// exposes inside a transaction. Each method removes only the rows it names;
// the Cascade* functions below decide the order, children before parents,
// so foreign keys never dangle mid-transaction.
type CascadeDeleter interface {
	DeleteNotesByChapter(ctx context.Context, chapterID int64) (int64, error)
	DeleteNotesByBook(ctx context.Context, bookID int64) (int64, error)
	DeleteChaptersByBook(ctx context.Context, bookID int64) (int64, error)
	DeleteChapterRow(ctx context.Context, chapterID int64) error
	DeleteBookRow(ctx context.Context, bookID int64) error
	ListBookIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	DeleteTagsByUser(ctx context.Context, userID int64) (int64, error)
	DeleteResetTokensByUser(ctx context.Context, userID int64) (int64, error)
	DeleteUserRow(ctx context.Context, userID int64) error
}

// CascadeResult counts what a cascading delete removed, for logging.
type CascadeResult struct {
	Books       int64
	Chapters    int64
	Notes       int64
	Tags        int64
	ResetTokens int64
}

func (r *CascadeResult) add(o CascadeResult) {
	r.Books += o.Books
	r.Chapters += o.Chapters
	r.Notes += o.Notes
	r.Tags += o.Tags
	r.ResetTokens += o.ResetTokens
}

// CascadeDeleteChapter removes a chapter and its notes.
func CascadeDeleteChapter(ctx context.Context, d CascadeDeleter, chapterID int64) (CascadeResult, error) {
	var res CascadeResult

	notes, err := d.DeleteNotesByChapter(ctx, chapterID)
	if err != nil {
		return res, err
	}
	res.Notes = notes

	if err := d.DeleteChapterRow(ctx, chapterID); err != nil {
		return res, err
	}
	res.Chapters = 1

	return res, nil
}

// CascadeDeleteBook removes a book, its chapters, and their notes.
func CascadeDeleteBook(ctx context.Context, d CascadeDeleter, bookID int64) (CascadeResult, error) {
	var res CascadeResult

	notes, err := d.DeleteNotesByBook(ctx, bookID)
	if err != nil {
		return res, err
	}
	res.Notes = notes

	chapters, err := d.DeleteChaptersByBook(ctx, bookID)
	if err != nil {
		return res, err
	}
	res.Chapters = chapters

	if err := d.DeleteBookRow(ctx, bookID); err != nil {
		return res, err
	}
	res.Books = 1

	return res, nil
}

// CascadeDeleteUser removes a user and everything reachable from it:
// books (with chapters and notes), tags, and password reset tokens.
func CascadeDeleteUser(ctx context.Context, d CascadeDeleter, userID int64) (CascadeResult, error) {
	var res CascadeResult

	bookIDs, err := d.ListBookIDsByUser(ctx, userID)
	if err != nil {
		return res, err
	}

	for _, bookID := range bookIDs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sub, err := CascadeDeleteBook(ctx, d, bookID)
		res.add(sub)
		if err != nil {
			return res, err
		}
	}

	tags, err := d.DeleteTagsByUser(ctx, userID)
	if err != nil {
		return res, err
	}
	res.Tags = tags

	tokens, err := d.DeleteResetTokensByUser(ctx, userID)
	if err != nil {
		return res, err
	}
	res.ResetTokens = tokens

	if err := d.DeleteUserRow(ctx, userID); err != nil {
		return res, err
	}

	return res, nil
}
