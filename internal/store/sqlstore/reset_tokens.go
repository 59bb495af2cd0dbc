package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

const resetTokenColumns = `id, user_id, token_hash, expires_at, used, created_at`

func scanResetToken(row scanner) (*domain.PasswordResetToken, error) {
	var (
		tok                  domain.PasswordResetToken
		expiresAt, createdAt string
	)
	if err := row.Scan(&tok.ID, &tok.UserID, &tok.TokenHash, &expiresAt, &tok.Used, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if tok.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if tok.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &tok, nil
}

// CreateResetToken stores a token digest. ExpiresAt is set by the caller.
func (t *txn) CreateResetToken(ctx context.Context, token *domain.PasswordResetToken) error {
	token.CreatedAt = t.timestamp()
	token.Used = false

	newID, err := t.insert(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		token.UserID, token.TokenHash, formatTime(token.ExpiresAt), false, formatTime(token.CreatedAt),
	)
	if err != nil {
		if t.d.isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	token.ID = newID
	return nil
}

// GetResetTokenByHash looks a token up by exact digest match.
func (t *txn) GetResetTokenByHash(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	tok, err := scanResetToken(t.queryRow(ctx,
		`SELECT `+resetTokenColumns+` FROM password_reset_tokens WHERE token_hash = ?`, tokenHash))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	return tok, err
}

// MarkResetTokenUsed flips used from false to true. It reports false when
// the token was already used, so concurrent redemptions cannot both win.
func (t *txn) MarkResetTokenUsed(ctx context.Context, tokenID int64) (bool, error) {
	res, err := t.exec(ctx,
		`UPDATE password_reset_tokens SET used = ? WHERE id = ? AND used = ?`, true, tokenID, false)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteExpiredResetTokens removes tokens with expires_at <= now.
func (t *txn) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	return t.deleteRows(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= ?`, formatTime(now))
}

// DeleteResetTokensByUser removes every reset token of a user.
func (t *txn) DeleteResetTokensByUser(ctx context.Context, userID int64) (int64, error) {
	return t.deleteRows(ctx, `DELETE FROM password_reset_tokens WHERE user_id = ?`, userID)
}
