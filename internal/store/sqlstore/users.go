package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, email, password_hash, name, created_at`

func scanUser(row scanner) (*domain.User, error) {
	var (
		u         domain.User
		name      sql.NullString
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &createdAt); err != nil {
		return nil, err
	}
	if name.Valid {
		u.Name = &name.String
	}

	var err error
	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// normalizeEmail is the stored and compared form of an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a user and fills in ID and CreatedAt.
// Returns store.ErrAlreadyExists if the email is taken.
func (t *txn) CreateUser(ctx context.Context, user *domain.User) error {
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = t.timestamp()

	newID, err := t.insert(ctx, `
		INSERT INTO users (email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?)`,
		user.Email,
		user.PasswordHash,
		nullableString(user.Name),
		formatTime(user.CreatedAt),
	)
	if err != nil {
		if t.d.isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("email already registered")
		}
		return err
	}
	user.ID = newID
	return nil
}

// GetUser retrieves a user by ID.
func (t *txn) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(t.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	return u, err
}

// GetUserByEmail retrieves a user by case-insensitive email match.
func (t *txn) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(t.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email)))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	return u, err
}

// UpdateUserPassword replaces a user's password hash.
func (t *txn) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	return t.updateOne(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
}

// DeleteUserRow deletes only the user row. Owned rows must already be gone.
func (t *txn) DeleteUserRow(ctx context.Context, userID int64) error {
	return t.deleteOne(ctx, `DELETE FROM users WHERE id = ?`, userID)
}
