package sqlstore

import (
	"context"
	"database/sql"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

// tagColumns must match the scan order in scanTag.
const tagColumns = `id, user_id, name, color, created_at`

func scanTag(row scanner) (*domain.Tag, error) {
	var (
		tag       domain.Tag
		createdAt string
	)
	if err := row.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &createdAt); err != nil {
		return nil, err
	}

	var err error
	tag.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// CreateTag inserts a tag and fills in ID and CreatedAt.
// An empty color gets domain.DefaultTagColor.
func (t *txn) CreateTag(ctx context.Context, tag *domain.Tag) error {
	if tag.Color == "" {
		tag.Color = domain.DefaultTagColor
	}
	tag.CreatedAt = t.timestamp()

	newID, err := t.insert(ctx, `
		INSERT INTO tags (user_id, name, color, created_at)
		VALUES (?, ?, ?, ?)`,
		tag.UserID, tag.Name, tag.Color, formatTime(tag.CreatedAt),
	)
	if err != nil {
		return err
	}
	tag.ID = newID
	return nil
}

// GetTag retrieves a tag by ID.
func (t *txn) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	tag, err := scanTag(t.queryRow(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	return tag, err
}

// ListTagsByUser returns a user's tags ordered by name.
func (t *txn) ListTagsByUser(ctx context.Context, userID int64) ([]*domain.Tag, error) {
	rows, err := t.query(ctx, `SELECT `+tagColumns+` FROM tags
		WHERE user_id = ? ORDER BY name ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// UpdateTag writes the tag's name and color.
func (t *txn) UpdateTag(ctx context.Context, tag *domain.Tag) error {
	return t.updateOne(ctx, `UPDATE tags SET name = ?, color = ? WHERE id = ?`,
		tag.Name, tag.Color, tag.ID)
}

// TagOwner returns the user id owning a tag.
func (t *txn) TagOwner(ctx context.Context, tagID int64) (int64, error) {
	return t.owner(ctx, `SELECT user_id FROM tags WHERE id = ?`, tagID)
}

// DeleteTagRow deletes a single tag.
func (t *txn) DeleteTagRow(ctx context.Context, tagID int64) error {
	return t.deleteOne(ctx, `DELETE FROM tags WHERE id = ?`, tagID)
}

// DeleteTagsByUser deletes every tag a user owns.
func (t *txn) DeleteTagsByUser(ctx context.Context, userID int64) (int64, error) {
	return t.deleteRows(ctx, `DELETE FROM tags WHERE user_id = ?`, userID)
}
