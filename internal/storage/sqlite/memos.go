package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/models"
)

// CreateMemo persists a new memo.
func (s *SQLiteStore) CreateMemo(ctx context.Context, memo *models.Memo) error {
	if memo.CreatedAt.IsZero() {
		memo.CreatedAt = time.Now()
	}

	id, err := insertMemo(ctx, s.db, memo, false)
	if err != nil {
		return apperr.Storage("failed to insert memo", err)
	}
	memo.ID = id

	s.publish(events.Memos)
	return nil
}

func insertMemo(ctx context.Context, db execer, m *models.Memo, keepID bool) (int64, error) {
	var id any
	if keepID && m.ID > 0 {
		id = m.ID
	}
	res, err := db.ExecContext(ctx,
		"INSERT INTO memos (id, friend_id, content, created_at) VALUES (?, ?, ?, ?)",
		id, m.FriendID, m.Content, toMillis(m.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteMemo removes a memo by ID.
func (s *SQLiteStore) DeleteMemo(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM memos WHERE id = ?", id)
	if err != nil {
		return apperr.Storage("failed to delete memo", err)
	}
	if notFound(res, err) {
		return fmt.Errorf("memo %d: %w", id, models.ErrNotFound)
	}

	s.publish(events.Memos)
	return nil
}

// ListMemosByFriend returns a friend's memos, newest first.
func (s *SQLiteStore) ListMemosByFriend(ctx context.Context, friendID int64) ([]models.Memo, error) {
	return listMemos(ctx, s.db,
		"SELECT id, friend_id, content, created_at FROM memos WHERE friend_id = ? ORDER BY created_at DESC, id DESC",
		friendID,
	)
}

func listMemos(ctx context.Context, q queryer, query string, args ...any) ([]models.Memo, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("failed to list memos", err)
	}
	defer rows.Close()

	var memos []models.Memo
	for rows.Next() {
		var (
			m         models.Memo
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.FriendID, &m.Content, &createdAt); err != nil {
			return nil, apperr.Storage("failed to scan memo", err)
		}
		m.CreatedAt = fromMillis(createdAt)
		memos = append(memos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("failed to iterate memos", err)
	}
	return memos, nil
}
