package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/models"
	"github.com/mmynk/kinship/internal/storage"
)

const friendColumns = `id, name, nickname, photo, tag, birthday_month, birthday_day, birthday_year,
	met_at, likes, dislikes, maintenance_on, maintenance_interval, pinned, color, created_at`

func scanFriend(row scanner) (*models.Friend, error) {
	var (
		f                     models.Friend
		month, day, year      sql.NullInt64
		metAt                 sql.NullInt64
		maintenanceOn, pinned int
		color                 string
		createdAt             int64
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Nickname, &f.Photo, &f.Tag, &month, &day, &year,
		&metAt, &f.Likes, &f.Dislikes, &maintenanceOn, &f.MaintenanceInterval, &pinned, &color, &createdAt); err != nil {
		return nil, err
	}
	if month.Valid && day.Valid {
		f.Birthday = &models.Birthday{Month: int(month.Int64), Day: int(day.Int64), Year: int(year.Int64)}
	}
	f.MetAt = timePtr(metAt)
	f.MaintenanceOn = maintenanceOn == 1
	f.Pinned = pinned == 1
	f.Color, _ = models.ParseThemeColor(color)
	f.CreatedAt = fromMillis(createdAt)
	return &f, nil
}

// friendArgs returns the column values after id, in friendColumns order.
func friendArgs(f *models.Friend) []any {
	var month, day, year any
	if f.Birthday.Set() {
		month, day = f.Birthday.Month, f.Birthday.Day
		if f.Birthday.Year > 0 {
			year = f.Birthday.Year
		}
	}
	var photo any
	if len(f.Photo) > 0 {
		photo = f.Photo
	}
	return []any{
		f.Name, f.Nickname, photo, f.Tag, month, day, year,
		nullMillis(f.MetAt), f.Likes, f.Dislikes, boolInt(f.MaintenanceOn), f.MaintenanceInterval,
		boolInt(f.Pinned), f.Color.String(), toMillis(f.CreatedAt),
	}
}

func insertFriend(ctx context.Context, db execer, f *models.Friend, keepID bool) (int64, error) {
	args := friendArgs(f)
	var id any
	if keepID && f.ID > 0 {
		id = f.ID
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO friends (`+friendColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{id}, args...)...,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateFriend persists a new friend to the database.
func (s *SQLiteStore) CreateFriend(ctx context.Context, friend *models.Friend) error {
	if friend.CreatedAt.IsZero() {
		friend.CreatedAt = time.Now()
	}

	id, err := insertFriend(ctx, s.db, friend, false)
	if err != nil {
		return apperr.Storage("failed to insert friend", err)
	}
	friend.ID = id

	s.publish(events.Friends)
	return nil
}

// GetFriend retrieves a friend by ID.
func (s *SQLiteStore) GetFriend(ctx context.Context, id int64) (*models.Friend, error) {
	f, err := scanFriend(s.db.QueryRowContext(ctx,
		"SELECT "+friendColumns+" FROM friends WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("friend %d: %w", id, models.ErrFriendNotFound)
	}
	if err != nil {
		return nil, apperr.Storage("failed to get friend", err)
	}
	return f, nil
}

// UpdateFriend overwrites an existing friend. CreatedAt is left untouched.
func (s *SQLiteStore) UpdateFriend(ctx context.Context, friend *models.Friend) error {
	args := friendArgs(friend)
	// Drop created_at, it never changes after insert.
	args = args[:len(args)-1]

	res, err := s.db.ExecContext(ctx,
		`UPDATE friends SET name = ?, nickname = ?, photo = ?, tag = ?, birthday_month = ?, birthday_day = ?,
		 birthday_year = ?, met_at = ?, likes = ?, dislikes = ?, maintenance_on = ?, maintenance_interval = ?,
		 pinned = ?, color = ? WHERE id = ?`,
		append(args, friend.ID)...,
	)
	if err != nil {
		return apperr.Storage("failed to update friend", err)
	}
	if notFound(res, err) {
		return fmt.Errorf("friend %d: %w", friend.ID, models.ErrFriendNotFound)
	}

	s.publish(events.Friends)
	return nil
}

// DeleteFriend removes a friend and cascades to its interactions and memos.
func (s *SQLiteStore) DeleteFriend(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM interactions WHERE friend_id = ?", id); err != nil {
			return apperr.Storage("failed to delete interactions", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM memos WHERE friend_id = ?", id); err != nil {
			return apperr.Storage("failed to delete memos", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM friends WHERE id = ?", id)
		if err != nil {
			return apperr.Storage("failed to delete friend", err)
		}
		if notFound(res, err) {
			return fmt.Errorf("friend %d: %w", id, models.ErrFriendNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(events.Friends, events.Interactions, events.Memos)
	return nil
}

// ListFriends returns all friends, pinned first.
func (s *SQLiteStore) ListFriends(ctx context.Context, order storage.FriendOrder) ([]models.Friend, error) {
	return listFriends(ctx, s.db, order)
}

func listFriends(ctx context.Context, q queryer, order storage.FriendOrder) ([]models.Friend, error) {
	orderBy := "pinned DESC, name COLLATE NOCASE, id"
	if order == storage.OrderByCreated {
		orderBy = "pinned DESC, created_at DESC, id DESC"
	}

	rows, err := q.QueryContext(ctx, "SELECT "+friendColumns+" FROM friends ORDER BY "+orderBy)
	if err != nil {
		return nil, apperr.Storage("failed to list friends", err)
	}
	defer rows.Close()

	var friends []models.Friend
	for rows.Next() {
		f, err := scanFriend(rows)
		if err != nil {
			return nil, apperr.Storage("failed to scan friend", err)
		}
		friends = append(friends, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("failed to iterate friends", err)
	}
	return friends, nil
}
