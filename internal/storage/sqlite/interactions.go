package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/models"
)

const interactionColumns = `id, friend_id, activity_id, type, title, date, price,
	gift_direction, split_mode, happened, created_at`

func scanInteraction(row scanner) (*models.Interaction, error) {
	var (
		in               models.Interaction
		typ              string
		date, createdAt  int64
		price            sql.NullFloat64
		direction, split sql.NullString
		happened         sql.NullInt64
	)
	if err := row.Scan(&in.ID, &in.FriendID, &in.ActivityID, &typ, &in.Title, &date, &price,
		&direction, &split, &happened, &createdAt); err != nil {
		return nil, err
	}
	in.Type = models.InteractionType(typ)
	in.Date = fromMillis(date)
	in.CreatedAt = fromMillis(createdAt)
	if price.Valid {
		p := price.Float64
		in.Price = &p
	}
	in.Direction = models.GiftDirection(direction.String)
	in.Split = models.SplitMode(split.String)
	if happened.Valid {
		h := happened.Int64 == 1
		in.Happened = &h
	}
	return &in, nil
}

// interactionArgs returns the column values after id, in interactionColumns order.
func interactionArgs(in *models.Interaction) []any {
	var price, happened any
	if in.Price != nil {
		price = *in.Price
	}
	if in.Happened != nil {
		happened = boolInt(*in.Happened)
	}
	return []any{
		in.FriendID, in.ActivityID, string(in.Type), in.Title, toMillis(in.Date), price,
		nullString(string(in.Direction)), nullString(string(in.Split)), happened, toMillis(in.CreatedAt),
	}
}

func insertInteraction(ctx context.Context, db execer, in *models.Interaction, keepID bool) (int64, error) {
	var id any
	if keepID && in.ID > 0 {
		id = in.ID
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO interactions (`+interactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{id}, interactionArgs(in)...)...,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateInteractions persists a batch of interactions in one transaction.
// Interactions without an ActivityID share a freshly generated one.
func (s *SQLiteStore) CreateInteractions(ctx context.Context, interactions []*models.Interaction) error {
	if len(interactions) == 0 {
		return nil
	}
	activityID := uuid.New().String()
	now := time.Now()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, in := range interactions {
			if in.ActivityID == "" {
				in.ActivityID = activityID
			}
			if in.CreatedAt.IsZero() {
				in.CreatedAt = now
			}
			id, err := insertInteraction(ctx, tx, in, false)
			if err != nil {
				return apperr.Storage("failed to insert interaction", err)
			}
			in.ID = id
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(events.Interactions)
	return nil
}

// GetInteraction retrieves an interaction by ID.
func (s *SQLiteStore) GetInteraction(ctx context.Context, id int64) (*models.Interaction, error) {
	in, err := scanInteraction(s.db.QueryRowContext(ctx,
		"SELECT "+interactionColumns+" FROM interactions WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("interaction %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, apperr.Storage("failed to get interaction", err)
	}
	return in, nil
}

// UpdateInteraction overwrites an existing interaction.
func (s *SQLiteStore) UpdateInteraction(ctx context.Context, in *models.Interaction) error {
	args := interactionArgs(in)
	// Drop created_at, it never changes after insert.
	args = args[:len(args)-1]

	res, err := s.db.ExecContext(ctx,
		`UPDATE interactions SET friend_id = ?, activity_id = ?, type = ?, title = ?, date = ?, price = ?,
		 gift_direction = ?, split_mode = ?, happened = ? WHERE id = ?`,
		append(args, in.ID)...,
	)
	if err != nil {
		return apperr.Storage("failed to update interaction", err)
	}
	if notFound(res, err) {
		return fmt.Errorf("interaction %d: %w", in.ID, models.ErrNotFound)
	}

	s.publish(events.Interactions)
	return nil
}

// DeleteInteraction removes an interaction by ID.
func (s *SQLiteStore) DeleteInteraction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM interactions WHERE id = ?", id)
	if err != nil {
		return apperr.Storage("failed to delete interaction", err)
	}
	if notFound(res, err) {
		return fmt.Errorf("interaction %d: %w", id, models.ErrNotFound)
	}

	s.publish(events.Interactions)
	return nil
}

// ListInteractionsByFriend returns a friend's interactions, newest first.
func (s *SQLiteStore) ListInteractionsByFriend(ctx context.Context, friendID int64) ([]models.Interaction, error) {
	return listInteractions(ctx, s.db,
		"SELECT "+interactionColumns+" FROM interactions WHERE friend_id = ? ORDER BY date DESC, id DESC",
		friendID,
	)
}

// ListInteractionsByDate returns interactions dated in [from, to), newest first.
func (s *SQLiteStore) ListInteractionsByDate(ctx context.Context, from, to time.Time) ([]models.Interaction, error) {
	return listInteractions(ctx, s.db,
		"SELECT "+interactionColumns+" FROM interactions WHERE date >= ? AND date < ? ORDER BY date DESC, id DESC",
		toMillis(from), toMillis(to),
	)
}

// ListInteractions returns every interaction, newest first.
func (s *SQLiteStore) ListInteractions(ctx context.Context) ([]models.Interaction, error) {
	return listInteractions(ctx, s.db,
		"SELECT "+interactionColumns+" FROM interactions ORDER BY date DESC, id DESC",
	)
}

func listInteractions(ctx context.Context, q queryer, query string, args ...any) ([]models.Interaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("failed to list interactions", err)
	}
	defer rows.Close()

	var out []models.Interaction
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, apperr.Storage("failed to scan interaction", err)
		}
		out = append(out, *in)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("failed to iterate interactions", err)
	}
	return out, nil
}
