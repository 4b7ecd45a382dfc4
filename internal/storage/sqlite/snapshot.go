package sqlite

import (
	"context"
	"database/sql"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/models"
	"github.com/mmynk/kinship/internal/storage"
)

// Snapshot reads friends, interactions and memos within one transaction so
// the three collections come from the same generation.
func (s *SQLiteStore) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if snap.Friends, err = listFriends(ctx, tx, storage.OrderByCreated); err != nil {
			return err
		}
		if snap.Interactions, err = listInteractions(ctx, tx,
			"SELECT "+interactionColumns+" FROM interactions ORDER BY id"); err != nil {
			return err
		}
		if snap.Memos, err = listMemos(ctx, tx,
			"SELECT id, friend_id, content, created_at FROM memos ORDER BY id"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func clearOwned(ctx context.Context, tx *sql.Tx) error {
	// Children first so the foreign keys never dangle mid-transaction.
	for _, table := range []string{"interactions", "memos", "friends"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return apperr.Storage("failed to clear "+table, err)
		}
	}
	return nil
}

// ReplaceAll clears the friend-owned collections and bulk-inserts snap,
// keeping record ids so interactions and memos still point at their friends.
// Either everything is replaced or nothing is.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, snap *models.Snapshot) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := clearOwned(ctx, tx); err != nil {
			return err
		}
		for i := range snap.Friends {
			if _, err := insertFriend(ctx, tx, &snap.Friends[i], true); err != nil {
				return apperr.Storage("failed to restore friend", err)
			}
		}
		for i := range snap.Interactions {
			if _, err := insertInteraction(ctx, tx, &snap.Interactions[i], true); err != nil {
				return apperr.Storage("failed to restore interaction", err)
			}
		}
		for i := range snap.Memos {
			if _, err := insertMemo(ctx, tx, &snap.Memos[i], true); err != nil {
				return apperr.Storage("failed to restore memo", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(events.Friends, events.Interactions, events.Memos)
	return nil
}

// ClearAll removes every friend, interaction and memo. Settings are kept.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return clearOwned(ctx, tx)
	})
	if err != nil {
		return err
	}

	s.publish(events.Friends, events.Interactions, events.Memos)
	return nil
}
