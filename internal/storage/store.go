// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/mmynk/kinship/internal/models"
)

// FriendOrder selects the iteration order of ListFriends.
// Pinned friends always come first.
type FriendOrder int

const (
	OrderByName FriendOrder = iota
	OrderByCreated
)

// Store defines the record store: friends, interactions, memos and settings.
// This abstraction allows swapping storage backends without changing the
// service layer. Every committed mutation is announced to the configured
// events.Publisher.
type Store interface {
	// CreateFriend persists a new friend. ID and CreatedAt are filled in by the store.
	CreateFriend(ctx context.Context, friend *models.Friend) error

	// GetFriend retrieves a friend by ID. Returns models.ErrFriendNotFound if absent.
	GetFriend(ctx context.Context, id int64) (*models.Friend, error)

	// UpdateFriend overwrites an existing friend.
	UpdateFriend(ctx context.Context, friend *models.Friend) error

	// DeleteFriend removes a friend together with its interactions and memos.
	DeleteFriend(ctx context.Context, id int64) error

	// ListFriends returns every friend, pinned first, then in the given order.
	ListFriends(ctx context.Context, order FriendOrder) ([]models.Friend, error)

	// CreateInteractions persists a batch atomically (group fan-out).
	CreateInteractions(ctx context.Context, interactions []*models.Interaction) error

	UpdateInteraction(ctx context.Context, interaction *models.Interaction) error
	DeleteInteraction(ctx context.Context, id int64) error
	GetInteraction(ctx context.Context, id int64) (*models.Interaction, error)

	// ListInteractionsByFriend returns a friend's interactions, newest first.
	ListInteractionsByFriend(ctx context.Context, friendID int64) ([]models.Interaction, error)

	// ListInteractionsByDate returns interactions with from <= date < to, newest first.
	ListInteractionsByDate(ctx context.Context, from, to time.Time) ([]models.Interaction, error)

	// ListInteractions returns every interaction, newest first.
	ListInteractions(ctx context.Context) ([]models.Interaction, error)

	CreateMemo(ctx context.Context, memo *models.Memo) error
	DeleteMemo(ctx context.Context, id int64) error
	ListMemosByFriend(ctx context.Context, friendID int64) ([]models.Memo, error)

	// GetSetting returns nil and no error when the key is not set.
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	PutSetting(ctx context.Context, setting *models.Setting) error
	DeleteSetting(ctx context.Context, key string) error

	// Snapshot reads friends, interactions and memos in one transaction.
	Snapshot(ctx context.Context) (*models.Snapshot, error)

	// ReplaceAll clears friends, interactions and memos and inserts the
	// snapshot, preserving ids, in one transaction.
	ReplaceAll(ctx context.Context, snap *models.Snapshot) error

	// ClearAll removes every friend, interaction and memo in one transaction.
	ClearAll(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
