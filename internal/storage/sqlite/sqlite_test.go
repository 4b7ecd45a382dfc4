package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/models"
	"github.com/mmynk/kinship/internal/storage"
)

func newTestStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func TestFriends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateFriend assigns id and created time", func(t *testing.T) {
		f := &models.Friend{Name: "Alice"}
		require.NoError(t, store.CreateFriend(ctx, f))
		assert.NotZero(t, f.ID)
		assert.False(t, f.CreatedAt.IsZero())
	})

	t.Run("GetFriend round-trips every field", func(t *testing.T) {
		met := time.UnixMilli(date(2020, time.June, 1).UnixMilli())
		original := &models.Friend{
			Name:                "Bob",
			Nickname:            "Bobby",
			Photo:               []byte{0xff, 0xd8, 0x01, 0x02},
			Tag:                 "college",
			Birthday:            &models.Birthday{Month: 3, Day: 14, Year: 1990},
			MetAt:               &met,
			Likes:               "tea",
			Dislikes:            "rain",
			MaintenanceOn:       true,
			MaintenanceInterval: 14,
			Pinned:              true,
			Color:               models.Custom("#A1B2C3"),
		}
		require.NoError(t, store.CreateFriend(ctx, original))

		got, err := store.GetFriend(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, original.Name, got.Name)
		assert.Equal(t, original.Nickname, got.Nickname)
		assert.Equal(t, original.Photo, got.Photo)
		assert.Equal(t, original.Tag, got.Tag)
		assert.Equal(t, *original.Birthday, *got.Birthday)
		require.NotNil(t, got.MetAt)
		assert.True(t, met.Equal(*got.MetAt))
		assert.Equal(t, original.Likes, got.Likes)
		assert.Equal(t, original.Dislikes, got.Dislikes)
		assert.True(t, got.MaintenanceOn)
		assert.Equal(t, 14, got.MaintenanceInterval)
		assert.True(t, got.Pinned)
		assert.Equal(t, "#A1B2C3", got.Color.String())
		assert.Equal(t, original.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())
	})

	t.Run("GetFriend reports missing friends", func(t *testing.T) {
		_, err := store.GetFriend(ctx, 99999)
		assert.ErrorIs(t, err, models.ErrFriendNotFound)
	})

	t.Run("UpdateFriend keeps created time", func(t *testing.T) {
		f := &models.Friend{Name: "Carol"}
		require.NoError(t, store.CreateFriend(ctx, f))
		created := f.CreatedAt.UnixMilli()

		f.Name = "Caroline"
		f.Birthday = nil
		f.CreatedAt = time.Now().Add(24 * time.Hour)
		require.NoError(t, store.UpdateFriend(ctx, f))

		got, err := store.GetFriend(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, "Caroline", got.Name)
		assert.Nil(t, got.Birthday)
		assert.Equal(t, created, got.CreatedAt.UnixMilli())
	})

	t.Run("UpdateFriend reports missing friends", func(t *testing.T) {
		err := store.UpdateFriend(ctx, &models.Friend{ID: 99999, Name: "Ghost"})
		assert.ErrorIs(t, err, models.ErrFriendNotFound)
	})
}

func TestListFriendsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, f := range []*models.Friend{
		{Name: "charlie"},
		{Name: "Alice"},
		{Name: "bob", Pinned: true},
	} {
		f.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.CreateFriend(ctx, f))
	}

	names := func(friends []models.Friend) []string {
		var out []string
		for _, f := range friends {
			out = append(out, f.Name)
		}
		return out
	}

	byName, err := store.ListFriends(ctx, storage.OrderByName)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "Alice", "charlie"}, names(byName))

	byCreated, err := store.ListFriends(ctx, storage.OrderByCreated)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "Alice", "charlie"}, names(byCreated))
}

func TestInteractions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := &models.Friend{Name: "Alice"}
	bob := &models.Friend{Name: "Bob"}
	require.NoError(t, store.CreateFriend(ctx, alice))
	require.NoError(t, store.CreateFriend(ctx, bob))

	t.Run("CreateInteractions shares one activity id", func(t *testing.T) {
		batch := []*models.Interaction{
			{FriendID: alice.ID, Type: models.TypeMeetup, Title: "Dinner", Date: date(2026, 3, 1), Price: ptr(60.0), Split: models.SplitEvenly},
			{FriendID: bob.ID, Type: models.TypeMeetup, Title: "Dinner", Date: date(2026, 3, 1), Price: ptr(60.0), Split: models.SplitEvenly},
		}
		require.NoError(t, store.CreateInteractions(ctx, batch))

		assert.NotZero(t, batch[0].ID)
		assert.NotEqual(t, batch[0].ID, batch[1].ID)
		assert.NotEmpty(t, batch[0].ActivityID)
		assert.Equal(t, batch[0].ActivityID, batch[1].ActivityID)
	})

	t.Run("CreateInteractions is atomic", func(t *testing.T) {
		before, err := store.ListInteractions(ctx)
		require.NoError(t, err)

		batch := []*models.Interaction{
			{FriendID: alice.ID, Type: models.TypeGift, Title: "Book", Date: date(2026, 4, 1), Direction: models.GiftOutgoing},
			{FriendID: 99999, Type: models.TypeGift, Title: "Book", Date: date(2026, 4, 1), Direction: models.GiftOutgoing},
		}
		assert.Error(t, store.CreateInteractions(ctx, batch))

		after, err := store.ListInteractions(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("GetInteraction round-trips optional fields", func(t *testing.T) {
		gift := &models.Interaction{FriendID: alice.ID, Type: models.TypeGift, Title: "Scarf", Date: date(2026, 2, 1), Direction: models.GiftIncoming}
		cancelled := &models.Interaction{FriendID: alice.ID, Type: models.TypeMeetup, Title: "Hike", Date: date(2026, 2, 2), Split: models.SplitSelfPays, Happened: ptr(false)}
		require.NoError(t, store.CreateInteractions(ctx, []*models.Interaction{gift, cancelled}))

		got, err := store.GetInteraction(ctx, gift.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TypeGift, got.Type)
		assert.Equal(t, models.GiftIncoming, got.Direction)
		assert.Nil(t, got.Price)
		assert.Nil(t, got.Happened)
		assert.Empty(t, got.Split)

		got, err = store.GetInteraction(ctx, cancelled.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Happened)
		assert.False(t, *got.Happened)
		assert.False(t, got.Occurred())
	})

	t.Run("ListInteractionsByFriend is newest first", func(t *testing.T) {
		list, err := store.ListInteractionsByFriend(ctx, alice.ID)
		require.NoError(t, err)
		require.NotEmpty(t, list)
		for i := 1; i < len(list); i++ {
			assert.False(t, list[i].Date.After(list[i-1].Date))
		}
		for _, in := range list {
			assert.Equal(t, alice.ID, in.FriendID)
		}
	})

	t.Run("ListInteractionsByDate is half open", func(t *testing.T) {
		list, err := store.ListInteractionsByDate(ctx, date(2026, 2, 1), date(2026, 2, 2))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Scarf", list[0].Title)
	})

	t.Run("UpdateInteraction and DeleteInteraction", func(t *testing.T) {
		in := &models.Interaction{FriendID: bob.ID, Type: models.TypeMeetup, Title: "Coffee", Date: date(2026, 5, 1), Split: models.SplitOtherPays}
		require.NoError(t, store.CreateInteractions(ctx, []*models.Interaction{in}))

		in.Title = "Lunch"
		in.Price = ptr(25.5)
		require.NoError(t, store.UpdateInteraction(ctx, in))

		got, err := store.GetInteraction(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, "Lunch", got.Title)
		assert.Equal(t, 25.5, *got.Price)

		require.NoError(t, store.DeleteInteraction(ctx, in.ID))
		_, err = store.GetInteraction(ctx, in.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, store.DeleteInteraction(ctx, in.ID), models.ErrNotFound)
	})
}

func TestDeleteFriendCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := &models.Friend{Name: "Alice"}
	bob := &models.Friend{Name: "Bob"}
	require.NoError(t, store.CreateFriend(ctx, alice))
	require.NoError(t, store.CreateFriend(ctx, bob))

	require.NoError(t, store.CreateInteractions(ctx, []*models.Interaction{
		{FriendID: alice.ID, Type: models.TypeMeetup, Title: "Dinner", Date: date(2026, 3, 1), Split: models.SplitEvenly},
		{FriendID: bob.ID, Type: models.TypeMeetup, Title: "Dinner", Date: date(2026, 3, 1), Split: models.SplitEvenly},
	}))
	require.NoError(t, store.CreateMemo(ctx, &models.Memo{FriendID: alice.ID, Content: "Allergic to nuts"}))
	require.NoError(t, store.CreateMemo(ctx, &models.Memo{FriendID: bob.ID, Content: "Moving in May"}))

	require.NoError(t, store.DeleteFriend(ctx, alice.ID))

	_, err := store.GetFriend(ctx, alice.ID)
	assert.ErrorIs(t, err, models.ErrFriendNotFound)

	interactions, err := store.ListInteractionsByFriend(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, interactions)
	memos, err := store.ListMemosByFriend(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, memos)

	interactions, err = store.ListInteractionsByFriend(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, interactions, 1)
	memos, err = store.ListMemosByFriend(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, memos, 1)

	assert.ErrorIs(t, store.DeleteFriend(ctx, alice.ID), models.ErrFriendNotFound)
}

func TestMemos(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := &models.Friend{Name: "Alice"}
	require.NoError(t, store.CreateFriend(ctx, f))

	first := &models.Memo{FriendID: f.ID, Content: "first", CreatedAt: time.Now().Add(-time.Hour)}
	second := &models.Memo{FriendID: f.ID, Content: "second"}
	require.NoError(t, store.CreateMemo(ctx, first))
	require.NoError(t, store.CreateMemo(ctx, second))

	memos, err := store.ListMemosByFriend(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, memos, 2)
	assert.Equal(t, "second", memos[0].Content)
	assert.Equal(t, "first", memos[1].Content)

	require.NoError(t, store.DeleteMemo(ctx, first.ID))
	assert.ErrorIs(t, store.DeleteMemo(ctx, first.ID), models.ErrNotFound)

	memos, err = store.ListMemosByFriend(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, memos, 1)
}

func TestSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetSetting(ctx, models.SettingBirthdayReminders)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.PutSetting(ctx, &models.Setting{Key: models.SettingBirthdayReminders, Value: []byte("[0,3]")}))
	require.NoError(t, store.PutSetting(ctx, &models.Setting{Key: models.SettingBirthdayReminders, Value: []byte("[0,3,7]")}))

	got, err = store.GetSetting(ctx, models.SettingBirthdayReminders)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "[0,3,7]", string(got.Value))

	require.NoError(t, store.PutSetting(ctx, &models.Setting{Key: models.SettingCustomFont, Value: []byte{1, 2, 3}, FileName: "font.ttf"}))
	font, err := store.GetSetting(ctx, models.SettingCustomFont)
	require.NoError(t, err)
	assert.Equal(t, "font.ttf", font.FileName)
	assert.Equal(t, []byte{1, 2, 3}, font.Value)

	require.NoError(t, store.DeleteSetting(ctx, models.SettingCustomFont))
	require.NoError(t, store.DeleteSetting(ctx, models.SettingCustomFont))
	font, err = store.GetSetting(ctx, models.SettingCustomFont)
	require.NoError(t, err)
	assert.Nil(t, font)
}

func TestReplaceAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := &models.Friend{Name: "Old"}
	require.NoError(t, store.CreateFriend(ctx, old))
	require.NoError(t, store.PutSetting(ctx, &models.Setting{Key: models.SettingAppearance, Value: []byte(`"dark"`)}))

	created := time.UnixMilli(date(2025, 1, 1).UnixMilli())
	snap := &models.Snapshot{
		Friends: []models.Friend{
			{ID: 7, Name: "Alice", Photo: []byte{1, 2, 3}, CreatedAt: created},
			{ID: 42, Name: "Bob", CreatedAt: created},
		},
		Interactions: []models.Interaction{
			{ID: 3, FriendID: 42, ActivityID: "a1", Type: models.TypeMeetup, Title: "Dinner", Date: date(2026, 3, 1), Split: models.SplitEvenly, CreatedAt: created},
		},
		Memos: []models.Memo{
			{ID: 5, FriendID: 7, Content: "likes jazz", CreatedAt: created},
		},
	}
	require.NoError(t, store.ReplaceAll(ctx, snap))

	_, err := store.GetFriend(ctx, old.ID)
	assert.ErrorIs(t, err, models.ErrFriendNotFound)

	bob, err := store.GetFriend(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Bob", bob.Name)

	got, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got.Friends, 2)
	require.Len(t, got.Interactions, 1)
	require.Len(t, got.Memos, 1)
	assert.Equal(t, int64(42), got.Interactions[0].FriendID)
	assert.Equal(t, "a1", got.Interactions[0].ActivityID)
	assert.Equal(t, int64(7), got.Memos[0].FriendID)

	// Settings survive a restore.
	appearance, err := store.GetSetting(ctx, models.SettingAppearance)
	require.NoError(t, err)
	assert.NotNil(t, appearance)

	t.Run("failed restore leaves data untouched", func(t *testing.T) {
		bad := &models.Snapshot{
			Friends: []models.Friend{{ID: 1, Name: "Solo", CreatedAt: created}},
			Interactions: []models.Interaction{
				{ID: 1, FriendID: 1000, Type: models.TypeMeetup, Title: "Orphan", Date: date(2026, 1, 1), Split: models.SplitEvenly, CreatedAt: created},
			},
		}
		assert.Error(t, store.ReplaceAll(ctx, bad))

		after, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, after.Friends, 2)
		assert.Len(t, after.Interactions, 1)
	})
}

func TestClearAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := &models.Friend{Name: "Alice"}
	require.NoError(t, store.CreateFriend(ctx, f))
	require.NoError(t, store.CreateMemo(ctx, &models.Memo{FriendID: f.ID, Content: "note"}))
	require.NoError(t, store.PutSetting(ctx, &models.Setting{Key: models.SettingAppearance, Value: []byte(`"light"`)}))

	require.NoError(t, store.ClearAll(ctx))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Friends)
	assert.Empty(t, snap.Interactions)
	assert.Empty(t, snap.Memos)

	setting, err := store.GetSetting(ctx, models.SettingAppearance)
	require.NoError(t, err)
	assert.NotNil(t, setting)
}

type recorder struct {
	changes []events.Change
}

func (r *recorder) Publish(changes ...events.Change) {
	r.changes = append(r.changes, changes...)
}

func (r *recorder) collections() []events.Collection {
	var out []events.Collection
	for _, c := range r.changes {
		out = append(out, c.Collection)
	}
	r.changes = nil
	return out
}

func TestPublishesChanges(t *testing.T) {
	rec := &recorder{}
	store := newTestStore(t, WithPublisher(rec))
	ctx := context.Background()

	f := &models.Friend{Name: "Alice"}
	require.NoError(t, store.CreateFriend(ctx, f))
	assert.Equal(t, []events.Collection{events.Friends}, rec.collections())

	require.NoError(t, store.CreateInteractions(ctx, []*models.Interaction{
		{FriendID: f.ID, Type: models.TypeGift, Title: "Book", Date: date(2026, 1, 1), Direction: models.GiftOutgoing},
	}))
	assert.Equal(t, []events.Collection{events.Interactions}, rec.collections())

	require.NoError(t, store.PutSetting(ctx, &models.Setting{Key: models.SettingAppearance, Value: []byte(`"dark"`)}))
	assert.Equal(t, []events.Collection{events.Settings}, rec.collections())

	require.NoError(t, store.DeleteFriend(ctx, f.ID))
	assert.ElementsMatch(t, []events.Collection{events.Friends, events.Interactions, events.Memos}, rec.collections())

	// Nothing is announced when the write fails.
	err := store.DeleteFriend(ctx, f.ID)
	assert.True(t, errors.Is(err, models.ErrFriendNotFound))
	assert.Empty(t, rec.collections())
}
