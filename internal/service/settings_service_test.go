package service

import (
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/kinship/internal/models"
	"github.com/mmynk/kinship/internal/theme"
)

func TestReminderOffsets(t *testing.T) {
	ts := setupTestServer(t)

	got, err := call[Empty, ReminderOffsets](t, ts, SettingsServiceGetReminderOffsetsProcedure, &Empty{})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got.Offsets)

	set, err := call[ReminderOffsets, ReminderOffsets](t, ts, SettingsServiceSetReminderOffsetsProcedure, &ReminderOffsets{Offsets: []int{7, 0, 7, 3}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 7}, set.Offsets)

	got, err = call[Empty, ReminderOffsets](t, ts, SettingsServiceGetReminderOffsetsProcedure, &Empty{})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 7}, got.Offsets)

	_, err = call[ReminderOffsets, ReminderOffsets](t, ts, SettingsServiceSetReminderOffsetsProcedure, &ReminderOffsets{Offsets: []int{-1}})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestFont(t *testing.T) {
	ts := setupTestServer(t)

	_, err := call[SetFontRequest, Empty](t, ts, SettingsServiceSetFontProcedure, &SetFontRequest{FileName: "notes.txt", Data: []byte("x")})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = call[SetFontRequest, Empty](t, ts, SettingsServiceSetFontProcedure, &SetFontRequest{FileName: "Hand.ttf"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = call[SetFontRequest, Empty](t, ts, SettingsServiceSetFontProcedure, &SetFontRequest{FileName: "../fonts/Hand.TTF", Data: []byte("font-bytes")})
	require.NoError(t, err)

	setting, err := ts.store.GetSetting(t.Context(), models.SettingCustomFont)
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.Equal(t, "Hand.TTF", setting.FileName)
	assert.Equal(t, []byte("font-bytes"), setting.Value)

	_, err = call[Empty, Empty](t, ts, SettingsServiceResetFontProcedure, &Empty{})
	require.NoError(t, err)

	setting, err = ts.store.GetSetting(t.Context(), models.SettingCustomFont)
	require.NoError(t, err)
	assert.Nil(t, setting)
}

func TestAppearance(t *testing.T) {
	ts := setupTestServer(t)

	got, err := call[Empty, Appearance](t, ts, SettingsServiceGetAppearanceProcedure, &Empty{})
	require.NoError(t, err)
	assert.Equal(t, theme.System, got.Mode)
	assert.False(t, got.Dark)

	dark := true
	got, err = call[SetAppearanceRequest, Appearance](t, ts, SettingsServiceSetAppearanceProcedure, &SetAppearanceRequest{SystemDark: &dark})
	require.NoError(t, err)
	assert.Equal(t, theme.System, got.Mode)
	assert.True(t, got.Dark)

	got, err = call[SetAppearanceRequest, Appearance](t, ts, SettingsServiceSetAppearanceProcedure, &SetAppearanceRequest{Mode: theme.Light})
	require.NoError(t, err)
	assert.Equal(t, theme.Light, got.Mode)
	assert.False(t, got.Dark)

	setting, err := ts.store.GetSetting(t.Context(), models.SettingAppearance)
	require.NoError(t, err)
	require.NotNil(t, setting)
	mode, err := theme.DecodeMode(setting.Value)
	require.NoError(t, err)
	assert.Equal(t, theme.Light, mode)

	_, err = call[SetAppearanceRequest, Appearance](t, ts, SettingsServiceSetAppearanceProcedure, &SetAppearanceRequest{Mode: "sepia"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestClearAllRequiresConfirm(t *testing.T) {
	ts := setupTestServer(t)
	createFriend(t, ts, FriendInput{Name: "Ann"})
	_, err := call[ReminderOffsets, ReminderOffsets](t, ts, SettingsServiceSetReminderOffsetsProcedure, &ReminderOffsets{Offsets: []int{3}})
	require.NoError(t, err)

	_, err = call[ClearAllRequest, Empty](t, ts, SettingsServiceClearAllProcedure, &ClearAllRequest{})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	list, err := call[ListFriendsRequest, ListFriendsResponse](t, ts, FriendServiceListFriendsProcedure, &ListFriendsRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Friends, 1)

	_, err = call[ClearAllRequest, Empty](t, ts, SettingsServiceClearAllProcedure, &ClearAllRequest{Confirm: true})
	require.NoError(t, err)

	list, err = call[ListFriendsRequest, ListFriendsResponse](t, ts, FriendServiceListFriendsProcedure, &ListFriendsRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Friends)

	offsets, err := call[Empty, ReminderOffsets](t, ts, SettingsServiceGetReminderOffsetsProcedure, &Empty{})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, offsets.Offsets)
}

func TestReminderPreviewAndSync(t *testing.T) {
	ts := setupTestServer(t)
	ts.reminders.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local) }

	createFriend(t, ts, FriendInput{Name: "Ann", Birthday: &Birthday{Month: 3, Day: 14}})

	preview, err := call[Empty, PreviewResponse](t, ts, ReminderServicePreviewProcedure, &Empty{})
	require.NoError(t, err)
	require.NotEmpty(t, preview.Notifications)
	assert.Equal(t, 14, preview.Notifications[0].TriggerAt.In(time.Local).Day())

	// Notifications are disabled in the test server, a sync is a soft no-op.
	synced, err := call[Empty, SyncResponse](t, ts, ReminderServiceSyncProcedure, &Empty{})
	require.NoError(t, err)
	assert.Zero(t, synced.Scheduled)
}
