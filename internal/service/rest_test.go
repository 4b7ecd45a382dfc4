package service

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/kinship/internal/backup"
	"github.com/mmynk/kinship/internal/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestFriendPhoto(t *testing.T) {
	ts := setupTestServer(t)

	withPhoto := createFriend(t, ts, FriendInput{Name: "Ann", Photo: pngBytes(t, 1200, 600)})
	assert.True(t, withPhoto.HasPhoto)
	without := createFriend(t, ts, FriendInput{Name: "Ben"})

	resp, body := get(t, ts.url+"/api/friends/"+itoa(withPhoto.ID)+"/photo")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	cfg, format, err := image.DecodeConfig(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 400, cfg.Height)

	resp, _ = get(t, ts.url+"/api/friends/"+itoa(without.ID)+"/photo")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Updating without photo data keeps the photo.
	_, err = call[UpdateFriendRequest, FriendResponse](t, ts, FriendServiceUpdateFriendProcedure, &UpdateFriendRequest{
		ID: withPhoto.ID, Friend: FriendInput{Name: "Ann"},
	})
	require.NoError(t, err)
	resp, _ = get(t, ts.url+"/api/friends/"+itoa(withPhoto.ID)+"/photo")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = call[UpdateFriendRequest, FriendResponse](t, ts, FriendServiceUpdateFriendProcedure, &UpdateFriendRequest{
		ID: withPhoto.ID, Friend: FriendInput{Name: "Ann"}, ClearPhoto: true,
	})
	require.NoError(t, err)
	resp, _ = get(t, ts.url+"/api/friends/"+itoa(withPhoto.ID)+"/photo")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFontEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp, _ := get(t, ts.url+"/api/font")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, err := call[SetFontRequest, Empty](t, ts, SettingsServiceSetFontProcedure, &SetFontRequest{FileName: "Hand.woff2", Data: []byte("wOF2")})
	require.NoError(t, err)

	resp, body := get(t, ts.url+"/api/font")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "font/woff2", resp.Header.Get("Content-Type"))
	assert.Equal(t, []byte("wOF2"), body)
}

func TestBackupRoundTrip(t *testing.T) {
	ts := setupTestServer(t)

	a := createFriend(t, ts, FriendInput{Name: "Ann", Photo: pngBytes(t, 64, 64), Color: "#123456"})
	b := createFriend(t, ts, FriendInput{Name: "Ben", Birthday: &Birthday{Month: 7, Day: 4, Year: 1990}})
	_, err := call[LogInteractionRequest, LogInteractionResponse](t, ts, InteractionServiceLogInteractionProcedure, &LogInteractionRequest{
		FriendIDs:   []int64{a.ID, b.ID},
		Interaction: meetup("Picnic", time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), models.SplitSelfPays, 30),
	})
	require.NoError(t, err)
	_, err = call[AddMemoRequest, MemoResponse](t, ts, FriendServiceAddMemoProcedure, &AddMemoRequest{FriendID: b.ID, Content: "allergic to nuts"})
	require.NoError(t, err)

	resp, archive := get(t, ts.url+"/api/backup")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Kinship_Backup_")

	_, err = call[ClearAllRequest, Empty](t, ts, SettingsServiceClearAllProcedure, &ClearAllRequest{Confirm: true})
	require.NoError(t, err)

	// Without confirmation nothing is restored.
	post, err := http.Post(ts.url+"/api/backup", "application/zip", bytes.NewReader(archive))
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusPreconditionFailed, post.StatusCode)

	post, err = http.Post(ts.url+"/api/backup?confirm=true", "application/zip", bytes.NewReader(archive))
	require.NoError(t, err)
	defer post.Body.Close()
	require.Equal(t, http.StatusOK, post.StatusCode)

	var summary backup.Summary
	require.NoError(t, json.NewDecoder(post.Body).Decode(&summary))
	assert.Equal(t, backup.Summary{Friends: 2, Interactions: 2, Memos: 1}, summary)

	got, err := call[IDRequest, FriendResponse](t, ts, FriendServiceGetFriendProcedure, &IDRequest{ID: a.ID})
	require.NoError(t, err)
	assert.True(t, got.Friend.HasPhoto)
	assert.Equal(t, "#123456", got.Friend.Color)

	balance, err := call[IDRequest, BalanceResponse](t, ts, InteractionServiceBalanceProcedure, &IDRequest{ID: b.ID})
	require.NoError(t, err)
	assert.InDelta(t, 30, balance.Balance.Total, 1e-9)

	memos, err := call[IDRequest, ListMemosResponse](t, ts, FriendServiceListMemosProcedure, &IDRequest{ID: b.ID})
	require.NoError(t, err)
	require.Len(t, memos.Memos, 1)
	assert.Equal(t, "allergic to nuts", memos.Memos[0].Content)
}

func TestRestoreRejectsMalformedArchive(t *testing.T) {
	ts := setupTestServer(t)
	createFriend(t, ts, FriendInput{Name: "Ann"})

	post, err := http.Post(ts.url+"/api/backup?confirm=true", "application/zip", bytes.NewReader([]byte("not a zip")))
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusBadRequest, post.StatusCode)

	list, err := call[ListFriendsRequest, ListFriendsResponse](t, ts, FriendServiceListFriendsProcedure, &ListFriendsRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Friends, 1)
}
