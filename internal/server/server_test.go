package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/kinship/internal/auth"
	"github.com/mmynk/kinship/internal/backup"
	"github.com/mmynk/kinship/internal/config"
	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/notify"
	"github.com/mmynk/kinship/internal/reminder"
	"github.com/mmynk/kinship/internal/service"
	"github.com/mmynk/kinship/internal/storage/sqlite"
	"github.com/mmynk/kinship/internal/theme"
)

func setupServer(t *testing.T, lock bool, staticDir string) string {
	t.Helper()

	broker := events.NewBroker()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "kinship.db"), sqlite.WithPublisher(broker))
	require.NoError(t, err)

	handler := NewHandler(config.ServerConfig{
		StaticDir:   staticDir,
		CORSOrigins: []string{"*"},
	}, lock, Deps{
		Store:         store,
		Broker:        broker,
		Syncer:        reminder.NewSyncer(store, notify.Disabled{}),
		Appearance:    theme.NewCell(theme.System),
		Backups:       backup.NewService(store),
		Authenticator: auth.NewPasscodeAuthenticator(store),
		JWT:           auth.NewJWTManager("server-test-secret-123", time.Hour),
		Logger:        slog.Default(),
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})
	return srv.URL
}

func unary[Req, Res any](ctx context.Context, url, procedure, token string, msg *Req) (*Res, error) {
	client := connect.NewClient[Req, Res](http.DefaultClient, url+procedure, service.ClientOptions()...)
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := client.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func TestHealthAndMetrics(t *testing.T) {
	url := setupServer(t, false, "")

	resp, err := http.Get(url + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// One RPC so the request counter has a sample.
	_, err = unary[service.ListFriendsRequest, service.ListFriendsResponse](t.Context(), url, service.FriendServiceListFriendsProcedure, "", &service.ListFriendsRequest{})
	require.NoError(t, err)

	resp, err = http.Get(url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "kinship_rpc_requests_total")
}

func TestLockGuardsCallsOncePasscodeIsSet(t *testing.T) {
	url := setupServer(t, true, "")
	ctx := t.Context()

	// No passcode yet, everything is open.
	_, err := unary[service.ListFriendsRequest, service.ListFriendsResponse](ctx, url, service.FriendServiceListFriendsProcedure, "", &service.ListFriendsRequest{})
	require.NoError(t, err)

	_, err = unary[service.SetPasscodeRequest, service.AuthStatus](ctx, url, service.AuthServiceSetPasscodeProcedure, "", &service.SetPasscodeRequest{Passcode: "2468"})
	require.NoError(t, err)

	_, err = unary[service.ListFriendsRequest, service.ListFriendsResponse](ctx, url, service.FriendServiceListFriendsProcedure, "", &service.ListFriendsRequest{})
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = unary[service.ListFriendsRequest, service.ListFriendsResponse](ctx, url, service.FriendServiceListFriendsProcedure, "garbage", &service.ListFriendsRequest{})
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	status, err := unary[service.Empty, service.AuthStatus](ctx, url, service.AuthServiceStatusProcedure, "", &service.Empty{})
	require.NoError(t, err)
	assert.True(t, status.Configured)

	unlocked, err := unary[service.UnlockRequest, service.UnlockResponse](ctx, url, service.AuthServiceUnlockProcedure, "", &service.UnlockRequest{Passcode: "2468"})
	require.NoError(t, err)

	_, err = unary[service.ListFriendsRequest, service.ListFriendsResponse](ctx, url, service.FriendServiceListFriendsProcedure, unlocked.Token, &service.ListFriendsRequest{})
	require.NoError(t, err)

	resp, err := http.Get(url + "/api/backup")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/backup", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+unlocked.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStaticFallsBackToIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>kinship</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	url := setupServer(t, false, dir)

	for path, want := range map[string]string{
		"/":           "<h1>kinship</h1>",
		"/app.js":     "console.log(1)",
		"/friends/12": "<h1>kinship</h1>",
	} {
		resp, err := http.Get(url + path)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, want, string(body), path)
	}
}
