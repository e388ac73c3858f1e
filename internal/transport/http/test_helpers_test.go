package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/whisperspace/server/internal/auth"
	"github.com/whisperspace/server/internal/config"
	"github.com/whisperspace/server/internal/core"
	"github.com/whisperspace/server/internal/reaper"
	"github.com/whisperspace/server/internal/store"
	"github.com/whisperspace/server/internal/store/sqlite"
)

func testLogger() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

type testEnv struct {
	ts    *httptest.Server
	store store.Store
	auth  *auth.Service
}

// newTestEnv spins up the full server over an in-memory store. The reaper TTL
// is near-zero so the admin endpoint can be exercised without waiting an hour.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test-clients",
		TTL:      time.Hour,
	})

	hub := core.NewHub(st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	rp := reaper.New(st, time.Hour, time.Millisecond, nil)

	server := NewServer(hub, authService, st, rp, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, testLogger())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st, auth: authService}
}

// registerUser creates a user and returns its token and id.
func (e *testEnv) registerUser(t *testing.T, username string) (string, int64) {
	t.Helper()

	token, err := e.auth.Register(context.Background(), username, "password1")
	require.NoError(t, err)
	identity, err := e.auth.Verify(token)
	require.NoError(t, err)
	return token, identity.UserID
}

// seedRoom creates a room with a known code and PIN hash directly in the store.
func (e *testEnv) seedRoom(t *testing.T, code string, creatorID int64, pin string) *store.Room {
	t.Helper()

	pinHash, err := auth.HashSecret(pin)
	require.NoError(t, err)
	room := &store.Room{Code: code, Name: "room " + code, PINHash: pinHash, CreatorID: creatorID}
	require.NoError(t, e.store.CreateRoom(context.Background(), room))
	return room
}
