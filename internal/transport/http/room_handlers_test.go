package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whisperspace/server/internal/reaper"
	"github.com/whisperspace/server/internal/store"
	"github.com/whisperspace/server/internal/utils"
)

// doJSON issues a request with an optional bearer token and decodes the
// response body into out when it is non-nil.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestRoomLifecycle(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, _ := env.registerUser(t, "alice")
	bobToken, bobID := env.registerUser(t, "bob")

	var created RoomResponse
	resp := env.doJSON(t, http.MethodPost, "/api/rooms", aliceToken,
		CreateRoomRequest{Name: "the hideout", PIN: "4321"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, created.Code, utils.RoomCodeLength)
	assert.Equal(t, "the hideout", created.Name)
	assert.True(t, created.IsActive)

	// Wrong PIN is rejected before membership changes.
	resp = env.doJSON(t, http.MethodPost, "/api/rooms/"+created.Code+"/join", bobToken,
		JoinRoomRequest{PIN: "0000"}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	isMember, err := env.store.IsMember(context.Background(), created.Code, bobID)
	require.NoError(t, err)
	assert.False(t, isMember)

	// Correct PIN joins; lowercase code is accepted.
	var joined RoomResponse
	resp = env.doJSON(t, http.MethodPost, "/api/rooms/"+created.Code+"/join", bobToken,
		JoinRoomRequest{PIN: "4321"}, &joined)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.Code, joined.Code)
	isMember, err = env.store.IsMember(context.Background(), created.Code, bobID)
	require.NoError(t, err)
	assert.True(t, isMember)

	// Leaving one by one; the last member out marks the room empty.
	resp = env.doJSON(t, http.MethodPost, "/api/rooms/"+created.Code+"/leave", bobToken, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	room, err := env.store.GetRoomByCode(context.Background(), created.Code)
	require.NoError(t, err)
	assert.True(t, room.IsActive)
	assert.Nil(t, room.EmptyAt)

	resp = env.doJSON(t, http.MethodPost, "/api/rooms/"+created.Code+"/leave", aliceToken, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	room, err = env.store.GetRoomByCode(context.Background(), created.Code)
	require.NoError(t, err)
	assert.False(t, room.IsActive)
	require.NotNil(t, room.EmptyAt)
}

func TestJoinUnknownRoom(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "alice")

	resp := env.doJSON(t, http.MethodPost, "/api/rooms/ZZZZ9999/join", token,
		JoinRoomRequest{PIN: "4321"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRoomsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodPost, "/api/rooms", "",
		CreateRoomRequest{Name: "nope", PIN: "4321"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.doJSON(t, http.MethodPost, "/api/rooms", "not-a-token",
		CreateRoomRequest{Name: "nope", PIN: "4321"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminReapDeletesEmptyRooms(t *testing.T) {
	env := newTestEnv(t)

	token, userID := env.registerUser(t, "alice")
	room := env.seedRoom(t, "AAAA1111", userID, "4321")

	resp := env.doJSON(t, http.MethodPost, "/api/rooms/"+room.Code+"/leave", token, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The test environment's TTL is one millisecond; wait it out.
	time.Sleep(20 * time.Millisecond)

	var report reaper.Report
	resp = env.doJSON(t, http.MethodPost, "/api/admin/reap", token, nil, &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, report.Deleted)
	assert.Empty(t, report.Failures)

	_, err := env.store.GetRoomByCode(context.Background(), room.Code)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
