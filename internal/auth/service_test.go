package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whisperspace/server/internal/store"
)

type fakeUserStore struct {
	users  map[string]*store.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*store.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, username, passwordHash string) (*store.User, error) {
	f.nextID++
	u := &store.User{ID: f.nextID, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.users[username] = u
	return u, nil
}

func (f *fakeUserStore) CreateGuestUser(_ context.Context, username string) (*store.User, error) {
	f.nextID++
	u := &store.User{ID: f.nextID, Username: username, IsGuest: true, CreatedAt: time.Now()}
	f.users[username] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func newTestService() *Service {
	return NewService(newFakeUserStore(), &JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test-clients",
		TTL:      time.Hour,
	})
}

func TestRegisterAndVerify(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	token, err := svc.Register(ctx, "alice", "password1")
	require.NoError(t, err)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.NotZero(t, identity.UserID)
	assert.False(t, identity.IsGuest)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "ab", "password1")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = svc.Register(ctx, "alice", "short")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = svc.Register(ctx, "alice", "password1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "alice", "password2")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "password1")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)
	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGuestIdentity(t *testing.T) {
	svc := newTestService()

	token, err := svc.CreateGuest(context.Background())
	require.NoError(t, err)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.True(t, identity.IsGuest)
	assert.Contains(t, identity.Username, "guest_")
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	svc := newTestService()
	other := NewService(newFakeUserStore(), &JWTConfig{
		Secret:   []byte("other-secret"),
		Issuer:   "test",
		Audience: "test-clients",
		TTL:      time.Hour,
	})

	token, err := other.Register(context.Background(), "mallory", "password1")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService(newFakeUserStore(), &JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test-clients",
		TTL:      -time.Minute,
	})

	token, err := svc.Register(context.Background(), "alice", "password1")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
