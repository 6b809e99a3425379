package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() *Session {
	return &Session{
		Token:     "tok-1",
		User:      client.User{ID: "u1", FirstName: "Ada", Email: "ada@example.com", Role: client.RoleCustomer},
		ExpiresAt: fixedNow.Add(time.Hour),
	}
}

// storeContract exercises the behaviour every Store must share
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := sampleSession()
	require.NoError(t, store.Save(ctx, want))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Token, got.Token)
	assert.Equal(t, want.User.Email, got.User.Email)
	assert.Equal(t, want.User.Role, got.User.Role)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Clear(ctx))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Clear(ctx), "clearing twice is not an error")
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	sess := sampleSession()
	require.NoError(t, store.Save(ctx, sess))

	sess.Token = "mutated"
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.Token)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaslink", "session.yaml")
	storeContract(t, NewFileStore(path))
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	store := NewFileStore(path)
	require.NoError(t, store.Save(context.Background(), sampleSession()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "token: tok-1")
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unclosed"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileStore_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	watched := NewFileStore(path)
	writer := NewFileStore(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Session, 16)
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- watched.Watch(ctx, func(s *Session, err error) {
			if err == nil {
				changes <- s
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, writer.Save(context.Background(), sampleSession()))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-changes:
			if s != nil && s.Token == "tok-1" {
				cancel()
				require.NoError(t, <-watchDone)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for session change")
		}
	}
}

func setupRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb, err := NewRedisClient(context.Background(), "redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	store := NewRedisStore(rdb, "default")
	store.now = func() time.Time { return fixedNow }
	return store, mr
}

func TestRedisStore(t *testing.T) {
	store, _ := setupRedisStoreTest(t)
	storeContract(t, store)
}

func TestRedisStore_TTLFollowsToken(t *testing.T) {
	store, mr := setupRedisStoreTest(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession()))
	assert.Equal(t, time.Hour, mr.TTL("gaslink:session:default"))

	mr.FastForward(time.Hour + time.Second)
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_NoExpiry(t *testing.T) {
	store, mr := setupRedisStoreTest(t)
	sess := sampleSession()
	sess.ExpiresAt = time.Time{}

	require.NoError(t, store.Save(context.Background(), sess))
	assert.Equal(t, time.Duration(0), mr.TTL("gaslink:session:default"))
}

func TestRedisStore_RejectsExpired(t *testing.T) {
	store, _ := setupRedisStoreTest(t)
	sess := sampleSession()
	sess.ExpiresAt = fixedNow.Add(-time.Minute)

	assert.ErrorIs(t, store.Save(context.Background(), sess), ErrSessionExpired)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := setupRedisStoreTest(t)
	require.NoError(t, mr.Set("gaslink:session:default", "{not json"))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.False(t, mr.Exists("gaslink:session:default"), "corrupt value should be deleted")
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "://nope", 0)
	assert.Error(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	assert.Error(t, NewRedisStore(rdb, "x").Ping(context.Background()))
}
