package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNewRedisClient(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	_, err = NewRedisClient(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

func TestRedisStore_SaveLoadDeleteRoom(t *testing.T) {
	t.Parallel()

	// Setup
	client, mr := newTestRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	roomData := &RoomData{
		ID:         "room-1",
		Name:       "lobby",
		Phase:      "passing",
		Seated:     []string{"a", "b", "c", "d"},
		Roster:     []string{"a", "b", "c", "d"},
		Active:     true,
		Stable:     true,
		GameNumber: 1,
		UpdatedAt:  time.Now().Unix(),
	}

	// Save
	require.NoError(t, store.SaveRoom(ctx, roomData.ID, roomData))
	assert.True(t, mr.Exists("room:room-1"))
	assert.Equal(t, roomExpiration, mr.TTL("room:room-1"))

	// Load
	loaded, err := store.LoadRoom(ctx, roomData.ID)
	require.NoError(t, err)
	assert.Equal(t, roomData, loaded)

	ids, err := store.GetAllRoomIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"room-1"}, ids)

	// Delete
	require.NoError(t, store.DeleteRoom(ctx, roomData.ID))

	// Verify
	loaded, err = store.LoadRoom(ctx, roomData.ID)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
	assert.NoError(t, store.SaveRoom(ctx, "nil", nil))
}

func TestRedisStore_LoadRoomCorrupt(t *testing.T) {
	t.Parallel()

	client, mr := newTestRedis(t)
	store := NewRedisStore(client)
	require.NoError(t, mr.Set("room:bad", "{not json"))

	_, err := store.LoadRoom(context.Background(), "bad")
	assert.Error(t, err)
}

func TestRedisStore_Sessions(t *testing.T) {
	t.Parallel()

	// Setup
	client, mr := newTestRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	session := &SessionData{PlayerID: "u1", PlayerName: "Alice", Token: "tok"}
	require.NoError(t, store.SaveSession(ctx, session, time.Hour))

	// Verify
	loaded, err := store.LoadSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, session, loaded)
	assert.Equal(t, time.Hour, mr.TTL("session:tok"))

	missing, err := store.LoadSession(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.DeleteSession(ctx, "tok"))
	loaded, err = store.LoadSession(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Expiry
	require.NoError(t, store.SaveSession(ctx, session, time.Minute))
	mr.FastForward(2 * time.Minute)
	loaded, err = store.LoadSession(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
