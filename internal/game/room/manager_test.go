package room

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/hearts/internal/apperrors"
	"github.com/palemoky/hearts/internal/game/card"
	"github.com/palemoky/hearts/internal/game/session"
	"github.com/palemoky/hearts/internal/logger"
	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/server/storage"
	"github.com/palemoky/hearts/internal/testutil"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := NewManager(Options{
		Store:    storage.NewRedisStore(client),
		Stats:    storage.NewMemoryStats(),
		Clock:    quartz.NewMock(t),
		Settings: session.DefaultSettings(),
		Logger:   logger.Discard(),
	})
	t.Cleanup(m.Shutdown)
	return m, mr
}

var twoOfClubs = card.MustParse("2C")[0]

// recordingStore 按顺序记录快照写入
type recordingStore struct {
	mu     sync.Mutex
	rooms  map[string]*storage.RoomData
	ops    []string
	seated []int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{rooms: make(map[string]*storage.RoomData)}
}

func (r *recordingStore) SaveRoom(_ context.Context, id string, data *storage.RoomData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[id] = data
	r.ops = append(r.ops, "save")
	r.seated = append(r.seated, len(data.Seated))
	return nil
}

func (r *recordingStore) DeleteRoom(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
	r.ops = append(r.ops, "delete")
	return nil
}

func (r *recordingStore) room(id string) *storage.RoomData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rooms[id]
}

func (r *recordingStore) lastOp() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ops) == 0 {
		return ""
	}
	return r.ops[len(r.ops)-1]
}

func (r *recordingStore) seatedHistory() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.seated...)
}

func newRecordingManager(t *testing.T) (*Manager, *recordingStore) {
	t.Helper()
	store := newRecordingStore()
	m := NewManager(Options{
		Store:    store,
		Stats:    storage.NewMemoryStats(),
		Clock:    quartz.NewMock(t),
		Settings: session.DefaultSettings(),
		Logger:   logger.Discard(),
	})
	t.Cleanup(m.Shutdown)
	return m, store
}

func TestManager_CreateRoom(t *testing.T) {
	t.Parallel()

	// Setup
	m, mr := newTestManager(t)
	ctx := context.Background()
	alice := testutil.NewSimpleClient("alice", "Alice")

	// Invalid names
	for _, name := range []string{"ab", "Lobby", "has space", "abcdefghijklmnop", ""} {
		_, err := m.CreateRoom(ctx, alice, name)
		assert.ErrorIs(t, err, apperrors.ErrInvalidName, name)
	}
	assert.Equal(t, 0, m.Count())

	s, err := m.CreateRoom(ctx, alice, "lobby1")
	require.NoError(t, err)

	// Verify
	assert.Equal(t, s.ID(), alice.GetRoom())
	assert.Equal(t, "lobby1", s.Name())
	assert.Equal(t, 1, m.Count())
	assert.Same(t, s, m.GetRoom(s.ID()))
	assert.NotNil(t, alice.LastOfType(protocol.MsgRoomState))
	assert.Eventually(t, func() bool {
		return mr.Exists("room:" + s.ID())
	}, time.Second, 10*time.Millisecond)

	_, err = m.CreateRoom(ctx, alice, "lobby2")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)
}

func TestManager_JoinStartsGame(t *testing.T) {
	t.Parallel()

	// Setup
	m, mr := newTestManager(t)
	ctx := context.Background()
	clients := make([]*testutil.SimpleClient, session.Players)
	for i := range clients {
		clients[i] = testutil.NewSimpleClient(fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i))
	}

	s, err := m.CreateRoom(ctx, clients[0], "table")
	require.NoError(t, err)

	_, err = m.JoinRoom(ctx, clients[1], "missing")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	for _, c := range clients[1:] {
		_, err := m.JoinRoom(ctx, c, s.ID())
		require.NoError(t, err)
	}

	// Verify
	assert.Equal(t, 1, m.GetActiveGamesCount())
	for _, c := range clients {
		assert.Equal(t, s.ID(), c.GetRoom())
		assert.NotNil(t, c.LastOfType(protocol.MsgDealCards))
	}

	_, err = m.JoinRoom(ctx, clients[0], s.ID())
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)

	late := testutil.NewSimpleClient("late", "Late")
	_, err = m.JoinRoom(ctx, late, s.ID())
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
	assert.Empty(t, late.GetRoom())

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := storage.NewRedisStore(rdb)
	assert.Eventually(t, func() bool {
		data, err := store.LoadRoom(ctx, s.ID())
		return err == nil && data != nil && data.Active && len(data.Seated) == session.Players
	}, time.Second, 10*time.Millisecond)
}

func TestManager_GetRoomList(t *testing.T) {
	t.Parallel()

	// Setup
	m, _ := newTestManager(t)
	ctx := context.Background()
	for i, name := range []string{"zeta", "alpha", "mid"} {
		c := testutil.NewSimpleClient(fmt.Sprintf("u%d", i), name)
		_, err := m.CreateRoom(ctx, c, name)
		require.NoError(t, err)
	}

	// Verify
	rooms := m.GetRoomList()
	require.Len(t, rooms, 3)
	assert.Equal(t, "alpha", rooms[0].Name)
	assert.Equal(t, "mid", rooms[1].Name)
	assert.Equal(t, "zeta", rooms[2].Name)
	for _, r := range rooms {
		assert.Equal(t, 1, r.PlayerCount)
		assert.False(t, r.Active)
	}
	assert.Equal(t, 0, m.GetActiveGamesCount())
}

func TestManager_LeaveRoomDestroysEmptyRoom(t *testing.T) {
	t.Parallel()

	// Setup
	m, mr := newTestManager(t)
	ctx := context.Background()
	alice := testutil.NewSimpleClient("alice", "Alice")
	bob := testutil.NewSimpleClient("bob", "Bob")

	assert.ErrorIs(t, m.LeaveRoom(ctx, alice), apperrors.ErrNotInRoom)

	s, err := m.CreateRoom(ctx, alice, "lobby")
	require.NoError(t, err)
	_, err = m.JoinRoom(ctx, bob, s.ID())
	require.NoError(t, err)

	// One leaves: the room survives
	require.NoError(t, m.LeaveRoom(ctx, alice))
	assert.Empty(t, alice.GetRoom())
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, []string{"bob"}, s.Info().Seated)

	// Last leaves: the room is destroyed
	require.NoError(t, m.LeaveRoom(ctx, bob))

	// Verify
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not end")
	}
	assert.Eventually(t, func() bool {
		return m.Count() == 0
	}, time.Second, 10*time.Millisecond)
	assert.Nil(t, m.GetRoom(s.ID()))
	assert.Eventually(t, func() bool {
		return !mr.Exists("room:" + s.ID())
	}, time.Second, 10*time.Millisecond)
}

func TestManager_SnapshotsFollowLatestState(t *testing.T) {
	t.Parallel()

	// Setup
	m, store := newRecordingManager(t)
	ctx := context.Background()
	clients := make([]*testutil.SimpleClient, session.Players)
	for i := range clients {
		clients[i] = testutil.NewSimpleClient(fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i))
	}

	s, err := m.CreateRoom(ctx, clients[0], "table")
	require.NoError(t, err)
	for _, c := range clients[1:] {
		_, err := m.JoinRoom(ctx, c, s.ID())
		require.NoError(t, err)
	}

	// Verify
	assert.Eventually(t, func() bool {
		data := store.room(s.ID())
		return data != nil && data.Active && len(data.Seated) == session.Players
	}, time.Second, 10*time.Millisecond)
	assert.IsNonDecreasing(t, store.seatedHistory())
}

func TestManager_NoSnapshotAfterRoomClosed(t *testing.T) {
	t.Parallel()

	// Setup
	m, store := newRecordingManager(t)
	ctx := context.Background()
	alice := testutil.NewSimpleClient("alice", "Alice")

	s, err := m.CreateRoom(ctx, alice, "lobby")
	require.NoError(t, err)
	require.NoError(t, m.LeaveRoom(ctx, alice))

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not end")
	}
	assert.Eventually(t, func() bool {
		return m.Count() == 0
	}, time.Second, 10*time.Millisecond)

	// A late write for the closed room is dropped
	m.save(s)
	m.Shutdown()

	// Verify
	assert.Nil(t, store.room(s.ID()))
	assert.Equal(t, "delete", store.lastOp())
}

func TestManager_ForwardsGameActions(t *testing.T) {
	t.Parallel()

	// Setup
	m, _ := newTestManager(t)
	ctx := context.Background()
	alice := testutil.NewSimpleClient("alice", "Alice")

	// Not in a room
	assert.ErrorIs(t, m.SubmitPass(ctx, alice, nil), apperrors.ErrNotInRoom)
	assert.ErrorIs(t, m.PlayCard(ctx, alice, twoOfClubs), apperrors.ErrNotInRoom)

	// Room vanished under the client
	alice.SetRoom("ghost")
	assert.ErrorIs(t, m.PlayCard(ctx, alice, twoOfClubs), apperrors.ErrRoomNotFound)
	alice.SetRoom("")

	// Game not started yet
	_, err := m.CreateRoom(ctx, alice, "lobby")
	require.NoError(t, err)
	assert.ErrorIs(t, m.PlayCard(ctx, alice, twoOfClubs), apperrors.ErrGameNotStarted)
	assert.ErrorIs(t, m.SubmitPass(ctx, alice, nil), apperrors.ErrNotPassing)
}

func TestManager_Shutdown(t *testing.T) {
	t.Parallel()

	// Setup
	m, _ := newTestManager(t)
	ctx := context.Background()
	for i := range 3 {
		c := testutil.NewSimpleClient(fmt.Sprintf("u%d", i), "User")
		_, err := m.CreateRoom(ctx, c, fmt.Sprintf("room%d", i))
		require.NoError(t, err)
	}
	require.Equal(t, 3, m.Count())

	m.Shutdown()

	// Verify
	assert.Eventually(t, func() bool {
		return m.Count() == 0
	}, time.Second, 10*time.Millisecond)
}
