package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/hearts/internal/config"
	"github.com/palemoky/hearts/internal/game/room"
	"github.com/palemoky/hearts/internal/logger"
	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/protocol/codec"
	"github.com/palemoky/hearts/internal/server/identity"
	"github.com/palemoky/hearts/internal/server/storage"
	"github.com/palemoky/hearts/internal/testutil"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.MaxConnections = 16
	if mutate != nil {
		mutate(cfg)
	}

	clock := quartz.NewMock(t)
	stats := storage.NewMemoryStats()
	rooms := room.NewManager(room.Options{Stats: stats, Clock: clock, Logger: logger.Discard()})
	s := NewServer(cfg, Deps{
		Rooms:    rooms,
		Stats:    stats,
		Identity: identity.NewTokenProvider(identity.NewMemoryTokenStore(clock)),
		Clock:    clock,
		Logger:   logger.Discard(),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Shutdown()
		ts.Close()
	})
	return s, ts
}

func wsURL(ts *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, query), nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func dialStatus(t *testing.T, ts *httptest.Server, query string, header http.Header) int {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, query), header)
	if err == nil {
		_ = conn.Close()
		return http.StatusSwitchingProtocols
	}
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	return resp.StatusCode
}

// readUntil 读取直到收到指定类型的消息
func readUntil(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType) (*protocol.Message, int) {
	t.Helper()
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", msgType)

		format := codec.FormatJSON
		if kind == websocket.BinaryMessage {
			format = codec.FormatProto
		}
		msg, err := codec.Decode(data, format)
		require.NoError(t, err)
		if msg.Type == msgType {
			return msg, kind
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, payload any) {
	t.Helper()
	data, err := codec.Encode(codec.MustNewMessage(msgType, payload), codec.FormatJSON)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func decode[T any](t *testing.T, msg *protocol.Message) T {
	t.Helper()
	payload, err := codec.ParsePayload[T](msg)
	require.NoError(t, err)
	return *payload
}

func TestServer_HandleHealth(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ConnectAndPlay(t *testing.T) {
	t.Parallel()

	// Setup
	s, ts := newTestServer(t, nil)
	conns := make([]*websocket.Conn, 4)
	ids := make([]string, 4)
	for i := range conns {
		conns[i] = dial(t, ts, fmt.Sprintf("?name=p%d", i))
		msg, _ := readUntil(t, conns[i], protocol.MsgConnected)
		connected := decode[protocol.ConnectedPayload](t, msg)
		assert.Equal(t, fmt.Sprintf("p%d", i), connected.PlayerName)
		assert.NotEmpty(t, connected.ReconnectToken)
		ids[i] = connected.PlayerID

		// Stats snapshot follows the greeting
		readUntil(t, conns[i], protocol.MsgStatsResult)
	}
	assert.Equal(t, 4, s.GetOnlineCount())

	send(t, conns[0], protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: "table"})
	msg, _ := readUntil(t, conns[0], protocol.MsgRoomCreated)
	created := decode[protocol.RoomCreatedPayload](t, msg)
	assert.Equal(t, "table", created.Name)

	for _, conn := range conns[1:] {
		send(t, conn, protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomID: created.RoomID})
	}

	// Verify: everyone is dealt 13 cards
	for _, conn := range conns {
		msg, _ := readUntil(t, conn, protocol.MsgDealCards)
		assert.Len(t, decode[protocol.DealCardsPayload](t, msg).Cards, 13)
	}
	assert.Equal(t, 1, s.rooms.GetActiveGamesCount())

	// A dropped connection is announced to the table
	require.NoError(t, conns[3].Close())
	msg, _ = readUntil(t, conns[0], protocol.MsgPlayerLeft)
	left := decode[protocol.PlayerLeftPayload](t, msg)
	assert.Equal(t, ids[3], left.PlayerID)
	assert.Equal(t, 15, left.Grace)
}

func TestServer_InvalidMessages(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "")
	readUntil(t, conn, protocol.MsgConnected)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg, _ := readUntil(t, conn, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, decode[protocol.ErrorPayload](t, msg).Code)

	send(t, conn, protocol.MsgPlayCard, protocol.PlayCardPayload{Card: protocol.CardInfo{Suit: 0, Rank: 2}})
	msg, _ = readUntil(t, conn, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeNotInRoom, decode[protocol.ErrorPayload](t, msg).Code)
}

func TestServer_SingleLoginAndReconnect(t *testing.T) {
	t.Parallel()

	// Setup
	s, ts := newTestServer(t, nil)
	first := dial(t, ts, "?name=alice")
	msg, _ := readUntil(t, first, protocol.MsgConnected)
	connected := decode[protocol.ConnectedPayload](t, msg)

	// A second connection for the same identity is refused
	dup := dial(t, ts, "?token="+connected.ReconnectToken)
	msg, _ = readUntil(t, dup, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeUserExists, decode[protocol.ErrorPayload](t, msg).Code)
	require.NoError(t, dup.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := dup.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 1, s.GetOnlineCount())

	// After the first connection drops, the token restores the identity
	require.NoError(t, first.Close())
	assert.Eventually(t, func() bool {
		return s.GetOnlineCount() == 0
	}, 3*time.Second, 10*time.Millisecond)

	again := dial(t, ts, "?token="+connected.ReconnectToken)
	msg, _ = readUntil(t, again, protocol.MsgConnected)

	// Verify
	restored := decode[protocol.ConnectedPayload](t, msg)
	assert.Equal(t, connected.PlayerID, restored.PlayerID)
	assert.Equal(t, "alice", restored.PlayerName)
}

func TestServer_ProtoFrames(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "?format=proto")

	_, kind := readUntil(t, conn, protocol.MsgConnected)
	assert.Equal(t, websocket.BinaryMessage, kind)

	data, err := codec.Encode(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 42}), codec.FormatProto)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))

	// Verify
	msg, kind := readUntil(t, conn, protocol.MsgPong)
	assert.Equal(t, websocket.BinaryMessage, kind)
	assert.Equal(t, int64(42), decode[protocol.PongPayload](t, msg).ClientTimestamp)
}

func TestServer_Rejections(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = []string{"https://hearts.example"}
		cfg.Server.MaxConnections = 1
	})

	// Unknown reconnect token
	assert.Equal(t, http.StatusUnauthorized, dialStatus(t, ts, "?token=bogus", nil))

	// Origin not allowed
	header := http.Header{"Origin": []string{"https://evil.example"}}
	assert.Equal(t, http.StatusForbidden, dialStatus(t, ts, "", header))

	// Connection cap
	conn := dial(t, ts, "")
	readUntil(t, conn, protocol.MsgConnected)
	assert.Equal(t, http.StatusServiceUnavailable, dialStatus(t, ts, "", nil))

	// The slot is returned when the connection ends
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return len(s.semaphore) == 0
	}, 3*time.Second, 10*time.Millisecond)

	// Maintenance mode
	s.EnterMaintenanceMode()
	assert.True(t, s.IsMaintenanceMode())
	assert.Equal(t, http.StatusServiceUnavailable, dialStatus(t, ts, "", nil))
}

func TestServer_GracefulShutdown(t *testing.T) {
	t.Parallel()

	// Setup
	s, ts := newTestServer(t, nil)
	conn := dial(t, ts, "")
	readUntil(t, conn, protocol.MsgConnected)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.GracefulShutdown(ctx)

	// Verify: the lobby hears about maintenance, then the connection closes
	msg, _ := readUntil(t, conn, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeServerMaintenance, decode[protocol.ErrorPayload](t, msg).Code)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	assert.True(t, s.IsMaintenanceMode())
}

func TestServer_GracefulShutdownTimesOut(t *testing.T) {
	t.Parallel()

	// Setup: a game in progress that never finishes
	s, _ := newTestServer(t, nil)
	ctx := context.Background()
	first := testutil.NewSimpleClient("p0", "P0")
	r, err := s.rooms.CreateRoom(ctx, first, "busy")
	require.NoError(t, err)
	for i := 1; i < 4; i++ {
		_, err := s.rooms.JoinRoom(ctx, testutil.NewSimpleClient(fmt.Sprintf("p%d", i), "P"), r.ID())
		require.NoError(t, err)
	}
	require.Equal(t, 1, s.rooms.GetActiveGamesCount())

	shutdownCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	s.GracefulShutdown(shutdownCtx)

	// Verify: sessions are stopped once the deadline passes
	select {
	case <-r.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("session was not stopped")
	}
}
