//go:build !production

package room

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/hearts/internal/game/card"
	"github.com/palemoky/hearts/internal/game/session"
	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/types"
)

// MockRoomManager 房间管理器 mock
type MockRoomManager struct {
	mock.Mock
}

func (m *MockRoomManager) CreateRoom(ctx context.Context, client types.ClientInterface, name string) (*session.Session, error) {
	args := m.Called(ctx, client, name)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *MockRoomManager) JoinRoom(ctx context.Context, client types.ClientInterface, roomID string) (*session.Session, error) {
	args := m.Called(ctx, client, roomID)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *MockRoomManager) LeaveRoom(ctx context.Context, client types.ClientInterface) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockRoomManager) SubmitPass(ctx context.Context, client types.ClientInterface, cards []card.Card) error {
	args := m.Called(ctx, client, cards)
	return args.Error(0)
}

func (m *MockRoomManager) PlayCard(ctx context.Context, client types.ClientInterface, c card.Card) error {
	args := m.Called(ctx, client, c)
	return args.Error(0)
}

func (m *MockRoomManager) GetRoomList() []protocol.RoomListItem {
	args := m.Called()
	rooms, _ := args.Get(0).([]protocol.RoomListItem)
	return rooms
}

func (m *MockRoomManager) GetActiveGamesCount() int {
	args := m.Called()
	return args.Int(0)
}
