package room

import (
	"cmp"
	"context"
	"errors"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/palemoky/hearts/internal/apperrors"
	"github.com/palemoky/hearts/internal/game/card"
	"github.com/palemoky/hearts/internal/game/session"
	"github.com/palemoky/hearts/internal/logger"
	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/server/storage"
	"github.com/palemoky/hearts/internal/types"
)

// storeTimeout 房间快照写入超时
const storeTimeout = 3 * time.Second

// roomNamePattern 房间名：3-15 位小写字母或数字
var roomNamePattern = regexp.MustCompile(`^[a-z0-9]{3,15}$`)

// Store 房间快照存储
type Store interface {
	SaveRoom(ctx context.Context, id string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, id string) error
}

// Options 房间管理器依赖
type Options struct {
	Store    Store // 可为 nil
	Stats    session.StatsRecorder
	Clock    quartz.Clock
	Settings session.Settings
	Logger   *log.Logger
}

// Manager 房间注册表：房间 ID 到会话的映射
type Manager struct {
	snapshots *snapshotWriter // Store 为 nil 时为 nil
	stats    session.StatsRecorder
	clock    quartz.Clock
	settings session.Settings
	log      *log.Logger

	rooms map[string]*session.Session
	mu    sync.RWMutex
}

// NewManager 创建房间管理器
func NewManager(opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Component("room")
	}
	if opts.Settings == (session.Settings{}) {
		opts.Settings = session.DefaultSettings()
	}
	m := &Manager{
		stats:    opts.Stats,
		clock:    opts.Clock,
		settings: opts.Settings,
		log:      opts.Logger,
		rooms:    make(map[string]*session.Session),
	}
	if opts.Store != nil {
		m.snapshots = newSnapshotWriter(opts.Store, opts.Clock, opts.Logger)
	}
	return m
}

// CreateRoom 创建房间并让创建者入座
func (m *Manager) CreateRoom(ctx context.Context, client types.ClientInterface, name string) (*session.Session, error) {
	if !roomNamePattern.MatchString(name) {
		return nil, apperrors.ErrInvalidName
	}
	if client.GetRoom() != "" {
		return nil, apperrors.ErrAlreadyInRoom
	}

	id := uuid.NewString()
	s := session.New(id, name, session.Options{
		Settings: m.settings,
		Clock:    m.clock,
		Stats:    m.stats,
		Logger:   m.log.WithPrefix("session"),
		OnClose:  m.remove,
	})

	m.mu.Lock()
	m.rooms[id] = s
	m.mu.Unlock()

	if err := s.Join(ctx, client); err != nil {
		s.Stop()
		return nil, err
	}
	client.SetRoom(id)
	m.save(s)

	m.log.Info("🏠 房间已创建", "room", id, "name", name, "player", client.GetName())
	return s, nil
}

// JoinRoom 加入房间
func (m *Manager) JoinRoom(ctx context.Context, client types.ClientInterface, roomID string) (*session.Session, error) {
	if client.GetRoom() != "" {
		return nil, apperrors.ErrAlreadyInRoom
	}
	s := m.GetRoom(roomID)
	if s == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	if err := s.Join(ctx, client); err != nil {
		return nil, err
	}
	client.SetRoom(roomID)
	m.save(s)

	m.log.Info("👤 玩家加入房间", "room", roomID, "player", client.GetName())
	return s, nil
}

// LeaveRoom 离开房间（主动离开或断线）
func (m *Manager) LeaveRoom(ctx context.Context, client types.ClientInterface) error {
	roomID := client.GetRoom()
	if roomID == "" {
		return apperrors.ErrNotInRoom
	}
	client.SetRoom("")

	s := m.GetRoom(roomID)
	if s == nil {
		return nil
	}
	err := s.Leave(ctx, client.GetID())
	if errors.Is(err, apperrors.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	m.save(s)
	m.log.Info("👋 玩家离开房间", "room", roomID, "player", client.GetName())
	return nil
}

// SubmitPass 转发换牌
func (m *Manager) SubmitPass(ctx context.Context, client types.ClientInterface, cards []card.Card) error {
	s, err := m.sessionOf(client)
	if err != nil {
		return err
	}
	return s.SubmitPass(ctx, client.GetID(), cards)
}

// PlayCard 转发出牌
func (m *Manager) PlayCard(ctx context.Context, client types.ClientInterface, c card.Card) error {
	s, err := m.sessionOf(client)
	if err != nil {
		return err
	}
	if err := s.PlayCard(ctx, client.GetID(), c); err != nil {
		return err
	}
	m.save(s)
	return nil
}

func (m *Manager) sessionOf(client types.ClientInterface) (*session.Session, error) {
	roomID := client.GetRoom()
	if roomID == "" {
		return nil, apperrors.ErrNotInRoom
	}
	s := m.GetRoom(roomID)
	if s == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	return s, nil
}

// GetRoom 获取房间会话
func (m *Manager) GetRoom(id string) *session.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[id]
}

// GetRoomList 获取全部房间
func (m *Manager) GetRoomList() []protocol.RoomListItem {
	m.mu.RLock()
	rooms := make([]protocol.RoomListItem, 0, len(m.rooms))
	for id, s := range m.rooms {
		info := s.Info()
		rooms = append(rooms, protocol.RoomListItem{
			RoomID:      id,
			Name:        info.Name,
			PlayerCount: len(info.Seated),
			Active:      info.Active,
		})
	}
	m.mu.RUnlock()

	slices.SortFunc(rooms, func(a, b protocol.RoomListItem) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.RoomID, b.RoomID))
	})
	return rooms
}

// GetActiveGamesCount 获取进行中的对局数量
func (m *Manager) GetActiveGamesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, s := range m.rooms {
		if s.Info().Active {
			count++
		}
	}
	return count
}

// Count 房间总数
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Shutdown 停止所有会话，并写出剩余的房间快照
func (m *Manager) Shutdown() {
	m.mu.RLock()
	sessions := make([]*session.Session, 0, len(m.rooms))
	for _, s := range m.rooms {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	// 会话退出时会回调 remove 获取写锁，这里不能持锁
	for _, s := range sessions {
		s.Stop()
	}
	if m.snapshots != nil {
		m.snapshots.close()
	}
}

// remove 会话结束回调
func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.rooms, id)
	if m.snapshots != nil {
		m.snapshots.remove(id)
	}
	m.mu.Unlock()

	m.log.Info("🏠 房间已解散", "room", id)
}

// save 登记一次快照写入；已解散的房间不再写
func (m *Manager) save(s *session.Session) {
	if m.snapshots == nil {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rooms[s.ID()] == s {
		m.snapshots.save(s)
	}
}
