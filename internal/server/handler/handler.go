package handler

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/palemoky/hearts/internal/apperrors"
	"github.com/palemoky/hearts/internal/game/card"
	"github.com/palemoky/hearts/internal/game/session"
	"github.com/palemoky/hearts/internal/logger"
	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/protocol/codec"
	"github.com/palemoky/hearts/internal/server/storage"
	"github.com/palemoky/hearts/internal/types"
)

// RoomService 房间注册表（room.Manager 实现）
type RoomService interface {
	CreateRoom(ctx context.Context, client types.ClientInterface, name string) (*session.Session, error)
	JoinRoom(ctx context.Context, client types.ClientInterface, roomID string) (*session.Session, error)
	LeaveRoom(ctx context.Context, client types.ClientInterface) error
	SubmitPass(ctx context.Context, client types.ClientInterface, cards []card.Card) error
	PlayCard(ctx context.Context, client types.ClientInterface, c card.Card) error
	GetRoomList() []protocol.RoomListItem
}

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server types.ServerInterface
	Rooms  RoomService
	Stats  storage.Stats
	Clock  quartz.Clock
	Logger *log.Logger
}

// Handler 消息处理器
type Handler struct {
	server   types.ServerInterface
	rooms    RoomService
	stats    storage.Stats
	clock    quartz.Clock
	log      *log.Logger
	handlers map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(ctx context.Context, client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	if deps.Clock == nil {
		deps.Clock = quartz.NewReal()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Component("handler")
	}
	h := &Handler{
		server: deps.Server,
		rooms:  deps.Rooms,
		stats:  deps.Stats,
		clock:  deps.Clock,
		log:    deps.Logger,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom:  h.handleCreateRoom,
		protocol.MsgJoinRoom:    h.handleJoinRoom,
		protocol.MsgLeaveRoom:   h.handleLeaveRoom,
		protocol.MsgGetRoomList: h.handleGetRoomList,

		// 游戏操作
		protocol.MsgPassCards: h.handlePassCards,
		protocol.MsgPlayCard:  h.handlePlayCard,

		// 信息查询
		protocol.MsgGetStats: h.handleGetStats,
	}
}

// Handle 处理消息
func (h *Handler) Handle(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(ctx, client, msg)
		return
	}

	h.log.Warn("⚠️ 未知消息类型", "type", msg.Type, "player", client.GetName(), "id", client.GetID(), "payload_bytes", len(msg.Payload))
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 将错误转换为 error 消息发回给发起方
func sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}
	client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
}
