package handler

import (
	"context"

	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/protocol/codec"
	"github.com/palemoky/hearts/internal/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "服务器维护中，暂停创建房间"))
		return
	}

	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	s, err := h.rooms.CreateRoom(ctx, client, payload.Name)
	if err != nil {
		sendError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomID: s.ID(),
		Name:   s.Name(),
	}))
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "服务器维护中，暂停加入房间"))
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil || payload.RoomID == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 加入成功后房间会广播 room_state
	if _, err := h.rooms.JoinRoom(ctx, client, payload.RoomID); err != nil {
		sendError(client, err)
	}
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(ctx context.Context, client types.ClientInterface, _ *protocol.Message) {
	if err := h.rooms.LeaveRoom(ctx, client); err != nil {
		sendError(client, err)
	}
}

// handleGetRoomList 获取房间列表
func (h *Handler) handleGetRoomList(_ context.Context, client types.ClientInterface, _ *protocol.Message) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomListResult, protocol.RoomListResultPayload{
		Rooms: h.rooms.GetRoomList(),
	}))
}
