package handler

import (
	"context"

	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/protocol/codec"
	"github.com/palemoky/hearts/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(_ context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: h.clock.Now().UnixMilli(),
	}))
}

// Disconnect 连接断开：在房间中则离座
func (h *Handler) Disconnect(ctx context.Context, client types.ClientInterface) {
	if client.GetRoom() == "" {
		return
	}
	if err := h.rooms.LeaveRoom(ctx, client); err != nil {
		h.log.Warn("⚠️ 断线离座失败", "player", client.GetID(), "err", err)
	}
}
