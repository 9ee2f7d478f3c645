package handler

import (
	"context"
	"fmt"

	"github.com/palemoky/hearts/internal/apperrors"
	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/protocol/codec"
	"github.com/palemoky/hearts/internal/types"
)

// --- 战绩 ---

// SendStats 发送全部玩家的战绩快照（连接建立时也会调用）
func (h *Handler) SendStats(ctx context.Context, client types.ClientInterface) {
	if h.stats == nil {
		sendError(client, apperrors.ErrStatsUnavailable)
		return
	}

	records, err := h.stats.List(ctx)
	if err != nil {
		h.log.Warn("⚠️ 读取战绩失败", "err", err)
		sendError(client, fmt.Errorf("%w: %w", apperrors.ErrStatsUnavailable, err))
		return
	}

	entries := make([]protocol.StatsEntry, len(records))
	for i, r := range records {
		entries[i] = protocol.StatsEntry{PlayerID: r.UserID, Wins: r.Wins, Losses: r.Losses}
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgStatsResult, protocol.StatsResultPayload{
		Entries: entries,
	}))
}

// handleGetStats 获取战绩
func (h *Handler) handleGetStats(ctx context.Context, client types.ClientInterface, _ *protocol.Message) {
	h.SendStats(ctx, client)
}
