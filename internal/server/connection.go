package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/palemoky/hearts/internal/apperrors"
	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/protocol/codec"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		s.log.Info("🔧 维护模式，拒绝新连接", "ip", clientIP)
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	// 连接数限制检查，名额在连接断开时归还
	select {
	case s.semaphore <- struct{}{}:
	default:
		s.log.Warn("🚫 达到最大连接数限制", "max", s.maxConnections, "ip", clientIP)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}
	release := func() { <-s.semaphore }

	// 来源验证
	if !s.originChecker.Check(r) {
		release()
		s.log.Warn("🚫 来源验证失败", "origin", r.Header.Get("Origin"), "ip", clientIP)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	id, err := s.identity.Identify(r)
	if err != nil {
		release()
		s.log.Warn("🚫 身份验证失败", "ip", clientIP, "err", err)
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		release()
		s.log.Warn("WebSocket 升级失败", "err", err)
		return
	}

	client := NewClient(s, conn, id)
	client.IP = clientIP
	if r.URL.Query().Get("format") == "proto" {
		client.format.Store(int32(codec.FormatProto))
	}

	// 同一身份只允许一个连接
	if err := s.registerClient(client); err != nil {
		s.log.Warn("🚫 重复登录", "player", id.UserID, "ip", clientIP)
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUserExists))
		client.Close()
		client.release = release
		go func() {
			client.WritePump()
			client.release()
		}()
		return
	}
	client.release = release

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:       client.ID,
		PlayerName:     client.Name,
		ReconnectToken: id.ReconnectToken,
	}))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	s.handler.SendStats(ctx, client)
	cancel()

	s.log.Info("✅ 玩家已连接", "player", client.Name, "id", client.ID, "ip", clientIP)

	go client.WritePump()
	go client.ReadPump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// registerClient 注册客户端，同一 ID 已在线时拒绝
func (s *Server) registerClient(client *Client) error {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, exists := s.clients[client.ID]; exists {
		return apperrors.ErrUserExists
	}
	s.clients[client.ID] = client
	return nil
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if current, ok := s.clients[client.ID]; ok && current == client {
		delete(s.clients, client.ID)
		s.log.Info("❌ 玩家已断开", "player", client.Name, "id", client.ID)
	}
}
