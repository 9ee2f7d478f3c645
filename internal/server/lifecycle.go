package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/protocol/codec"
)

const (
	monitorInterval       = 30 * time.Second
	shutdownCheckInterval = time.Second
)

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := s.clock.NewTicker(monitorInterval, "Server", "monitor")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			s.log.Info("📊 [监控]",
				"online", s.GetOnlineCount(),
				"rooms", s.rooms.Count(),
				"games", s.rooms.GetActiveGamesCount(),
				"goroutines", runtime.NumGoroutine(),
				"conns", fmt.Sprintf("%d/%d", len(s.semaphore), s.maxConnections),
				"mem_mb", fmt.Sprintf("%.2f", float64(m.Alloc)/1024/1024))
		}
	}
}

// EnterMaintenanceMode 进入维护模式
func (s *Server) EnterMaintenanceMode() {
	if s.maintenanceMode.Swap(true) {
		return
	}

	// 通知大厅用户服务器即将关闭
	s.BroadcastToLobby(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance, "👷🏻‍♂️ 维护模式：停止新的房间创建"))
	s.log.Info("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	return s.maintenanceMode.Load()
}

// GracefulShutdown 等待进行中的对局结束（最长到 ctx 截止），然后关闭全部连接
func (s *Server) GracefulShutdown(ctx context.Context) {
	s.EnterMaintenanceMode()

	ticker := s.clock.NewTicker(shutdownCheckInterval, "Server", "shutdown")
	defer ticker.Stop()

wait:
	for {
		activeGames := s.rooms.GetActiveGamesCount()
		if activeGames == 0 {
			s.log.Info("✅ 所有对局已结束")
			break
		}
		s.log.Info("⏳ 等待对局结束...", "games", activeGames)
		select {
		case <-ctx.Done():
			s.log.Warn("⚠️ 超时，强制关闭", "games", s.rooms.GetActiveGamesCount())
			break wait
		case <-ticker.C:
		}
	}

	s.Shutdown()
}

// Shutdown 关闭全部连接和房间
func (s *Server) Shutdown() {
	s.clientsMu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	s.clientsMu.RUnlock()

	for _, client := range clients {
		client.Close()
	}
	s.rooms.Shutdown()

	s.log.Info("服务器已关闭")
}
