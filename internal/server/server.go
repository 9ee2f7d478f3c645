package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/hearts/internal/config"
	"github.com/palemoky/hearts/internal/game/room"
	"github.com/palemoky/hearts/internal/logger"
	"github.com/palemoky/hearts/internal/server/handler"
	"github.com/palemoky/hearts/internal/server/identity"
	"github.com/palemoky/hearts/internal/server/storage"
)

// Deps 服务器依赖
type Deps struct {
	Rooms    *room.Manager
	Stats    storage.Stats
	Identity identity.Provider
	Clock    quartz.Clock
	Logger   *log.Logger
}

// Server WebSocket 服务器
type Server struct {
	config    *config.Config
	rooms     *room.Manager
	identity  identity.Provider
	handler   *handler.Handler
	clock     quartz.Clock
	log       *log.Logger
	upgrader  websocket.Upgrader
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode atomic.Bool
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, deps Deps) *Server {
	if deps.Clock == nil {
		deps.Clock = quartz.NewReal()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Component("server")
	}

	s := &Server{
		config:   cfg,
		rooms:    deps.Rooms,
		identity: deps.Identity,
		clock:    deps.Clock,
		log:      deps.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 来源在升级前由 originChecker 校验
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:        make(map[string]*Client),
		originChecker:  NewOriginChecker(cfg.Server.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(deps.Clock, cfg.Server.MessageRate),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server: s,
		Rooms:  deps.Rooms,
		Stats:  deps.Stats,
		Clock:  deps.Clock,
		Logger: deps.Logger.WithPrefix("handler"),
	})

	s.log.Info("🔒 安全配置", "message_rate", cfg.Server.MessageRate, "max_connections", cfg.Server.MaxConnections, "origins", cfg.Server.AllowedOrigins)
	return s
}

// Handler 返回 HTTP 路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run 启动服务器，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("🚀 服务器启动", "url", "ws://"+addr+"/ws", "cpus", runtime.NumCPU())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.monitorStats(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Game.ShutdownGraceDuration())
		defer cancel()

		s.GracefulShutdown(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
