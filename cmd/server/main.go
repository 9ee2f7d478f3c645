package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/palemoky/hearts/internal/config"
	"github.com/palemoky/hearts/internal/game/room"
	"github.com/palemoky/hearts/internal/game/session"
	"github.com/palemoky/hearts/internal/logger"
	"github.com/palemoky/hearts/internal/server"
	"github.com/palemoky/hearts/internal/server/identity"
	"github.com/palemoky/hearts/internal/server/storage"
)

// version is set by ldflags during build
var version = "dev"

// CLI 命令行参数
type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"显示版本"`
	Config   string           `short:"c" default:"configs/config.yaml" help:"配置文件路径"`
	Addr     string           `help:"监听地址，覆盖配置文件（如 :1780）"`
	LogLevel string           `name:"log-level" help:"日志级别（debug/info/warn/error），覆盖配置文件"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("hearts-server"),
		kong.Description("四人红心大战对局服务器"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(run(cli))
}

func run(cli CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	l := logger.Init(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer b.close()

	clock := quartz.NewReal()
	rooms := room.NewManager(room.Options{
		Store: b.rooms,
		Stats: b.stats,
		Clock: clock,
		Settings: session.Settings{
			TurnTimeout:    cfg.Game.TurnTimeoutDuration(),
			PassTimeout:    cfg.Game.PassTimeoutDuration(),
			GracePeriod:    cfg.Game.GracePeriodDuration(),
			ScoreThreshold: cfg.Game.ScoreThreshold,
		},
		Logger: l.WithPrefix("room"),
	})

	var provider identity.Provider = identity.NewTokenProvider(b.tokens)
	if cfg.Auth.JWTSecret != "" {
		provider = identity.NewJWTProvider(cfg.Auth.JWTSecret)
	}

	srv := server.NewServer(cfg, server.Deps{
		Rooms:    rooms,
		Stats:    b.stats,
		Identity: provider,
		Clock:    clock,
		Logger:   l.WithPrefix("server"),
	})

	l.Info("🎮 红心大战服务器启动中...", "version", version, "stats", cfg.Stats.Backend)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("服务器运行失败: %w", err)
	}
	l.Info("👋 服务器已退出")
	return nil
}

// loadConfig 读取配置文件（不存在时使用默认配置），再应用命令行覆盖
func loadConfig(cli CLI) (*config.Config, error) {
	cfg, err := config.Load(cli.Config)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Default().Warn("配置文件不存在，使用默认配置", "path", cli.Config)
		cfg = config.Default()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}

	if cli.Addr != "" {
		host, port, err := net.SplitHostPort(cli.Addr)
		if err != nil {
			return nil, fmt.Errorf("invalid --addr %q: %w", cli.Addr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid --addr port %q: %w", port, err)
		}
		cfg.Server.Host, cfg.Server.Port = host, p
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	return cfg, cfg.Validate()
}

// backend 按 stats.backend 组装的存储
type backend struct {
	stats   storage.Stats
	rooms   room.Store
	tokens  identity.TokenStore
	closers []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg *config.Config, l *log.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.Stats.Backend {
	case config.StatsBackendRedis:
		client, err := storage.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		store := storage.NewRedisStore(client)
		b.stats = storage.NewRedisStats(client)
		b.rooms = store
		b.tokens = store
		l.Info("📦 已连接 Redis", "addr", cfg.Redis.Addr)

	case config.StatsBackendMongo:
		client, err := storage.ConnectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Disconnect(context.Background()) })
		b.stats = storage.NewMongoStats(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
		b.tokens = identity.NewMemoryTokenStore(nil)
		l.Info("📦 已连接 MongoDB", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)

	default:
		b.stats = storage.NewMemoryStats()
		b.tokens = identity.NewMemoryTokenStore(nil)
		l.Warn("⚠️ 使用进程内战绩存储，重启后丢失")
	}

	if ttl := cfg.Stats.CacheTTLDuration(); ttl > 0 {
		cached, err := storage.NewCachedStats(b.stats, ttl)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, cached.Close)
		b.stats = cached
	}
	return b, nil
}
