package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "HEARTS_"

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1780
	defaultMaxConnections = 1000
	defaultMessageRate    = 20
	defaultRedisAddr      = "localhost:6379"
	defaultMongoDatabase  = "hearts"
	defaultMongoColl      = "userInfo"
	defaultCacheTTL       = 5
	defaultTurnTimeout    = 30
	defaultPassTimeout    = 30
	defaultGracePeriod    = 15
	defaultScoreThreshold = 50
	defaultShutdownGrace  = 10
	defaultLogLevel       = "info"
)

// Config 服务端配置
type Config struct {
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`
	Redis  RedisConfig  `yaml:"redis" envPrefix:"REDIS_"`
	Mongo  MongoConfig  `yaml:"mongo" envPrefix:"MONGO_"`
	Stats  StatsConfig  `yaml:"stats" envPrefix:"STATS_"`
	Auth   AuthConfig   `yaml:"auth" envPrefix:"AUTH_"`
	Game   GameConfig   `yaml:"game" envPrefix:"GAME_"`
	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string   `yaml:"host" env:"HOST"`
	Port           int      `yaml:"port" env:"PORT"`
	MaxConnections int      `yaml:"max_connections" env:"MAX_CONNECTIONS"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	MessageRate    int      `yaml:"message_rate" env:"MESSAGE_RATE"` // 每秒最大消息数
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// MongoConfig MongoDB 配置（stats.backend=mongo 时使用）
type MongoConfig struct {
	URI        string `yaml:"uri" env:"URI"`
	Database   string `yaml:"database" env:"DATABASE"`
	Collection string `yaml:"collection" env:"COLLECTION"`
}

// StatsConfig 战绩存储配置
type StatsConfig struct {
	Backend  string `yaml:"backend" env:"BACKEND"`     // redis | mongo | memory
	CacheTTL int    `yaml:"cache_ttl" env:"CACHE_TTL"` // 战绩快照缓存（秒）
}

// AuthConfig 身份配置
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"` // 为空时使用匿名身份 + 重连令牌
}

// GameConfig 游戏配置
type GameConfig struct {
	TurnTimeout    int `yaml:"turn_timeout" env:"TURN_TIMEOUT"`       // 出牌超时（秒）
	PassTimeout    int `yaml:"pass_timeout" env:"PASS_TIMEOUT"`       // 换牌超时（秒）
	GracePeriod    int `yaml:"grace_period" env:"GRACE_PERIOD"`       // 掉线宽限（秒）
	ScoreThreshold int `yaml:"score_threshold" env:"SCORE_THRESHOLD"` // 终局分数线
	ShutdownGrace  int `yaml:"shutdown_grace" env:"SHUTDOWN_GRACE"`   // 优雅关闭等待（秒）
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// Stats backends
const (
	StatsBackendRedis  = "redis"
	StatsBackendMongo  = "mongo"
	StatsBackendMemory = "memory"
)

// TurnTimeoutDuration 返回出牌超时时长
func (c *GameConfig) TurnTimeoutDuration() time.Duration {
	return time.Duration(c.TurnTimeout) * time.Second
}

// PassTimeoutDuration 返回换牌超时时长
func (c *GameConfig) PassTimeoutDuration() time.Duration {
	return time.Duration(c.PassTimeout) * time.Second
}

// GracePeriodDuration 返回掉线宽限时长
func (c *GameConfig) GracePeriodDuration() time.Duration {
	return time.Duration(c.GracePeriod) * time.Second
}

// ShutdownGraceDuration 返回优雅关闭等待时长
func (c *GameConfig) ShutdownGraceDuration() time.Duration {
	return time.Duration(c.ShutdownGrace) * time.Second
}

// CacheTTLDuration 返回战绩快照缓存时长
func (c *StatsConfig) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load 加载配置文件，再用环境变量覆盖
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// ApplyEnv 用 HEARTS_ 前缀的环境变量覆盖配置
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.MaxConnections <= 0 {
		errs = append(errs, errors.New("server.max_connections must be positive"))
	}
	switch c.Stats.Backend {
	case StatsBackendRedis, StatsBackendMemory:
	case StatsBackendMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri is required for the mongo stats backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown stats.backend %q", c.Stats.Backend))
	}
	if c.Game.TurnTimeout <= 0 || c.Game.PassTimeout <= 0 || c.Game.GracePeriod <= 0 {
		errs = append(errs, errors.New("game timeouts must be positive"))
	}
	if c.Game.ScoreThreshold <= 0 {
		errs = append(errs, errors.New("game.score_threshold must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.Host, defaultHost)
	setDefault(&c.Server.Port, defaultPort)
	setDefault(&c.Server.MaxConnections, defaultMaxConnections)
	setDefault(&c.Server.MessageRate, defaultMessageRate)
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	setDefault(&c.Redis.Addr, defaultRedisAddr)
	setDefault(&c.Mongo.Database, defaultMongoDatabase)
	setDefault(&c.Mongo.Collection, defaultMongoColl)
	setDefault(&c.Stats.Backend, StatsBackendRedis)
	setDefault(&c.Stats.CacheTTL, defaultCacheTTL)
	setDefault(&c.Game.TurnTimeout, defaultTurnTimeout)
	setDefault(&c.Game.PassTimeout, defaultPassTimeout)
	setDefault(&c.Game.GracePeriod, defaultGracePeriod)
	setDefault(&c.Game.ScoreThreshold, defaultScoreThreshold)
	setDefault(&c.Game.ShutdownGrace, defaultShutdownGrace)
	setDefault(&c.Log.Level, defaultLogLevel)
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}
