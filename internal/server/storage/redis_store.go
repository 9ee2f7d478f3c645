package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	roomKeyPrefix    = "room:"
	sessionKeyPrefix = "session:"

	// 房间快照过期时间
	roomExpiration = 2 * time.Hour
)

// RoomData 房间快照（用于 Redis 序列化，供运维查看）
type RoomData struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Phase      string   `json:"phase"`
	Seated     []string `json:"seated"`
	Roster     []string `json:"roster,omitempty"`
	Active     bool     `json:"active"`
	Stable     bool     `json:"stable"`
	GameNumber int      `json:"game_number"`
	UpdatedAt  int64    `json:"updated_at"`
}

// SessionData 重连令牌对应的身份
type SessionData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Token      string `json:"token"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient 连接 Redis 并检查连通性
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// --- 房间存储 ---

// SaveRoom 保存房间快照
func (rs *RedisStore) SaveRoom(ctx context.Context, id string, data *RoomData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+id, jsonData, roomExpiration).Err()
}

// LoadRoom 读取房间快照，不存在时返回 nil
func (rs *RedisStore) LoadRoom(ctx context.Context, id string) (*RoomData, error) {
	data, err := rs.client.Get(ctx, roomKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}
	return &roomData, nil
}

// DeleteRoom 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, id string) error {
	return rs.client.Del(ctx, roomKeyPrefix+id).Err()
}

// GetAllRoomIDs 获取所有有快照的房间 ID
func (rs *RedisStore) GetAllRoomIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := rs.client.Scan(ctx, 0, roomKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(roomKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// --- 重连令牌 ---

// SaveSession 保存令牌，ttl 到期后令牌失效
func (rs *RedisStore) SaveSession(ctx context.Context, session *SessionData, ttl time.Duration) error {
	key := sessionKeyPrefix + session.Token
	pipe := rs.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"player_id":   session.PlayerID,
		"player_name": session.PlayerName,
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// LoadSession 按令牌读取身份，不存在时返回 nil
func (rs *RedisStore) LoadSession(ctx context.Context, token string) (*SessionData, error) {
	data, err := rs.client.HGetAll(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &SessionData{
		PlayerID:   data["player_id"],
		PlayerName: data["player_name"],
		Token:      token,
	}, nil
}

// DeleteSession 删除令牌
func (rs *RedisStore) DeleteSession(ctx context.Context, token string) error {
	return rs.client.Del(ctx, sessionKeyPrefix+token).Err()
}
