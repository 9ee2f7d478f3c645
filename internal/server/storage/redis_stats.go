package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	statsKeyPrefix = "stats:user:"
	statsUsersKey  = "stats:users"

	fieldWins   = "wins"
	fieldLosses = "losses"
)

// RedisStats 每个玩家一个 hash（wins/losses），另有一个 set 记录全部玩家
type RedisStats struct {
	client *redis.Client
}

// NewRedisStats 创建 Redis 战绩存储
func NewRedisStats(client *redis.Client) *RedisStats {
	return &RedisStats{client: client}
}

func (s *RedisStats) increment(ctx context.Context, userID, field string) error {
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, statsKeyPrefix+userID, field, 1)
	pipe.SAdd(ctx, statsUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("increment %s for %s: %w", field, userID, err)
	}
	return nil
}

// IncrementWins 胜场 +1
func (s *RedisStats) IncrementWins(ctx context.Context, userID string) error {
	return s.increment(ctx, userID, fieldWins)
}

// IncrementLosses 负场 +1
func (s *RedisStats) IncrementLosses(ctx context.Context, userID string) error {
	return s.increment(ctx, userID, fieldLosses)
}

// List 返回全部玩家战绩
func (s *RedisStats) List(ctx context.Context) ([]Record, error) {
	ids, err := s.client.SMembers(ctx, statsUsersKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, statsKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	records := make([]Record, len(ids))
	for i, id := range ids {
		fields := cmds[i].Val()
		records[i] = Record{
			UserID: id,
			Wins:   parseCount(fields[fieldWins]),
			Losses: parseCount(fields[fieldLosses]),
		}
	}
	sortRecords(records)
	return records, nil
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
