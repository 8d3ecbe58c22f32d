package localstore

import (
	"context"
	"fmt"

	"github.com/ButyrinIA/forum/internal/config"
	"github.com/redis/go-redis/v9"
)

// RedisKV - KV поверх redis, для развертываний с несколькими инстансами
type RedisKV struct {
	rdb *redis.Client
}

func NewRedisKV(cfg *config.Config) *RedisKV {
	return &RedisKV{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}),
	}
}

func kvKey(key string) string {
	return fmt.Sprintf("forum:local:%s", key)
}

func (s *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, kvKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisKV) Set(ctx context.Context, key, value string) error {
	// Без TTL: хранение неограниченное, как у localStorage
	return s.rdb.Set(ctx, kvKey(key), value, 0).Err()
}

func (s *RedisKV) Close() error {
	return s.rdb.Close()
}
