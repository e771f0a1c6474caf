// internal/infrastructure/persistence/recipient/redis_store.go
package recipient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// redisClient подмножество *redis.Client, нужное хранилищу
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Удаление ключа только при совпадении значения (compare-and-delete)
const clearIfScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`

// RedisStore хранит chat id под одним ключом без TTL
type RedisStore struct {
	client redisClient
	key    string
}

// NewRedisStore создает хранилище поверх клиента Redis
func NewRedisStore(client redisClient, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Get читает chat id
func (s *RedisStore) Get(ctx context.Context) (int64, bool, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	chatID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt recipient value under %s: %w", s.key, err)
	}
	return chatID, true, nil
}

// Set сохраняет chat id
func (s *RedisStore) Set(ctx context.Context, chatID int64) error {
	if err := s.client.Set(ctx, s.key, strconv.FormatInt(chatID, 10), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// ClearIf удаляет ключ, если под ним записан chatID
func (s *RedisStore) ClearIf(ctx context.Context, chatID int64) (bool, error) {
	n, err := s.client.Eval(ctx, clearIfScript, []string{s.key}, strconv.FormatInt(chatID, 10)).Int64()
	if err != nil {
		return false, fmt.Errorf("redis clear %s: %w", s.key, err)
	}
	return n > 0, nil
}
