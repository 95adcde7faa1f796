package lookuptable

import (
	"context"
	"fmt"

	"spl-token-indexer-sol/internal/consts"

	"github.com/redis/go-redis/v9"
)

// RedisStore 地址表以 list 形式存放，key 为 "table:<base58>"，元素顺序即表内下标
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// GetResolved 空 list 在 Redis 中等同于不存在，统一按 found=false 处理
func (r *RedisStore) GetResolved(ctx context.Context, key string) ([]string, bool, error) {
	vals, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lrange %s: %w", key, err)
	}
	if len(vals) == 0 {
		return nil, false, nil
	}
	return vals, true, nil
}

func (r *RedisStore) Append(ctx context.Context, table string, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}
	vals := make([]any, len(addresses))
	for i, a := range addresses {
		vals[i] = a
	}
	if err := r.rdb.RPush(ctx, consts.LookupTableKey(table), vals...).Err(); err != nil {
		return fmt.Errorf("redis rpush %s: %w", table, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, table string) error {
	if err := r.rdb.Del(ctx, consts.LookupTableKey(table)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", table, err)
	}
	return nil
}
