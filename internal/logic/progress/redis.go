package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProgressStore 管理 Redis 中的 slot 状态记录（幂等控制）
type RedisProgressStore struct {
	rdb *redis.Client
	ttl time.Duration
}

const (
	slotPrefix = "progress:spltoken:slot"
	defaultTTL = 72 * time.Hour
)

// NewRedisProgressStore 创建 Redis 判重管理器，ttl <= 0 时使用默认值
func NewRedisProgressStore(rdb *redis.Client, ttl time.Duration) *RedisProgressStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisProgressStore{rdb: rdb, ttl: ttl}
}

func slotKey(slot uint64) string {
	return fmt.Sprintf("%s:%d", slotPrefix, slot)
}

// GetSlotStatus 获取 slot 的状态，无法识别的值按 Unknown 处理
func (r *RedisProgressStore) GetSlotStatus(ctx context.Context, slot uint64) (SlotStatus, error) {
	val, err := r.rdb.Get(ctx, slotKey(slot)).Int()
	switch {
	case errors.Is(err, redis.Nil):
		return SlotUnknown, nil
	case err != nil:
		return SlotUnknown, fmt.Errorf("redis get error: %w", err)
	case val == int(SlotProcessed):
		return SlotProcessed, nil
	case val == int(SlotInvalid):
		return SlotInvalid, nil
	case val == int(SlotPending):
		return SlotPending, nil
	case val == int(SlotMissing):
		return SlotMissing, nil
	default:
		return SlotUnknown, nil // 容错处理
	}
}

// MarkSlotStatus 通用设置 slot 的状态
func (r *RedisProgressStore) MarkSlotStatus(ctx context.Context, slot uint64, status SlotStatus) error {
	return r.rdb.Set(ctx, slotKey(slot), int(status), r.ttl).Err()
}
