package resolver

import (
	"context"
	"fmt"
	"sync"

	"spl-token-indexer-sol/internal/consts"
	"spl-token-indexer-sol/internal/logic/core"

	"github.com/mr-tron/base58"
)

// LookupTableRepository 地址表仓库（只读）。
// key 形如 "table:<base58 地址>"，不存在时 found=false 且 err=nil。
type LookupTableRepository interface {
	GetResolved(ctx context.Context, key string) (addresses []string, found bool, err error)
}

// Resolve 还原交易的完整账户列表：静态账户 ++ 所有地址表的 writable ++ 所有地址表的 readonly。
//   - 仓库中不存在的地址表直接跳过（不报错，后续引用其下标会在角色映射阶段失败）；
//   - 地址表下标越界返回 core.ErrLookupIndexOutOfRange；
//   - 仓库读取失败原样返回，由调用方决定整个区块重试。
func Resolve(ctx context.Context, msg *core.Message, repo LookupTableRepository) ([]string, error) {
	static := msg.AccountKeys
	lookups := msg.AddressTableLookups

	var writable, readonly []string
	if len(lookups) > 0 {
		writable = make([]string, 0, 16)
		readonly = make([]string, 0, 16)
	}

	for li, lookup := range lookups {
		if len(lookup.AccountKey) != 32 {
			return nil, fmt.Errorf("%w: lookup #%d table key is %d bytes",
				core.ErrInvalidAccountKey, li, len(lookup.AccountKey))
		}
		tableAddr := base58.Encode(lookup.AccountKey)
		table, found, err := repo.GetResolved(ctx, consts.LookupTableKey(tableAddr))
		if err != nil {
			return nil, fmt.Errorf("get lookup table %s: %w", tableAddr, err)
		}
		if !found {
			continue
		}

		for _, idx := range lookup.WritableIndexes {
			if int(idx) >= len(table) {
				return nil, fmt.Errorf("%w: table %s writable index %d, size %d",
					core.ErrLookupIndexOutOfRange, tableAddr, idx, len(table))
			}
			writable = append(writable, table[idx])
		}
		for _, idx := range lookup.ReadonlyIndexes {
			if int(idx) >= len(table) {
				return nil, fmt.Errorf("%w: table %s readonly index %d, size %d",
					core.ErrLookupIndexOutOfRange, tableAddr, idx, len(table))
			}
			readonly = append(readonly, table[idx])
		}
	}

	accounts := make([]string, 0, len(static)+len(writable)+len(readonly))
	for i, key := range static {
		if len(key) != 32 {
			return nil, fmt.Errorf("%w: static account #%d is %d bytes", core.ErrInvalidAccountKey, i, len(key))
		}
		accounts = append(accounts, base58.Encode(key))
	}
	accounts = append(accounts, writable...)
	accounts = append(accounts, readonly...)
	return accounts, nil
}

// BlockCache 单个区块内缓存地址表查询结果，同一区块中大量交易会引用相同的地址表。
// 并发安全，区块处理结束后丢弃。
type BlockCache struct {
	repo LookupTableRepository

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	addresses []string
	found     bool
}

func NewBlockCache(repo LookupTableRepository) *BlockCache {
	return &BlockCache{
		repo:    repo,
		entries: make(map[string]cacheEntry),
	}
}

func (c *BlockCache) GetResolved(ctx context.Context, key string) ([]string, bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return e.addresses, e.found, nil
	}

	addresses, found, err := c.repo.GetResolved(ctx, key)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{addresses: addresses, found: found}
	c.mu.Unlock()
	return addresses, found, nil
}
