package lookuptable

import (
	"context"
	"sync"

	"spl-token-indexer-sol/internal/consts"
)

// Writer 地址表写入端，由 Tracker 调用
type Writer interface {
	Append(ctx context.Context, table string, addresses []string) error
	Delete(ctx context.Context, table string) error
}

// MemoryStore 进程内地址表仓库，用于测试、回放以及未配置 Redis 的场景
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]string // key: "table:<base58>"
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]string)}
}

func (s *MemoryStore) GetResolved(_ context.Context, key string) ([]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[key]
	return t, ok, nil
}

// Append 追加地址。每次都生成新切片，已返回给读方的切片不受影响
func (s *MemoryStore) Append(_ context.Context, table string, addresses []string) error {
	key := consts.LookupTableKey(table)
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.tables[key]
	merged := make([]string, 0, len(old)+len(addresses))
	merged = append(merged, old...)
	merged = append(merged, addresses...)
	s.tables[key] = merged
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, consts.LookupTableKey(table))
	return nil
}

// Put 直接覆盖整张表，回放 fixture 使用
func (s *MemoryStore) Put(table string, addresses []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[consts.LookupTableKey(table)] = append([]string(nil), addresses...)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}
