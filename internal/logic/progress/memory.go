package progress

import (
	"context"
	"sync"
)

const defaultMemoryCapacity = 10000

// MemoryProgressStore 未配置 Redis 时使用，超过容量淘汰最小的 slot
type MemoryProgressStore struct {
	mu       sync.Mutex
	capacity int
	slots    map[uint64]SlotStatus
	minSlot  uint64
}

func NewMemoryProgressStore(capacity int) *MemoryProgressStore {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &MemoryProgressStore{
		capacity: capacity,
		slots:    make(map[uint64]SlotStatus, capacity),
	}
}

func (m *MemoryProgressStore) GetSlotStatus(_ context.Context, slot uint64) (SlotStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[slot], nil
}

func (m *MemoryProgressStore) MarkSlotStatus(_ context.Context, slot uint64, status SlotStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.slots) == 0 || slot < m.minSlot {
		m.minSlot = slot
	}
	m.slots[slot] = status

	for len(m.slots) > m.capacity {
		delete(m.slots, m.minSlot)
		m.minSlot = m.nextMinLocked()
	}
	return nil
}

func (m *MemoryProgressStore) nextMinLocked() uint64 {
	first := true
	var lowest uint64
	for s := range m.slots {
		if first || s < lowest {
			lowest, first = s, false
		}
	}
	return lowest
}

func (m *MemoryProgressStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
