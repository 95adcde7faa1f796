package progress

import "context"

// SlotStatus 表示 slot 的处理状态
type SlotStatus int

const (
	SlotUnknown   SlotStatus = 0 // 不存在
	SlotProcessed SlotStatus = 1 // ✅ 已处理成功
	SlotInvalid   SlotStatus = 2 // ❌ 区块级错误、跳过
	SlotPending   SlotStatus = 3 // 🕒 处理中，暂未完成
	SlotMissing   SlotStatus = 4 // 链上有块但流中未收到，等待补数
)

func (s SlotStatus) String() string {
	switch s {
	case SlotProcessed:
		return "processed"
	case SlotInvalid:
		return "invalid"
	case SlotPending:
		return "pending"
	case SlotMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// Store slot 状态存储
type Store interface {
	GetSlotStatus(ctx context.Context, slot uint64) (SlotStatus, error)
	MarkSlotStatus(ctx context.Context, slot uint64, status SlotStatus) error
}
