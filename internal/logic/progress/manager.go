package progress

import (
	"context"
)

// ProgressManager 封装 slot 判重与状态写入
type ProgressManager struct {
	store Store
}

func NewProgressManager(store Store) *ProgressManager {
	return &ProgressManager{store: store}
}

// ShouldProcessSlot 判断是否需要处理该 slot：
// - 已处理或已标记无效的 slot 跳过
// - Pending 视为上次处理中断，重新处理
// - Missing 为漏块，补推时正常处理
func (pm *ProgressManager) ShouldProcessSlot(ctx context.Context, slot uint64) (bool, error) {
	status, err := pm.store.GetSlotStatus(ctx, slot)
	if err != nil {
		return false, err
	}
	return status != SlotProcessed && status != SlotInvalid, nil
}

func (pm *ProgressManager) MarkSlotPending(ctx context.Context, slot uint64) error {
	return pm.store.MarkSlotStatus(ctx, slot, SlotPending)
}

func (pm *ProgressManager) MarkSlotProcessed(ctx context.Context, slot uint64) error {
	return pm.store.MarkSlotStatus(ctx, slot, SlotProcessed)
}

// MarkSlotInvalid 标记 slot 为无效（区块级错误，重放也不会成功）
func (pm *ProgressManager) MarkSlotInvalid(ctx context.Context, slot uint64) error {
	return pm.store.MarkSlotStatus(ctx, slot, SlotInvalid)
}

// MarkSlotMissing 记录漏块，供补数工具按 slot 重放
func (pm *ProgressManager) MarkSlotMissing(ctx context.Context, slot uint64) error {
	return pm.store.MarkSlotStatus(ctx, slot, SlotMissing)
}

func (pm *ProgressManager) SlotStatus(ctx context.Context, slot uint64) (SlotStatus, error) {
	return pm.store.GetSlotStatus(ctx, slot)
}
