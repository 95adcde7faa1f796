package lookuptable

import (
	"context"
	"encoding/binary"
	"fmt"

	"spl-token-indexer-sol/internal/consts"
	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/logic/resolver"
	"spl-token-indexer-sol/pkg/logger"

	"github.com/mr-tron/base58"
)

// Address Lookup Table program 指令（u32 小端 discriminator）
// https://github.com/solana-labs/solana/blob/master/sdk/program/src/address_lookup_table/instruction.rs
const (
	altCreateLookupTable uint32 = 0
	altExtendLookupTable uint32 = 2
	altCloseLookupTable  uint32 = 4
)

// Store 同时支持读写的地址表仓库
type Store interface {
	resolver.LookupTableRepository
	Writer
}

// TrackStats 单个区块内地址表变更统计
type TrackStats struct {
	Created  int
	Extended int
	Closed   int
	Added    int // 新增地址数
}

// Tracker 从区块中识别地址表的创建、扩展、关闭指令并写入仓库。
// 新增地址从下一个 slot 起才可被交易引用，因此应在区块解析完成之后调用 Apply。
type Tracker struct {
	store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Apply 按交易顺序应用区块内所有成功交易中的地址表变更（含 inner 指令）
func (t *Tracker) Apply(ctx context.Context, block *core.Block) (TrackStats, error) {
	var stats TrackStats
	altProgram := consts.AddressLookupTableProgramStr

	for _, tx := range block.Transactions {
		if tx.Message == nil || tx.Meta == nil || tx.Meta.Failed {
			continue
		}

		accounts, err := resolver.Resolve(ctx, tx.Message, t.store)
		if err != nil {
			if core.IsTxFatal(err) {
				logger.Warnf("[lookuptable] resolve accounts failed, tx=%s, err=%v", tx.TxID(), err)
				continue
			}
			return stats, err
		}

		apply := func(ix core.Instruction) error {
			if int(ix.ProgramIDIndex) >= len(accounts) || accounts[ix.ProgramIDIndex] != altProgram {
				return nil
			}
			return t.applyInstruction(ctx, ix, accounts, &stats)
		}

		for _, ix := range tx.Message.Instructions {
			if err := apply(ix); err != nil {
				return stats, fmt.Errorf("tx %s: %w", tx.TxID(), err)
			}
		}
		for _, group := range tx.Meta.InnerInstructions {
			for _, ix := range group.Instructions {
				if err := apply(ix); err != nil {
					return stats, fmt.Errorf("tx %s: %w", tx.TxID(), err)
				}
			}
		}
	}
	return stats, nil
}

func (t *Tracker) applyInstruction(ctx context.Context, ix core.Instruction, accounts []string, stats *TrackStats) error {
	if len(ix.Data) < 4 || len(ix.Accounts) == 0 {
		return nil
	}
	if int(ix.Accounts[0]) >= len(accounts) {
		logger.Warnf("[lookuptable] table account index %d out of range %d", ix.Accounts[0], len(accounts))
		return nil
	}
	table := accounts[ix.Accounts[0]]

	switch binary.LittleEndian.Uint32(ix.Data[:4]) {
	case altCreateLookupTable:
		// 地址可能被复用，清掉旧数据
		stats.Created++
		return t.store.Delete(ctx, table)

	case altExtendLookupTable:
		addresses, ok := parseExtend(ix.Data[4:])
		if !ok {
			logger.Warnf("[lookuptable] malformed ExtendLookupTable data, table=%s, len=%d", table, len(ix.Data))
			return nil
		}
		stats.Extended++
		stats.Added += len(addresses)
		return t.store.Append(ctx, table, addresses)

	case altCloseLookupTable:
		stats.Closed++
		return t.store.Delete(ctx, table)
	}
	return nil
}

// parseExtend 解析 ExtendLookupTable 参数：u64 数量 + N 个 32 字节地址
func parseExtend(data []byte) ([]string, bool) {
	if len(data) < 8 {
		return nil, false
	}
	n := binary.LittleEndian.Uint64(data[:8])
	body := data[8:]
	if n > uint64(len(body)/32) {
		return nil, false
	}
	out := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		out = append(out, base58.Encode(body[i*32:(i+1)*32]))
	}
	return out, true
}
