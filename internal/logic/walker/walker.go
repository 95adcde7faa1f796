package walker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spl-token-indexer-sol/internal/consts"
	"spl-token-indexer-sol/internal/logic/accountroles"
	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/logic/decoder"
	"spl-token-indexer-sol/internal/logic/resolver"
	"spl-token-indexer-sol/pkg/logger"
	"spl-token-indexer-sol/pkg/utils"
)

// Options 解析参数
type Options struct {
	TargetProgram string // 目标 program（base58）
	// LegacyPositions 兼容历史输出的位置字段：
	//   - 主指令 block_slot = parent_slot，inner 指令 block_slot = parent_slot + 1；
	//   - instruction_index 取主指令的 program_id_index；
	//   - inner_instruction_index 取 inner 指令的 program_id_index。
	// 关闭后 block_slot = slot，instruction_index 为主指令序号，inner_instruction_index 为 inner 序号（从 1 开始）。
	LegacyPositions bool
	Workers         int // 交易级并发数，默认 CPU 数 + 2
}

// WalkStats 单个区块的解析统计
type WalkStats struct {
	Transactions          int
	FailedTransactions    int // 链上执行失败，不解析
	SkippedTransactions   int // 账户还原失败，整笔丢弃
	TopLevelEvents        int
	InnerEvents           int
	MalformedPayloads     int
	UnknownInstructions   int
	NonTargetInstructions int
}

func (s *WalkStats) add(o WalkStats) {
	s.Transactions += o.Transactions
	s.FailedTransactions += o.FailedTransactions
	s.SkippedTransactions += o.SkippedTransactions
	s.TopLevelEvents += o.TopLevelEvents
	s.InnerEvents += o.InnerEvents
	s.MalformedPayloads += o.MalformedPayloads
	s.UnknownInstructions += o.UnknownInstructions
	s.NonTargetInstructions += o.NonTargetInstructions
}

// WalkResult 区块解析结果，Events 按交易顺序、主指令顺序、inner 顺序深度优先排列
type WalkResult struct {
	Slot    uint64
	Events  []*core.EventRecord
	Skipped []*core.TxError
	Stats   WalkStats
}

type BlockWalker struct {
	opts Options
	repo resolver.LookupTableRepository
}

func NewBlockWalker(opts Options, repo resolver.LookupTableRepository) *BlockWalker {
	if opts.TargetProgram == "" {
		opts.TargetProgram = consts.TokenProgramStr
	}
	if opts.Workers <= 0 {
		opts.Workers = consts.CpuCount + 2
	}
	return &BlockWalker{opts: opts, repo: repo}
}

// blockEnv 区块内所有事件共享的字段
type blockEnv struct {
	slot       uint64
	parentSlot uint64
	blockTime  int64
	blockDate  string
	repo       resolver.LookupTableRepository
}

type txResult struct {
	events  []*core.EventRecord
	skipped *core.TxError
	stats   WalkStats
}

// Walk 解析整个区块。
// 区块级错误（缺少时间戳 / message / meta，地址表仓库不可用）直接返回，不产出任何事件；
// 交易级错误只丢弃该笔交易，记录在 WalkResult.Skipped。
func (w *BlockWalker) Walk(ctx context.Context, block *core.Block) (*WalkResult, error) {
	if block.BlockTime == nil {
		return nil, fmt.Errorf("slot %d: %w", block.Slot, core.ErrMissingBlockTimestamp)
	}
	for _, tx := range block.Transactions {
		if tx.Message == nil {
			return nil, fmt.Errorf("slot %d tx %d: %w", block.Slot, tx.Index, core.ErrMissingMessage)
		}
		if tx.Meta == nil {
			return nil, fmt.Errorf("slot %d tx %d: %w", block.Slot, tx.Index, core.ErrMissingTransactionMeta)
		}
	}

	env := &blockEnv{
		slot:       block.Slot,
		parentSlot: block.ParentSlot,
		blockTime:  *block.BlockTime,
		blockDate:  BlockDate(*block.BlockTime),
		repo:       resolver.NewBlockCache(w.repo),
	}

	results, err := utils.ParallelMapErr(ctx, block.Transactions, w.opts.Workers,
		func(ctx context.Context, tx *core.Transaction) (txResult, error) {
			return w.walkTx(ctx, env, tx)
		})
	if err != nil {
		return nil, fmt.Errorf("slot %d: %w", block.Slot, err)
	}

	total := 0
	for i := range results {
		total += len(results[i].events)
	}
	out := &WalkResult{
		Slot:   block.Slot,
		Events: make([]*core.EventRecord, 0, total),
	}
	for i := range results {
		r := &results[i]
		out.Events = append(out.Events, r.events...)
		out.Stats.add(r.stats)
		if r.skipped != nil {
			out.Skipped = append(out.Skipped, r.skipped)
			logger.Warnf("[walker] skip tx, slot=%d, %v", block.Slot, r.skipped)
		}
	}
	return out, nil
}

func (w *BlockWalker) walkTx(ctx context.Context, env *blockEnv, tx *core.Transaction) (txResult, error) {
	res := txResult{stats: WalkStats{Transactions: 1}}
	if tx.Meta.Failed {
		res.stats.FailedTransactions = 1
		return res, nil
	}

	txID := tx.TxID()
	skip := func(err error) (txResult, error) {
		return txResult{
			skipped: &core.TxError{TxIndex: tx.Index, TxID: txID, Err: err},
			stats:   WalkStats{Transactions: 1, SkippedTransactions: 1},
		}, nil
	}

	accounts, err := resolver.Resolve(ctx, tx.Message, env.repo)
	if err != nil {
		if core.IsTxFatal(err) {
			return skip(err)
		}
		return res, err
	}

	// 按主指令序号归组，同一序号出现多组时按原顺序拼接
	inners := make(map[uint32][]core.InnerInstructionGroup, len(tx.Meta.InnerInstructions))
	for _, g := range tx.Meta.InnerInstructions {
		inners[g.Index] = append(inners[g.Index], g)
	}

	for i, ix := range tx.Message.Instructions {
		rec, err := w.buildEvent(env, txID, ix, accounts, &res.stats)
		if err != nil {
			return skip(fmt.Errorf("instruction %d: %w", i, err))
		}
		if rec != nil {
			w.fillTopLevelPosition(env, rec, i, ix)
			res.events = append(res.events, rec)
			res.stats.TopLevelEvents++
		}

		innerSeq := 0
		for _, group := range inners[uint32(i)] {
			for _, inner := range group.Instructions {
				innerSeq++
				rec, err := w.buildEvent(env, txID, inner, accounts, &res.stats)
				if err != nil {
					return skip(fmt.Errorf("instruction %d inner %d: %w", i, innerSeq, err))
				}
				if rec == nil {
					continue
				}
				w.fillInnerPosition(env, rec, i, ix, innerSeq, inner)
				res.events = append(res.events, rec)
				res.stats.InnerEvents++
			}
		}
	}
	return res, nil
}

// buildEvent 非目标 program 或参数损坏时返回 nil；仅交易级错误通过 error 返回
func (w *BlockWalker) buildEvent(env *blockEnv, txID string, ix core.Instruction, accounts []string, stats *WalkStats) (*core.EventRecord, error) {
	if int(ix.ProgramIDIndex) >= len(accounts) {
		return nil, fmt.Errorf("%w: program index %d, resolved %d",
			core.ErrUnresolvedAccountIndex, ix.ProgramIDIndex, len(accounts))
	}
	if accounts[ix.ProgramIDIndex] != w.opts.TargetProgram {
		stats.NonTargetInstructions++
		return nil, nil
	}

	desc, decodeErr := decoder.Decode(ix.Data)
	inputs, err := accountroles.AssignRoles(desc, ix.Accounts, accounts)
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		if !errors.Is(decodeErr, core.ErrMalformedInstructionPayload) {
			return nil, decodeErr
		}
		stats.MalformedPayloads++
		logger.Debugf("[walker] skip instruction, tx=%s, err=%v", txID, decodeErr)
		return nil, nil
	}
	if !desc.Known {
		stats.UnknownInstructions++
	}

	return &core.EventRecord{
		BlockDate:       env.blockDate,
		BlockTime:       env.blockTime,
		TxID:            txID,
		Dapp:            w.opts.TargetProgram,
		InstructionType: desc.Name,
		InputAccounts:   inputs,
		Args:            desc.Args,
	}, nil
}

func (w *BlockWalker) fillTopLevelPosition(env *blockEnv, rec *core.EventRecord, pos int, ix core.Instruction) {
	rec.IsInnerInstruction = false
	rec.InnerInstructionIndex = 0
	if w.opts.LegacyPositions {
		rec.BlockSlot = env.parentSlot
		rec.InstructionIndex = ix.ProgramIDIndex
		return
	}
	rec.BlockSlot = env.slot
	rec.InstructionIndex = uint32(pos)
}

func (w *BlockWalker) fillInnerPosition(env *blockEnv, rec *core.EventRecord, pos int, top core.Instruction, innerSeq int, inner core.Instruction) {
	rec.IsInnerInstruction = true
	if w.opts.LegacyPositions {
		rec.BlockSlot = env.parentSlot + 1
		rec.InstructionIndex = top.ProgramIDIndex
		rec.InnerInstructionIndex = inner.ProgramIDIndex
		return
	}
	rec.BlockSlot = env.slot
	rec.InstructionIndex = uint32(pos)
	rec.InnerInstructionIndex = uint32(innerSeq)
}

// BlockDate 区块时间对应的 UTC 日期
func BlockDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.DateOnly)
}
