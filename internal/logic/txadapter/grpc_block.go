package txadapter

import (
	"fmt"

	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/types"
	"spl-token-indexer-sol/pkg/logger"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
)

// AdaptGrpcBlock 将 gRPC 推送的区块转换为内部 core.Block。
// 只做结构转换，不做校验：缺失的 block_time / message / meta 原样保留为 nil，由 walker 判定。
// 投票交易不可能调用 token program，直接过滤。
func AdaptGrpcBlock(block *pb.SubscribeUpdateBlock) (_ *core.Block, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("AdaptGrpcBlock panic: %v", r)
		}
	}()

	if block == nil {
		return nil, fmt.Errorf("nil block")
	}

	out := &core.Block{
		Slot:         block.Slot,
		ParentSlot:   block.ParentSlot,
		Transactions: make([]*core.Transaction, 0, len(block.Transactions)),
	}
	if block.BlockTime != nil {
		ts := block.BlockTime.Timestamp
		out.BlockTime = &ts
	}

	// blockHash 解析失败只打日志，继续执行
	if block.Blockhash != "" {
		hash, err := types.HashFromBase58(block.Blockhash)
		if err != nil {
			logger.Warnf("[txadapter] BlockHash 无法解析，使用零值: slot=%d, blockhash=%s, err=%v",
				block.Slot, block.Blockhash, err)
		}
		out.BlockHash = hash
	}

	for _, tx := range block.Transactions {
		if tx == nil || tx.IsVote {
			continue
		}
		out.Transactions = append(out.Transactions, adaptTx(tx))
	}
	return out, nil
}

func adaptTx(tx *pb.SubscribeUpdateTransactionInfo) *core.Transaction {
	out := &core.Transaction{Index: tx.Index}

	if tx.Transaction != nil {
		out.Signatures = tx.Transaction.Signatures
		if msg := tx.Transaction.Message; msg != nil {
			out.Message = adaptMessage(msg)
		}
	}
	if len(out.Signatures) == 0 && len(tx.Signature) > 0 {
		out.Signatures = [][]byte{tx.Signature}
	}

	if tx.Meta != nil {
		out.Meta = &core.TransactionMeta{
			Failed:            tx.Meta.Err != nil,
			InnerInstructions: adaptInnerGroups(tx.Meta.InnerInstructions),
		}
	}
	return out
}

func adaptMessage(msg *pb.Message) *core.Message {
	out := &core.Message{
		AccountKeys:  msg.AccountKeys,
		Instructions: make([]core.Instruction, 0, len(msg.Instructions)),
	}
	for _, ix := range msg.Instructions {
		if ix == nil {
			continue
		}
		out.Instructions = append(out.Instructions, core.Instruction{
			ProgramIDIndex: ix.ProgramIdIndex,
			Accounts:       ix.Accounts,
			Data:           ix.Data,
		})
	}
	if len(msg.AddressTableLookups) > 0 {
		out.AddressTableLookups = make([]core.AddressTableLookup, 0, len(msg.AddressTableLookups))
		for _, l := range msg.AddressTableLookups {
			if l == nil {
				continue
			}
			out.AddressTableLookups = append(out.AddressTableLookups, core.AddressTableLookup{
				AccountKey:      l.AccountKey,
				WritableIndexes: l.WritableIndexes,
				ReadonlyIndexes: l.ReadonlyIndexes,
			})
		}
	}
	return out
}

func adaptInnerGroups(groups []*pb.InnerInstructions) []core.InnerInstructionGroup {
	if len(groups) == 0 {
		return nil
	}
	out := make([]core.InnerInstructionGroup, 0, len(groups))
	for _, g := range groups {
		if g == nil {
			continue
		}
		ixs := make([]core.Instruction, 0, len(g.Instructions))
		for _, inner := range g.Instructions {
			if inner == nil {
				continue
			}
			ixs = append(ixs, core.Instruction{
				ProgramIDIndex: inner.ProgramIdIndex,
				Accounts:       inner.Accounts,
				Data:           inner.Data,
			})
		}
		out = append(out, core.InnerInstructionGroup{Index: g.Index, Instructions: ixs})
	}
	return out
}
