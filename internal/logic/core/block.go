package core

import "spl-token-indexer-sol/internal/types"

// Block 表示一个待解析的区块，与具体数据源（gRPC / 回放文件）无关。
type Block struct {
	Slot         uint64
	ParentSlot   uint64
	BlockTime    *int64     // Unix 秒，缺失视为致命错误
	BlockHash    types.Hash // 仅用于日志，解析失败时为零值
	Transactions []*Transaction
}

// Transaction 区块内的一笔交易
type Transaction struct {
	Index      uint64   // 交易在区块中的序号
	Signatures [][]byte // 第一个签名即交易 ID
	Message    *Message
	Meta       *TransactionMeta
}

// Message 交易消息体
type Message struct {
	AccountKeys         [][]byte // 静态账户，每个 32 字节
	AddressTableLookups []AddressTableLookup
	Instructions        []Instruction // 主指令
}

// AddressTableLookup 引用一张地址表（ALT）中的部分条目
type AddressTableLookup struct {
	AccountKey      []byte
	WritableIndexes []byte
	ReadonlyIndexes []byte
}

// Instruction 主指令与 inner 指令共用的编译后结构，所有账户都以下标形式引用
type Instruction struct {
	ProgramIDIndex uint32
	Accounts       []byte
	Data           []byte // 第一个字节为 opcode
}

// InnerInstructionGroup 某条主指令执行期间产生的 CPI 调用，Index 为对应主指令的位置
type InnerInstructionGroup struct {
	Index        uint32
	Instructions []Instruction
}

// TransactionMeta 交易执行结果
type TransactionMeta struct {
	Failed            bool
	InnerInstructions []InnerInstructionGroup
}

// TxID 返回第一个签名的 base58 形式，没有签名时返回空串
func (tx *Transaction) TxID() string {
	if len(tx.Signatures) == 0 {
		return ""
	}
	sig, err := types.SignatureFromBytes(tx.Signatures[0])
	if err != nil {
		return ""
	}
	return sig.String()
}
