package fixture

import (
	"fmt"
	"os"

	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/logic/lookuptable"
	"spl-token-indexer-sol/internal/logic/txadapter"

	"github.com/mr-tron/base58"
	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// BlockFixture 回放用的区块描述，字节字段与 Solana JSON RPC 一致使用 base58
type BlockFixture struct {
	Slot         uint64              `yaml:"slot"`
	ParentSlot   uint64              `yaml:"parent_slot"`
	BlockTime    *int64              `yaml:"block_time"`
	LookupTables map[string][]string `yaml:"lookup_tables"`
	Transactions []TxFixture         `yaml:"transactions"`
}

type TxFixture struct {
	Signature           string              `yaml:"signature"`
	Failed              bool                `yaml:"failed"`
	NoMeta              bool                `yaml:"no_meta"`
	AccountKeys         []string            `yaml:"account_keys"`
	AddressTableLookups []LookupFixture     `yaml:"address_table_lookups"`
	Instructions        []IxFixture         `yaml:"instructions"`
	InnerInstructions   []InnerGroupFixture `yaml:"inner_instructions"`
}

type LookupFixture struct {
	AccountKey      string `yaml:"account_key"`
	WritableIndexes []int  `yaml:"writable_indexes"`
	ReadonlyIndexes []int  `yaml:"readonly_indexes"`
}

type IxFixture struct {
	ProgramIDIndex uint32 `yaml:"program_id_index"`
	Accounts       []int  `yaml:"accounts"`
	Data           string `yaml:"data"`
}

type InnerGroupFixture struct {
	Index        uint32      `yaml:"index"`
	Instructions []IxFixture `yaml:"instructions"`
}

// LoadYAML 读取 yaml 区块描述
func LoadYAML(path string) (*BlockFixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f BlockFixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// LoadProtoBlock 读取 protobuf 编码的 SubscribeUpdateBlock（从 gRPC 流中落盘的原始区块）
func LoadProtoBlock(path string) (*core.Block, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var block pb.SubscribeUpdateBlock
	if err := proto.Unmarshal(raw, &block); err != nil {
		return nil, fmt.Errorf("unmarshal block %s: %w", path, err)
	}
	return txadapter.AdaptGrpcBlock(&block)
}

// Seed 将 fixture 中的地址表写入仓库
func (f *BlockFixture) Seed(store *lookuptable.MemoryStore) {
	for table, addresses := range f.LookupTables {
		store.Put(table, addresses)
	}
}

// Block 转换为 core.Block
func (f *BlockFixture) Block() (*core.Block, error) {
	out := &core.Block{
		Slot:         f.Slot,
		ParentSlot:   f.ParentSlot,
		BlockTime:    f.BlockTime,
		Transactions: make([]*core.Transaction, 0, len(f.Transactions)),
	}
	for i, tx := range f.Transactions {
		ctx, err := tx.transaction(uint64(i))
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		out.Transactions = append(out.Transactions, ctx)
	}
	return out, nil
}

func (t *TxFixture) transaction(index uint64) (*core.Transaction, error) {
	out := &core.Transaction{Index: index}
	if t.Signature != "" {
		sig, err := base58.Decode(t.Signature)
		if err != nil {
			return nil, fmt.Errorf("signature: %w", err)
		}
		out.Signatures = [][]byte{sig}
	}

	msg := &core.Message{}
	for _, k := range t.AccountKeys {
		key, err := base58.Decode(k)
		if err != nil {
			return nil, fmt.Errorf("account key %q: %w", k, err)
		}
		msg.AccountKeys = append(msg.AccountKeys, key)
	}
	for _, l := range t.AddressTableLookups {
		key, err := base58.Decode(l.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("lookup table %q: %w", l.AccountKey, err)
		}
		writable, err := toBytes(l.WritableIndexes)
		if err != nil {
			return nil, err
		}
		readonly, err := toBytes(l.ReadonlyIndexes)
		if err != nil {
			return nil, err
		}
		msg.AddressTableLookups = append(msg.AddressTableLookups, core.AddressTableLookup{
			AccountKey:      key,
			WritableIndexes: writable,
			ReadonlyIndexes: readonly,
		})
	}
	ixs, err := toInstructions(t.Instructions)
	if err != nil {
		return nil, err
	}
	msg.Instructions = ixs
	out.Message = msg

	if t.NoMeta {
		return out, nil
	}
	out.Meta = &core.TransactionMeta{Failed: t.Failed}
	for _, g := range t.InnerInstructions {
		inner, err := toInstructions(g.Instructions)
		if err != nil {
			return nil, err
		}
		out.Meta.InnerInstructions = append(out.Meta.InnerInstructions, core.InnerInstructionGroup{
			Index:        g.Index,
			Instructions: inner,
		})
	}
	return out, nil
}

func toInstructions(list []IxFixture) ([]core.Instruction, error) {
	out := make([]core.Instruction, 0, len(list))
	for _, ix := range list {
		accounts, err := toBytes(ix.Accounts)
		if err != nil {
			return nil, err
		}
		var data []byte
		if ix.Data != "" {
			if data, err = base58.Decode(ix.Data); err != nil {
				return nil, fmt.Errorf("instruction data %q: %w", ix.Data, err)
			}
		}
		out = append(out, core.Instruction{
			ProgramIDIndex: ix.ProgramIDIndex,
			Accounts:       accounts,
			Data:           data,
		})
	}
	return out, nil
}

func toBytes(list []int) ([]byte, error) {
	out := make([]byte, 0, len(list))
	for _, v := range list {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("index %d out of u8 range", v)
		}
		out = append(out, byte(v))
	}
	return out, nil
}
