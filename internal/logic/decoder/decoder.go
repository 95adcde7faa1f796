package decoder

import (
	"fmt"

	"spl-token-indexer-sol/internal/logic/core"

	sdktoken "github.com/blocto/solana-go-sdk/program/token"
	"github.com/near/borsh-go"
)

// Descriptor 一条指令的解码结果
type Descriptor struct {
	Opcode uint8
	Name   string
	Known  bool
	Roles  []core.Role // 固定角色，按账户顺序
	Args   core.Args
}

// Decode 解析指令数据，data[0] 为 opcode。
// 未登记的 opcode 返回 Known=false 的描述，不视为错误；
// 参数长度不足或 option tag 非法返回 core.ErrMalformedInstructionPayload。
func Decode(data []byte) (*Descriptor, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty instruction data", core.ErrMalformedInstructionPayload)
	}
	opcode := data[0]
	entry, ok := opcodeTable[sdktoken.Instruction(opcode)]
	if !ok {
		return &Descriptor{Opcode: opcode, Name: UnknownInstructionName}, nil
	}

	desc := &Descriptor{
		Opcode: opcode,
		Name:   entry.name,
		Known:  true,
		Roles:  entry.roles,
	}
	if entry.newPayload == nil {
		return desc, nil
	}

	body := data[1:]
	n, err := measure(entry.layout, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedInstructionPayload, entry.name, err)
	}

	p := entry.newPayload()
	if err := deserialize(p, body[:n]); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedInstructionPayload, entry.name, err)
	}
	desc.Args = p.toArgs()
	return desc, nil
}

// Name 返回 opcode 对应的 instruction_type
func Name(opcode uint8) string {
	if entry, ok := opcodeTable[sdktoken.Instruction(opcode)]; ok {
		return entry.name
	}
	return UnknownInstructionName
}

// measure 按布局计算参数实际占用的字节数，超出部分忽略
func measure(layout []fieldKind, body []byte) (int, error) {
	off := 0
	need := func(k int) error {
		if off+k > len(body) {
			return fmt.Errorf("need %d bytes at offset %d, have %d", k, off, len(body))
		}
		off += k
		return nil
	}
	for _, kind := range layout {
		var err error
		switch kind {
		case fieldU8:
			err = need(1)
		case fieldU64, fieldF64:
			err = need(8)
		case fieldPubkey:
			err = need(32)
		case fieldOptionPubkey:
			if err = need(1); err != nil {
				break
			}
			switch body[off-1] {
			case 0:
			case 1:
				err = need(32)
			default:
				err = fmt.Errorf("invalid option tag %d at offset %d", body[off-1], off-1)
			}
		}
		if err != nil {
			return 0, err
		}
	}
	return off, nil
}

func deserialize(p payload, body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("borsh.Deserialize panic: %v", r)
		}
	}()
	return borsh.Deserialize(p, body)
}
