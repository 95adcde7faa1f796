package decoder

import (
	"math"
	"strconv"

	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/types"
)

// payload 各指令参数的 borsh 结构，指针字段对应 COption（1 字节 tag + 值）
type payload interface {
	toArgs() core.Args
}

type amountPayload struct {
	Amount uint64
}

func (p *amountPayload) toArgs() core.Args {
	return core.Args{Amount: &p.Amount}
}

type checkedPayload struct {
	Amount   uint64
	Decimals uint8
}

func (p *checkedPayload) toArgs() core.Args {
	return core.Args{Amount: &p.Amount, Decimals: &p.Decimals}
}

type initializeMintPayload struct {
	Decimals        uint8
	MintAuthority   types.Pubkey
	FreezeAuthority *types.Pubkey
}

func (p *initializeMintPayload) toArgs() core.Args {
	mintAuthority := p.MintAuthority.String()
	option, freeze := optionalPubkey(p.FreezeAuthority)
	return core.Args{
		Decimals:              &p.Decimals,
		MintAuthority:         &mintAuthority,
		FreezeAuthorityOption: &option,
		FreezeAuthority:       freeze,
	}
}

type statusPayload struct {
	Status uint8
}

func (p *statusPayload) toArgs() core.Args {
	return core.Args{Status: &p.Status}
}

type setAuthorityPayload struct {
	AuthorityType uint8
	NewAuthority  *types.Pubkey
}

func (p *setAuthorityPayload) toArgs() core.Args {
	authorityType := strconv.Itoa(int(p.AuthorityType))
	option, newAuthority := optionalPubkey(p.NewAuthority)
	return core.Args{
		AuthorityType:      &authorityType,
		NewAuthorityOption: &option,
		NewAuthority:       newAuthority,
	}
}

type ownerPayload struct {
	Owner types.Pubkey
}

func (p *ownerPayload) toArgs() core.Args {
	owner := p.Owner.String()
	return core.Args{Owner: &owner}
}

type extensionTypePayload struct {
	ExtensionType uint8
}

func (p *extensionTypePayload) toArgs() core.Args {
	return core.Args{ExtensionType: &p.ExtensionType}
}

// uiAmountPayload 按原始位读取 f64，borsh 的 float 解码拒绝 NaN
type uiAmountPayload struct {
	UiAmountBits uint64
}

func (p *uiAmountPayload) toArgs() core.Args {
	v := core.UiAmount(math.Float64frombits(p.UiAmountBits))
	return core.Args{UiAmount: &v}
}

// optionalPubkey 返回 option tag 与 base58 地址，缺省时地址为 nil
func optionalPubkey(p *types.Pubkey) (uint8, *string) {
	if p == nil {
		return 0, nil
	}
	s := p.String()
	return 1, &s
}
