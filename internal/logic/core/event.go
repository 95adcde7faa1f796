package core

import (
	"fmt"
	"math"

	"github.com/zeromicro/go-zero/core/jsonx"
)

// EventRecord 每条命中目标 program 的指令（主指令或 inner 指令）产出一条
type EventRecord struct {
	BlockDate             string        `json:"block_date"`
	BlockTime             int64         `json:"block_time"`
	TxID                  string        `json:"tx_id"`
	Dapp                  string        `json:"dapp"`
	BlockSlot             uint64        `json:"block_slot"`
	InstructionIndex      uint32        `json:"instruction_index"`
	IsInnerInstruction    bool          `json:"is_inner_instruction"`
	InnerInstructionIndex uint32        `json:"inner_instruction_index"`
	InstructionType       string        `json:"instruction_type"`
	InputAccounts         InputAccounts `json:"input_accounts"`
	Args                  Args          `json:"args"`
}

// InputAccounts 按角色命名的账户，未出现的角色保持为空
type InputAccounts struct {
	Mint                     string   `json:"mint,omitempty"`
	RentSysvar               string   `json:"rent_sysvar,omitempty"`
	Account                  string   `json:"account,omitempty"`
	Owner                    string   `json:"owner,omitempty"`
	SignerAccounts           []string `json:"signer_accounts,omitempty"`
	Source                   string   `json:"source,omitempty"`
	Destination              string   `json:"destination,omitempty"`
	Delegate                 string   `json:"delegate,omitempty"`
	Authority                string   `json:"authority,omitempty"`
	Payer                    string   `json:"payer,omitempty"`
	FundRelocationSysProgram string   `json:"fund_relocation_sys_program,omitempty"`
	FundingAccount           string   `json:"funding_account,omitempty"`
	MintFundingSysProgram    string   `json:"mint_funding_sys_program,omitempty"`
}

// Args 指令参数，字段是否出现取决于指令类型
type Args struct {
	Amount                *uint64   `json:"amount,omitempty"`
	Decimals              *uint8    `json:"decimals,omitempty"`
	MintAuthority         *string   `json:"mint_authority,omitempty"`
	FreezeAuthorityOption *uint8    `json:"freeze_authority_option,omitempty"`
	FreezeAuthority       *string   `json:"freeze_authority,omitempty"`
	Status                *uint8    `json:"status,omitempty"`
	AuthorityType         *string   `json:"authority_type,omitempty"`
	NewAuthorityOption    *uint8    `json:"new_authority_option,omitempty"`
	NewAuthority          *string   `json:"new_authority,omitempty"`
	Owner                 *string   `json:"owner,omitempty"`
	ExtensionType         *uint8    `json:"extension_type,omitempty"`
	UiAmount              *UiAmount `json:"ui_amount,omitempty"`
}

// UiAmount UiAmountToAmount 的 f64 参数。
// NaN / ±Inf 是合法的链上输入，JSON 中分别写作 "NaN"、"Infinity"、"-Infinity"
type UiAmount float64

func (a UiAmount) MarshalJSON() ([]byte, error) {
	f := float64(a)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	}
	return jsonx.Marshal(f)
}

func (a *UiAmount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := jsonx.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN":
			*a = UiAmount(math.NaN())
		case "Infinity":
			*a = UiAmount(math.Inf(1))
		case "-Infinity":
			*a = UiAmount(math.Inf(-1))
		default:
			return fmt.Errorf("invalid ui_amount %q", s)
		}
		return nil
	}

	var f float64
	if err := jsonx.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = UiAmount(f)
	return nil
}
