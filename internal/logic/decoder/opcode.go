package decoder

import (
	"spl-token-indexer-sol/internal/logic/core"

	sdktoken "github.com/blocto/solana-go-sdk/program/token"
)

// SplToken: https://github.com/solana-program/token/blob/main/program/src/instruction.rs
// 0~20 沿用 sdk 定义，21 之后为 Token-2022 扩展指令
const (
	InstructionGetAccountDataSize sdktoken.Instruction = iota + 21
	InstructionInitializeImmutableOwner
	InstructionAmountToUiAmount
	InstructionUiAmountToAmount
	InstructionInitializeMintCloseAuthority
	InstructionTransferFeeExtension
	InstructionConfidentialTransferExtension
	InstructionDefaultAccountStateExtension
	InstructionReallocate
	InstructionMemoTransferExtension
	InstructionCreateNativeMint
	InstructionInitializeNonTransferableMint
	InstructionInterestBearingMintExtension
)

// UnknownInstructionName 未登记 opcode 的 instruction_type
const UnknownInstructionName = "Unknown Instruction"

type fieldKind uint8

const (
	fieldU8 fieldKind = iota
	fieldU64
	fieldF64
	fieldPubkey
	fieldOptionPubkey
)

type opcodeEntry struct {
	name       string
	layout     []fieldKind
	roles      []core.Role
	newPayload func() payload
}

var (
	layoutNone        = []fieldKind(nil)
	layoutAmount      = []fieldKind{fieldU64}
	layoutChecked     = []fieldKind{fieldU64, fieldU8}
	layoutInitMint    = []fieldKind{fieldU8, fieldPubkey, fieldOptionPubkey}
	layoutStatus      = []fieldKind{fieldU8}
	layoutOwner       = []fieldKind{fieldPubkey}
	layoutSetAuth     = []fieldKind{fieldU8, fieldOptionPubkey}
	layoutExtension   = []fieldKind{fieldU8}
	layoutUiAmount    = []fieldKind{fieldF64}
	rolesMint         = []core.Role{core.RoleMint}
	rolesAccount      = []core.Role{core.RoleAccount}
	rolesAccountMintA = []core.Role{core.RoleAccount, core.RoleMint, core.RoleAuthority}
	rolesMintAccountA = []core.Role{core.RoleMint, core.RoleAccount, core.RoleAuthority}
)

// opcodeTable 静态分派表：opcode → 名称、参数布局、账户角色
var opcodeTable = map[sdktoken.Instruction]opcodeEntry{
	sdktoken.InstructionInitializeMint: {
		name: "InitializeMint", layout: layoutInitMint,
		roles:      []core.Role{core.RoleMint, core.RoleRentSysvar},
		newPayload: func() payload { return &initializeMintPayload{} },
	},
	sdktoken.InstructionInitializeAccount: {
		name: "InitializeAccount", layout: layoutNone,
		roles: []core.Role{core.RoleAccount, core.RoleMint, core.RoleOwner, core.RoleRentSysvar},
	},
	sdktoken.InstructionInitializeMultisig: {
		name: "InitializeMultisig", layout: layoutStatus,
		roles:      []core.Role{core.RoleAccount, core.RoleRentSysvar},
		newPayload: func() payload { return &statusPayload{} },
	},
	sdktoken.InstructionTransfer: {
		name: "Transfer", layout: layoutAmount,
		roles:      []core.Role{core.RoleSource, core.RoleDestination, core.RoleAuthority},
		newPayload: func() payload { return &amountPayload{} },
	},
	sdktoken.InstructionApprove: {
		name: "Approve", layout: layoutAmount,
		roles:      []core.Role{core.RoleSource, core.RoleDelegate, core.RoleOwner},
		newPayload: func() payload { return &amountPayload{} },
	},
	sdktoken.InstructionRevoke: {
		name: "Revoke", layout: layoutNone,
		roles: []core.Role{core.RoleAccount, core.RoleOwner},
	},
	sdktoken.InstructionSetAuthority: {
		name: "SetAuthority", layout: layoutSetAuth,
		roles:      []core.Role{core.RoleAccount, core.RoleAuthority},
		newPayload: func() payload { return &setAuthorityPayload{} },
	},
	sdktoken.InstructionMintTo: {
		name: "MintTo", layout: layoutAmount,
		roles:      rolesMintAccountA,
		newPayload: func() payload { return &amountPayload{} },
	},
	sdktoken.InstructionBurn: {
		name: "Burn", layout: layoutAmount,
		roles:      rolesAccountMintA,
		newPayload: func() payload { return &amountPayload{} },
	},
	sdktoken.InstructionCloseAccount: {
		name: "CloseAccount", layout: layoutNone,
		roles: []core.Role{core.RoleAccount, core.RoleDestination, core.RoleOwner},
	},
	sdktoken.InstructionFreezeAccount: {
		name: "FreezeAccount", layout: layoutNone,
		roles: rolesAccountMintA,
	},
	sdktoken.InstructionThawAccount: {
		name: "ThawAccount", layout: layoutNone,
		roles: rolesAccountMintA,
	},
	sdktoken.InstructionTransferChecked: {
		name: "TransferChecked", layout: layoutChecked,
		roles:      []core.Role{core.RoleSource, core.RoleMint, core.RoleDestination, core.RoleAuthority},
		newPayload: func() payload { return &checkedPayload{} },
	},
	sdktoken.InstructionApproveChecked: {
		name: "ApproveChecked", layout: layoutChecked,
		roles:      []core.Role{core.RoleSource, core.RoleMint, core.RoleDelegate, core.RoleOwner},
		newPayload: func() payload { return &checkedPayload{} },
	},
	sdktoken.InstructionMintToChecked: {
		name: "MintToChecked", layout: layoutChecked,
		roles:      rolesMintAccountA,
		newPayload: func() payload { return &checkedPayload{} },
	},
	sdktoken.InstructionBurnChecked: {
		name: "BurnChecked", layout: layoutChecked,
		roles:      rolesAccountMintA,
		newPayload: func() payload { return &checkedPayload{} },
	},
	sdktoken.InstructionInitializeAccount2: {
		name: "InitializeAccount2", layout: layoutOwner,
		roles:      []core.Role{core.RoleAccount, core.RoleMint, core.RoleRentSysvar},
		newPayload: func() payload { return &ownerPayload{} },
	},
	sdktoken.InstructionSyncNative: {
		name: "SyncNative", layout: layoutNone,
		roles: rolesAccount,
	},
	sdktoken.InstructionInitializeAccount3: {
		name: "InitializeAccount3", layout: layoutOwner,
		roles:      []core.Role{core.RoleAccount, core.RoleMint},
		newPayload: func() payload { return &ownerPayload{} },
	},
	sdktoken.InstructionInitializeMultisig2: {
		name: "InitializeMultisig2", layout: layoutStatus,
		roles:      rolesAccount,
		newPayload: func() payload { return &statusPayload{} },
	},
	sdktoken.InstructionInitializeMint2: {
		name: "InitializeMint2", layout: layoutInitMint,
		roles:      rolesMint,
		newPayload: func() payload { return &initializeMintPayload{} },
	},
	InstructionGetAccountDataSize: {
		name: "GetAccountDataSize", layout: layoutExtension,
		roles:      rolesMint,
		newPayload: func() payload { return &extensionTypePayload{} },
	},
	InstructionInitializeImmutableOwner: {
		name: "InitializeImmutableOwner", layout: layoutNone,
		roles: rolesAccount,
	},
	InstructionAmountToUiAmount: {
		name: "AmountToUiAmount", layout: layoutAmount,
		roles:      rolesMint,
		newPayload: func() payload { return &amountPayload{} },
	},
	InstructionUiAmountToAmount: {
		name: "UiAmountToAmount", layout: layoutUiAmount,
		roles:      rolesMint,
		newPayload: func() payload { return &uiAmountPayload{} },
	},
	InstructionInitializeMintCloseAuthority: {
		name: "InitializeMintCloseAuthority", layout: layoutOwner,
		roles:      rolesMint,
		newPayload: func() payload { return &ownerPayload{} },
	},
	InstructionTransferFeeExtension: {
		name: "TransferFeeExtension", layout: layoutNone,
		roles: rolesMint,
	},
	InstructionConfidentialTransferExtension: {
		name: "ConfidentialTransferExtension", layout: layoutNone,
		roles: rolesMint,
	},
	InstructionDefaultAccountStateExtension: {
		name: "DefaultAccountStateExtension", layout: layoutNone,
		roles: rolesMint,
	},
	InstructionReallocate: {
		name: "Reallocate", layout: layoutNone,
		roles: []core.Role{core.RoleAccount, core.RolePayer, core.RoleFundRelocationSysProgram, core.RoleOwner},
	},
	InstructionMemoTransferExtension: {
		name: "MemoTransferExtension", layout: layoutNone,
		roles: []core.Role{core.RoleAccount, core.RoleOwner},
	},
	InstructionCreateNativeMint: {
		name: "CreateNativeMint", layout: layoutNone,
		roles: []core.Role{core.RoleFundingAccount, core.RoleMint, core.RoleMintFundingSysProgram},
	},
	InstructionInitializeNonTransferableMint: {
		name: "InitializeNonTransferableMint", layout: layoutNone,
		roles: rolesMint,
	},
	InstructionInterestBearingMintExtension: {
		name: "InterestBearingMintExtension", layout: layoutNone,
		roles: rolesMint,
	},
}
