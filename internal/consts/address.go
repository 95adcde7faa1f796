package consts

import "spl-token-indexer-sol/internal/types"

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	SystemProgramStr             = "11111111111111111111111111111111"
	TokenProgramStr              = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	TokenProgram2022Str          = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AddressLookupTableProgramStr = "AddressLookupTab1e1111111111111111111111111"
	ComputeBudgetProgramIdStr    = "ComputeBudget111111111111111111111111111111"

	RentSysvarStr = "SysvarRent111111111111111111111111111111111"
)

// 公钥形式，用于链上比对
var (
	SystemProgram             = types.PubkeyFromBase58(SystemProgramStr)
	TokenProgram              = types.PubkeyFromBase58(TokenProgramStr)
	TokenProgram2022          = types.PubkeyFromBase58(TokenProgram2022Str)
	AddressLookupTableProgram = types.PubkeyFromBase58(AddressLookupTableProgramStr)
)
