package consts

import "runtime"

// CpuCount 表示逻辑 CPU 核心数，用于控制并发任务调度上限
var CpuCount = runtime.NumCPU()

// LookupTableKeyPrefix 地址表在仓库中的 key 前缀，完整 key 为 "table:<base58 地址>"
const LookupTableKeyPrefix = "table:"

func LookupTableKey(table string) string {
	return LookupTableKeyPrefix + table
}
