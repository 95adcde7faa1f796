package consts

// GrpcAccountInclude 构造 gRPC 区块订阅过滤器。
// 除目标 program 外还需要 ALT program，否则同块内的地址表扩展会漏掉。
func GrpcAccountInclude(targetProgram string) []string {
	include := []string{targetProgram, AddressLookupTableProgramStr}
	if targetProgram == AddressLookupTableProgramStr {
		return include[:1]
	}
	return include
}
