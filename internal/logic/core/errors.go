package core

import (
	"errors"
	"fmt"
)

// 区块级致命错误：整个区块不产出任何事件
var (
	ErrMissingBlockTimestamp  = errors.New("block timestamp missing")
	ErrMissingMessage         = errors.New("transaction message missing")
	ErrMissingTransactionMeta = errors.New("transaction meta missing")
)

// 交易级错误：该交易不产出事件，继续处理下一笔
var (
	ErrUnresolvedAccountIndex = errors.New("account index out of resolved range")
	ErrLookupIndexOutOfRange  = errors.New("lookup table index out of range")
	ErrInvalidAccountKey      = errors.New("invalid account key length")
)

// 指令级错误：仅跳过当前指令
var ErrMalformedInstructionPayload = errors.New("malformed instruction payload")

// TxError 附带交易定位信息
type TxError struct {
	TxIndex uint64
	TxID    string
	Err     error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("tx %d (%s): %v", e.TxIndex, e.TxID, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// IsTxFatal 判断错误是否只影响单笔交易
func IsTxFatal(err error) bool {
	return errors.Is(err, ErrUnresolvedAccountIndex) ||
		errors.Is(err, ErrLookupIndexOutOfRange) ||
		errors.Is(err, ErrInvalidAccountKey)
}

// IsBlockFatal 区块结构缺失，重放同一区块也不会成功
func IsBlockFatal(err error) bool {
	return errors.Is(err, ErrMissingBlockTimestamp) ||
		errors.Is(err, ErrMissingMessage) ||
		errors.Is(err, ErrMissingTransactionMeta)
}
