package types

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Signature 交易签名，第一个签名即交易 ID
type Signature [64]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != 64 {
		return Signature{}, fmt.Errorf("invalid signature length: got %d, want 64", len(b))
	}
	var sig Signature
	copy(sig[:], b)
	return sig, nil
}

func SignatureFromBase58(s string) (Signature, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return Signature{}, fmt.Errorf("failed to decode base58 signature %q: %w", s, err)
	}
	return SignatureFromBytes(data)
}
