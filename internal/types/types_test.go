package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

func TestPubkeyBase58(t *testing.T) {
	p, err := TryPubkeyFromBase58(tokenProgram)
	require.NoError(t, err)
	assert.Equal(t, tokenProgram, p.String())
	assert.False(t, p.IsZero())

	_, err = TryPubkeyFromBase58("abc")
	assert.Error(t, err)
	_, err = TryPubkeyFromBase58("0OIl")
	assert.Error(t, err)

	assert.Panics(t, func() { PubkeyFromBase58("not-base58!") })
	assert.Equal(t, "11111111111111111111111111111111", Pubkey{}.String())
}

func TestPubkeyFromBytes(t *testing.T) {
	_, err := PubkeyFromBytes(make([]byte, 31))
	assert.Error(t, err)

	p, err := PubkeyFromBytes(make([]byte, 32))
	require.NoError(t, err)
	assert.True(t, p.IsZero())
}

func TestSignature(t *testing.T) {
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	sig, err := SignatureFromBytes(raw)
	require.NoError(t, err)

	back, err := SignatureFromBase58(sig.String())
	require.NoError(t, err)
	assert.Equal(t, sig, back)

	_, err = SignatureFromBytes(raw[:10])
	assert.Error(t, err)
}
