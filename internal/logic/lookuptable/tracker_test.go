package lookuptable

import (
	"context"
	"encoding/binary"
	"testing"

	"spl-token-indexer-sol/internal/consts"
	"spl-token-indexer-sol/internal/logic/core"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = b
	}
	return k
}

func extendData(addrs ...[]byte) []byte {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[:4], altExtendLookupTable)
	binary.LittleEndian.PutUint64(data[4:12], uint64(len(addrs)))
	for _, a := range addrs {
		data = append(data, a...)
	}
	return data
}

func discriminator(d uint32) []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, d)
	return data
}

func altTx(failed bool, ixs ...core.Instruction) *core.Transaction {
	return &core.Transaction{
		Signatures: [][]byte{make([]byte, 64)},
		Message: &core.Message{
			// 0: 地址表, 1: authority, 2: ALT program
			AccountKeys:  [][]byte{key(7), key(8), base58Decode(consts.AddressLookupTableProgramStr)},
			Instructions: ixs,
		},
		Meta: &core.TransactionMeta{Failed: failed},
	}
}

func base58Decode(s string) []byte {
	b, _ := base58.Decode(s)
	return b
}

func TestTracker_CreateExtendClose(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker := NewTracker(store)
	table := base58.Encode(key(7))

	block := &core.Block{Transactions: []*core.Transaction{
		altTx(false, core.Instruction{ProgramIDIndex: 2, Accounts: []byte{0, 1}, Data: discriminator(altCreateLookupTable)}),
		altTx(false, core.Instruction{ProgramIDIndex: 2, Accounts: []byte{0, 1}, Data: extendData(key(1), key(2))}),
		altTx(true, core.Instruction{ProgramIDIndex: 2, Accounts: []byte{0, 1}, Data: extendData(key(3))}),
	}}

	stats, err := tracker.Apply(ctx, block)
	require.NoError(t, err)
	assert.Equal(t, TrackStats{Created: 1, Extended: 1, Added: 2}, stats)

	got, found, err := store.GetResolved(ctx, consts.LookupTableKey(table))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{base58.Encode(key(1)), base58.Encode(key(2))}, got)

	closeBlock := &core.Block{Transactions: []*core.Transaction{
		altTx(false, core.Instruction{ProgramIDIndex: 2, Accounts: []byte{0, 1}, Data: discriminator(altCloseLookupTable)}),
	}}
	stats, err = tracker.Apply(ctx, closeBlock)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Closed)
	_, found, _ = store.GetResolved(ctx, consts.LookupTableKey(table))
	assert.False(t, found)
}

func TestTracker_InnerExtend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	tx := altTx(false)
	tx.Meta.InnerInstructions = []core.InnerInstructionGroup{{
		Index:        0,
		Instructions: []core.Instruction{{ProgramIDIndex: 2, Accounts: []byte{0}, Data: extendData(key(5))}},
	}}

	stats, err := NewTracker(store).Apply(ctx, &core.Block{Transactions: []*core.Transaction{tx}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Extended)
}

func TestParseExtend(t *testing.T) {
	got, ok := parseExtend(extendData(key(1))[4:])
	require.True(t, ok)
	assert.Len(t, got, 1)

	_, ok = parseExtend([]byte{1, 2})
	assert.False(t, ok)

	// 声明 2 个地址但只有 1 个
	bad := extendData(key(1))[4:]
	binary.LittleEndian.PutUint64(bad[:8], 2)
	_, ok = parseExtend(bad)
	assert.False(t, ok)
}
