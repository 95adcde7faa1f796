package txadapter

import (
	"testing"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptGrpcBlock(t *testing.T) {
	block := &pb.SubscribeUpdateBlock{
		Slot:       101,
		ParentSlot: 100,
		BlockTime:  &pb.UnixTimestamp{Timestamp: 1700000000},
		Blockhash:  "not-base58-0OIl",
		Transactions: []*pb.SubscribeUpdateTransactionInfo{
			{
				Index: 3,
				Transaction: &pb.Transaction{
					Signatures: [][]byte{make([]byte, 64)},
					Message: &pb.Message{
						AccountKeys: [][]byte{make([]byte, 32)},
						Instructions: []*pb.CompiledInstruction{
							{ProgramIdIndex: 0, Accounts: []byte{0}, Data: []byte{3}},
						},
						AddressTableLookups: []*pb.MessageAddressTableLookup{
							{AccountKey: make([]byte, 32), WritableIndexes: []byte{1}, ReadonlyIndexes: []byte{2}},
						},
					},
				},
				Meta: &pb.TransactionStatusMeta{
					InnerInstructions: []*pb.InnerInstructions{
						{Index: 0, Instructions: []*pb.InnerInstruction{{ProgramIdIndex: 0, Data: []byte{7}}}},
					},
				},
			},
			{Index: 4, IsVote: true},
			{
				Index:       5,
				Signature:   make([]byte, 64),
				Transaction: &pb.Transaction{},
				Meta:        &pb.TransactionStatusMeta{Err: &pb.TransactionError{Err: []byte{1}}},
			},
		},
	}

	got, err := AdaptGrpcBlock(block)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), got.Slot)
	assert.Equal(t, uint64(100), got.ParentSlot)
	require.NotNil(t, got.BlockTime)
	assert.Equal(t, int64(1700000000), *got.BlockTime)
	require.Len(t, got.Transactions, 2, "投票交易被过滤")

	tx := got.Transactions[0]
	assert.Equal(t, uint64(3), tx.Index)
	require.NotNil(t, tx.Message)
	require.Len(t, tx.Message.Instructions, 1)
	assert.Equal(t, []byte{3}, tx.Message.Instructions[0].Data)
	require.Len(t, tx.Message.AddressTableLookups, 1)
	assert.Equal(t, []byte{1}, tx.Message.AddressTableLookups[0].WritableIndexes)
	require.NotNil(t, tx.Meta)
	assert.False(t, tx.Meta.Failed)
	require.Len(t, tx.Meta.InnerInstructions, 1)
	assert.Equal(t, []byte{7}, tx.Meta.InnerInstructions[0].Instructions[0].Data)

	failed := got.Transactions[1]
	assert.Nil(t, failed.Message, "缺少 message 原样保留，由 walker 判定")
	assert.True(t, failed.Meta.Failed)
	assert.Len(t, failed.Signatures, 1)
}

func TestAdaptGrpcBlock_MissingTimestamp(t *testing.T) {
	got, err := AdaptGrpcBlock(&pb.SubscribeUpdateBlock{Slot: 1})
	require.NoError(t, err)
	assert.Nil(t, got.BlockTime)

	_, err = AdaptGrpcBlock(nil)
	assert.Error(t, err)
}
