package grpc

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"spl-token-indexer-sol/internal/consts"
	"spl-token-indexer-sol/internal/logic/lookuptable"
	"spl-token-indexer-sol/internal/logic/progress"
	"spl-token-indexer-sol/internal/logic/walker"
	"spl-token-indexer-sol/internal/sink"
	"spl-token-indexer-sol/internal/svc"

	"github.com/prometheus/client_golang/prometheus"
	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gapRecorder struct {
	ranges [][2]uint64
}

func (g *gapRecorder) Submit(from, to uint64) {
	g.ranges = append(g.ranges, [2]uint64{from, to})
}

func key(b byte) []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = b
	}
	return k
}

func newTestProcessor(t *testing.T, out *bytes.Buffer, gaps GapReporter) *BlockProcessor {
	t.Helper()
	tables := lookuptable.NewMemoryStore()
	sc := &svc.GrpcServiceContext{
		Tables:   tables,
		Tracker:  lookuptable.NewTracker(tables),
		Walker:   walker.NewBlockWalker(walker.Options{LegacyPositions: true, Workers: 2}, tables),
		Sink:     sink.NewStdoutSink(out),
		Progress: progress.NewProgressManager(progress.NewMemoryProgressStore(0)),
		Registry: prometheus.NewRegistry(),
	}
	p := NewBlockProcessor(sc, make(chan *pb.SubscribeUpdateBlock, 1), gaps)
	t.Cleanup(p.Stop)
	return p
}

func transferBlock(slot uint64) *pb.SubscribeUpdateBlock {
	data := make([]byte, 9)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:], 500)
	return &pb.SubscribeUpdateBlock{
		Slot:       slot,
		ParentSlot: slot - 1,
		BlockTime:  &pb.UnixTimestamp{Timestamp: 1700000000},
		Transactions: []*pb.SubscribeUpdateTransactionInfo{
			{
				Index: 0,
				Transaction: &pb.Transaction{
					Signatures: [][]byte{bytes.Repeat([]byte{7}, 64)},
					Message: &pb.Message{
						AccountKeys: [][]byte{key(1), key(2), key(3), consts.TokenProgram[:]},
						Instructions: []*pb.CompiledInstruction{
							{ProgramIdIndex: 3, Accounts: []byte{1, 2, 0}, Data: data},
						},
					},
				},
				Meta: &pb.TransactionStatusMeta{},
			},
		},
	}
}

func TestProcessBlockPublishesAndMarks(t *testing.T) {
	var out bytes.Buffer
	p := newTestProcessor(t, &out, nil)
	ctx := context.Background()

	require.NoError(t, p.ProcessBlock(ctx, transferBlock(200)))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"instruction_type":"Transfer"`)
	assert.Contains(t, lines[0], `"amount":500`)
	assert.Contains(t, lines[0], `"block_slot":199`)

	should, err := p.sc.Progress.ShouldProcessSlot(ctx, 200)
	require.NoError(t, err)
	assert.False(t, should)

	// 重复推送的 slot 不再输出
	out.Reset()
	require.NoError(t, p.ProcessBlock(ctx, transferBlock(200)))
	assert.Zero(t, out.Len())
}

func TestProcessBlockMissingTimestampMarksInvalid(t *testing.T) {
	var out bytes.Buffer
	p := newTestProcessor(t, &out, nil)
	ctx := context.Background()

	block := transferBlock(300)
	block.BlockTime = nil
	assert.Error(t, p.ProcessBlock(ctx, block))
	assert.Zero(t, out.Len())

	should, err := p.sc.Progress.ShouldProcessSlot(ctx, 300)
	require.NoError(t, err)
	assert.False(t, should)
}

func TestTrackGap(t *testing.T) {
	gaps := &gapRecorder{}
	var out bytes.Buffer
	p := newTestProcessor(t, &out, gaps)

	p.trackGap(10)
	p.trackGap(11)
	p.trackGap(15)
	p.trackGap(13) // 乱序到达不回退
	p.trackGap(16)
	assert.Equal(t, [][2]uint64{{12, 14}}, gaps.ranges)
	assert.Equal(t, uint64(16), p.lastSlot)
}
