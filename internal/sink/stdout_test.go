package sink

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"spl-token-indexer-sol/internal/config"
	"spl-token-indexer-sol/internal/logic/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdoutSinkWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdoutSink(&buf)
	require.NoError(t, s.Publish(context.Background(), 100, natsEvents()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"tx_id":"sigA"`)
	assert.Contains(t, lines[0], `"amount":10`)
	assert.Contains(t, lines[2], `"instruction_type":"Unknown Instruction"`)
	assert.NoError(t, s.Close())
}

func TestStdoutSinkNonFiniteUiAmount(t *testing.T) {
	inf := core.UiAmount(math.Inf(1))
	nan := core.UiAmount(math.NaN())
	events := []*core.EventRecord{
		{TxID: "sigA", InstructionType: "UiAmountToAmount", Args: core.Args{UiAmount: &inf}},
		{TxID: "sigA", InstructionType: "UiAmountToAmount", Args: core.Args{UiAmount: &nan}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewStdoutSink(&buf).Publish(context.Background(), 100, events))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"ui_amount":"Infinity"`)
	assert.Contains(t, lines[1], `"ui_amount":"NaN"`)
}

func TestStdoutSinkCancelled(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewStdoutSink(&buf).Publish(ctx, 1, natsEvents()), context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestNewEventSink(t *testing.T) {
	s, err := NewEventSink(config.SinkConfig{Type: "stdout"}, config.TimeConfig{})
	require.NoError(t, err)
	assert.IsType(t, &StdoutSink{}, s)

	_, err = NewEventSink(config.SinkConfig{Type: "file"}, config.TimeConfig{})
	assert.Error(t, err)
}
