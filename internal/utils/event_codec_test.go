package utils

import (
	"math"
	"testing"

	"spl-token-indexer-sol/internal/logic/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Slot uint64   `json:"slot"`
	Tags []string `json:"tags"`
}

func TestEncodeDecodeEvent(t *testing.T) {
	data, err := EncodeEvent(EventTypeTokenInstruction, &sample{Slot: 7, Tags: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0}, data[:4])
	assert.JSONEq(t, `{"slot":7,"tags":["a"]}`, string(data[4:]))

	var out sample
	typ, err := DecodeEvent(data, &out)
	require.NoError(t, err)
	assert.Equal(t, EventTypeTokenInstruction, typ)
	assert.Equal(t, uint64(7), out.Slot)
}

func TestDecodeEventShort(t *testing.T) {
	var out sample
	_, err := DecodeEvent([]byte{1, 0}, &out)
	assert.ErrorIs(t, err, ErrShortEventPayload)
}

func TestEncodeEventUiAmount(t *testing.T) {
	cases := []struct {
		name string
		v    float64
		wire string
	}{
		{"finite", 1.25, `1.25`},
		{"+inf", math.Inf(1), `"Infinity"`},
		{"-inf", math.Inf(-1), `"-Infinity"`},
		{"nan", math.NaN(), `"NaN"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount := core.UiAmount(tc.v)
			in := []*core.EventRecord{{TxID: "sig", Args: core.Args{UiAmount: &amount}}}

			data, err := EncodeEvent(EventTypeTokenInstruction, in)
			require.NoError(t, err)
			assert.Contains(t, string(data[4:]), `"ui_amount":`+tc.wire)

			var out []*core.EventRecord
			_, err = DecodeEvent(data, &out)
			require.NoError(t, err)
			require.Len(t, out, 1)
			require.NotNil(t, out[0].Args.UiAmount)
			got := float64(*out[0].Args.UiAmount)
			if math.IsNaN(tc.v) {
				assert.True(t, math.IsNaN(got))
			} else {
				assert.Equal(t, tc.v, got)
			}
		})
	}
}

func TestUiAmountRejectsUnknownString(t *testing.T) {
	var a core.UiAmount
	assert.Error(t, a.UnmarshalJSON([]byte(`"inf"`)))
}
