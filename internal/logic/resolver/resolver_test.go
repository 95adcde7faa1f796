package resolver

import (
	"context"
	"errors"
	"testing"

	"spl-token-indexer-sol/internal/logic/core"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	tables map[string][]string
	err    error
	calls  int
}

func (f *fakeRepo) GetResolved(_ context.Context, key string) ([]string, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	t, ok := f.tables[key]
	return t, ok, nil
}

func key(b byte) []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = b
	}
	return k
}

func TestResolve_StaticOnly(t *testing.T) {
	msg := &core.Message{AccountKeys: [][]byte{key(1), key(2)}}
	got, err := Resolve(context.Background(), msg, &fakeRepo{})
	require.NoError(t, err)
	assert.Equal(t, []string{base58.Encode(key(1)), base58.Encode(key(2))}, got)
}

func TestResolve_WritableBeforeReadonly(t *testing.T) {
	t1, t2 := key(10), key(11)
	repo := &fakeRepo{tables: map[string][]string{
		"table:" + base58.Encode(t1): {"X0", "X1", "X2"},
		"table:" + base58.Encode(t2): {"Y0", "Y1"},
	}}
	msg := &core.Message{
		AccountKeys: [][]byte{key(1)},
		AddressTableLookups: []core.AddressTableLookup{
			{AccountKey: t1, WritableIndexes: []byte{2, 0}, ReadonlyIndexes: []byte{1}},
			{AccountKey: t2, WritableIndexes: []byte{1}, ReadonlyIndexes: []byte{0}},
		},
	}

	got, err := Resolve(context.Background(), msg, repo)
	require.NoError(t, err)
	assert.Equal(t, []string{base58.Encode(key(1)), "X2", "X0", "Y1", "X1", "Y0"}, got)
}

func TestResolve_AbsentTableContributesNothing(t *testing.T) {
	msg := &core.Message{
		AccountKeys: [][]byte{key(1), key(2), key(3)},
		AddressTableLookups: []core.AddressTableLookup{
			{AccountKey: key(20), WritableIndexes: []byte{0, 1}, ReadonlyIndexes: []byte{2}},
		},
	}
	got, err := Resolve(context.Background(), msg, &fakeRepo{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestResolve_IndexOutOfRange(t *testing.T) {
	tbl := key(10)
	repo := &fakeRepo{tables: map[string][]string{"table:" + base58.Encode(tbl): {"X0"}}}
	msg := &core.Message{
		AccountKeys:         [][]byte{key(1)},
		AddressTableLookups: []core.AddressTableLookup{{AccountKey: tbl, ReadonlyIndexes: []byte{1}}},
	}
	_, err := Resolve(context.Background(), msg, repo)
	assert.ErrorIs(t, err, core.ErrLookupIndexOutOfRange)
	assert.True(t, core.IsTxFatal(err))
}

func TestResolve_RepoError(t *testing.T) {
	boom := errors.New("redis down")
	msg := &core.Message{AddressTableLookups: []core.AddressTableLookup{{AccountKey: key(10)}}}
	_, err := Resolve(context.Background(), msg, &fakeRepo{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.False(t, core.IsTxFatal(err))
}

func TestResolve_InvalidKeyLength(t *testing.T) {
	msg := &core.Message{AccountKeys: [][]byte{key(1)[:31]}}
	_, err := Resolve(context.Background(), msg, &fakeRepo{})
	assert.ErrorIs(t, err, core.ErrInvalidAccountKey)
}

func TestBlockCache(t *testing.T) {
	repo := &fakeRepo{tables: map[string][]string{"table:a": {"A"}}}
	cache := NewBlockCache(repo)

	for i := 0; i < 3; i++ {
		got, found, err := cache.GetResolved(context.Background(), "table:a")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"A"}, got)

		_, found, err = cache.GetResolved(context.Background(), "table:missing")
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, 2, repo.calls)
}
