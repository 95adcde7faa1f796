package lookuptable

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, found, err := s.GetResolved(ctx, "table:T1")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, s.Append(ctx, "T1", []string{"A", "B"}))
			require.NoError(t, s.Append(ctx, "T1", []string{"C"}))

			got, found, err := s.GetResolved(ctx, "table:T1")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []string{"A", "B", "C"}, got)

			require.NoError(t, s.Delete(ctx, "T1"))
			_, found, err = s.GetResolved(ctx, "table:T1")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestMemoryStore_AppendDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Put("T", []string{"A"})

	before, _, _ := s.GetResolved(ctx, "table:T")
	require.NoError(t, s.Append(ctx, "T", []string{"B"}))

	assert.Equal(t, []string{"A"}, before)
	assert.Equal(t, 1, s.Len())
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, _, err := s.GetResolved(context.Background(), "table:T")
	assert.Error(t, err)
}
