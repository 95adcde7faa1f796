package utils

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMap(t *testing.T) {
	// 测试空输入
	t.Run("empty input", func(t *testing.T) {
		var emptyInput []int
		result := ParallelMap(emptyInput, 4, func(i int) int {
			return i * 2
		})
		assert.Empty(t, result)
	})

	// 测试单元素输入
	t.Run("single input", func(t *testing.T) {
		result := ParallelMap([]int{42}, 4, func(i int) int {
			return i * 2
		})
		assert.Equal(t, []int{84}, result)
	})

	// 测试多元素输入 - 确保顺序正确
	t.Run("multiple inputs with order", func(t *testing.T) {
		input := []int{1, 2, 3, 4, 5}
		result := ParallelMap(input, 3, func(i int) int {
			time.Sleep(time.Duration(rand.Intn(10)) * time.Millisecond)
			return i * 2
		})
		assert.Equal(t, []int{2, 4, 6, 8, 10}, result)
	})

	// 并发数不超过 workers
	t.Run("concurrency bounded", func(t *testing.T) {
		input := make([]int, 100)
		for i := range input {
			input[i] = i
		}

		var maxConcurrent, current int32
		ParallelMap(input, 10, func(i int) int {
			c := atomic.AddInt32(&current, 1)
			for {
				m := atomic.LoadInt32(&maxConcurrent)
				if c <= m || atomic.CompareAndSwapInt32(&maxConcurrent, m, c) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return i
		})
		assert.LessOrEqual(t, maxConcurrent, int32(10))
		assert.Greater(t, maxConcurrent, int32(1))
	})
}

func TestParallelMapErr(t *testing.T) {
	t.Run("ordered", func(t *testing.T) {
		out, err := ParallelMapErr(context.Background(), []int{3, 1, 2}, 2, func(_ context.Context, i int) (int, error) {
			return i * 10, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{30, 10, 20}, out)
	})

	t.Run("first error wins", func(t *testing.T) {
		boom := errors.New("boom")
		out, err := ParallelMapErr(context.Background(), []int{1, 2, 3}, 2, func(_ context.Context, i int) (int, error) {
			if i == 2 {
				return 0, boom
			}
			return i, nil
		})
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, out)
	})
}
