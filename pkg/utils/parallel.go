package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelMap 并发执行 fn，结果顺序与输入一致。
// workers <= 1 或只有一个元素时直接串行执行，省去协程开销。
func ParallelMap[T any, R any](input []T, workers int, fn func(T) R) []R {
	result := make([]R, len(input))
	if len(input) == 0 {
		return result
	}
	if workers <= 1 || len(input) == 1 {
		for i, v := range input {
			result[i] = fn(v)
		}
		return result
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, v := range input {
		g.Go(func() error {
			result[i] = fn(v)
			return nil
		})
	}
	_ = g.Wait()
	return result
}

// ParallelMapErr 与 ParallelMap 相同，但任意一个任务出错时取消其余任务并返回第一个错误
func ParallelMapErr[T any, R any](ctx context.Context, input []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	result := make([]R, len(input))
	if len(input) == 0 {
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, v := range input {
		g.Go(func() error {
			r, err := fn(gctx, v)
			if err != nil {
				return err
			}
			result[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
