package collector

import (
	"context"
	"sync"
)

// Map runs fn over items with at most workers goroutines and returns the
// results in input order. workers <= 1 runs sequentially in the caller.
// ⭐ SSOT: 종목 단위 병렬 처리는 이 함수만 사용 (출력 순서 = 입력 순서)
//
// Items not started before ctx is cancelled are left as the zero R; fn is
// expected to observe ctx itself for items already in flight.
func Map[T, R any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, index int, item T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}

	if workers <= 1 {
		for i, item := range items {
			if ctx.Err() != nil {
				break
			}
			results[i] = fn(ctx, i, item)
		}
		return results
	}

	if workers > len(items) {
		workers = len(items)
	}

	indexCh := make(chan int, len(items))
	var wg sync.WaitGroup

	// Start workers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				if ctx.Err() != nil {
					continue
				}
				// 각 워커는 고유 인덱스에만 기록 → 락 불필요
				results[i] = fn(ctx, i, items[i])
			}
		}()
	}

	for i := range items {
		indexCh <- i
	}
	close(indexCh)

	wg.Wait()
	return results
}
