package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configura el procesamiento paralelo.
type ParallelOptions struct {
	// MaxWorkers es el número máximo de trabajadores en paralelo.
	// 1 means fully sequential, which is the default for UCAS fetches.
	MaxWorkers int
}

func DefaultOptions() ParallelOptions {
	return ParallelOptions{MaxWorkers: 1}
}

// ProcessParallel runs itemFunc for every item under a bounded worker pool
// and returns the results in input order. Errors are collected per item and
// never abort siblings.
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	jobs := make(chan int, len(items))
	results := make(chan struct {
		index  int
		result R
		err    error
	}, len(items))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jobIndex := range jobs {
				select {
				case <-ctx.Done():
					results <- struct {
						index  int
						result R
						err    error
					}{jobIndex, *new(R), ctx.Err()}
				default:
					result, err := itemFunc(ctx, jobIndex, items[jobIndex])
					results <- struct {
						index  int
						result R
						err    error
					}{jobIndex, result, err}
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	resultList := make([]R, len(items))
	errorList := make([]error, len(items))
	for i := 0; i < len(items); i++ {
		res := <-results
		resultList[res.index] = res.result
		errorList[res.index] = res.err
	}

	return resultList, errorList
}

// ForEach ejecuta itemFunc para cada elemento, sin recolectar resultados.
func ForEach[T any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) error,
) []error {
	_, errs := ProcessParallel(ctx, items, opts, func(ctx context.Context, index int, item T) (struct{}, error) {
		return struct{}{}, itemFunc(ctx, index, item)
	})
	return errs
}
