package primes

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Default number of values handed to a worker at a time
const defaultChunkSize = 4096

// chunk is a contiguous slice of the input, tagged with its position so the
// collector can restore input order.
type chunk struct {
	index  int
	values []int64
}

// parallelFilter returns the values for which keep reports true, in input
// order. The input is cut into chunks that a pool of workers filters
// independently; a collector goroutine gathers the filtered chunks.
//
// workers: Number of parallel workers. If 0 or negative, uses runtime.NumCPU().
func parallelFilter(values []int64, workers, chunkSize int, keep func(int64) bool) ([]int64, error) {
	if len(values) == 0 {
		return nil, nil
	}

	workerPoolSize := workers
	if workerPoolSize <= 0 {
		workerPoolSize = runtime.NumCPU()
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	numChunks := (len(values) + chunkSize - 1) / chunkSize

	chunks := make(chan chunk, numChunks)
	results := make(chan chunk, workerPoolSize)

	// Start worker pool
	var eg errgroup.Group
	for w := 1; w <= workerPoolSize; w++ {
		eg.Go(func() error {
			return filterWorker(chunks, results, keep)
		})
	}

	// Collect results in a separate goroutine
	filtered := make([][]int64, numChunks)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for c := range results {
			filtered[c.index] = c.values
		}
	}()

	for i := 0; i < numChunks; i++ {
		start := i * chunkSize
		end := min(start+chunkSize, len(values))
		chunks <- chunk{index: i, values: values[start:end]}
	}
	close(chunks)

	err := eg.Wait()
	close(results)
	<-done
	if err != nil {
		return nil, err
	}

	total := 0
	for _, f := range filtered {
		total += len(f)
	}
	out := make([]int64, 0, total)
	for _, f := range filtered {
		out = append(out, f...)
	}
	return out, nil
}

func filterWorker(chunks <-chan chunk, results chan<- chunk, keep func(int64) bool) error {
	for c := range chunks {
		kept := make([]int64, 0, len(c.values))
		for _, v := range c.values {
			if keep(v) {
				kept = append(kept, v)
			}
		}
		results <- chunk{index: c.index, values: kept}
	}
	return nil
}

// notDivisibleBy returns a filter rejecting any n that an element of divisors
// divides. divisors must be ascending; scanning stops once p*p > n.
func notDivisibleBy(divisors []int64) func(int64) bool {
	return func(n int64) bool {
		for _, p := range divisors {
			if p*p > n {
				return true
			}
			if n%p == 0 {
				return false
			}
		}
		return true
	}
}
