// Package emirp finds emirps: primes whose decimal reversal is a different
// prime.
//
// A Finder grows a shared primes.Cache to cover the requested limit, then
// classifies the candidate primes with a pool of workers and reduces the
// matches into a Summary.
package emirp

import (
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"emirps/internal/primes"
)

// Default number of candidates handed to a classification worker at a time
const defaultChunkSize = 2048

// Finder classifies primes from a shared cache. It is safe for concurrent use.
type Finder struct {
	cache            *primes.Cache
	workers          int
	chunkSize        int
	progressCallback func(string)
}

// Option configures a Finder.
type Option func(*Finder)

// WithWorkers sets the number of classification workers.
// Zero or negative means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(f *Finder) {
		f.workers = n
	}
}

// WithChunkSize sets how many candidates a worker takes at a time.
func WithChunkSize(n int) Option {
	return func(f *Finder) {
		f.chunkSize = n
	}
}

// WithProgress installs a callback that receives progress messages.
func WithProgress(progressCallback func(string)) Option {
	return func(f *Finder) {
		f.progressCallback = progressCallback
	}
}

// New returns a Finder backed by cache.
func New(cache *primes.Cache, opts ...Option) *Finder {
	f := &Finder{cache: cache}
	for _, opt := range opts {
		opt(f)
	}
	if f.workers <= 0 {
		f.workers = runtime.NumCPU()
	}
	if f.chunkSize <= 0 {
		f.chunkSize = defaultChunkSize
	}
	return f
}

// Cache returns the prime cache the finder reads from.
func (f *Finder) Cache() *primes.Cache {
	return f.cache
}

// FindEmirp computes the count, the largest and the sum of the emirps <= limit
// using a fresh cache. With no emirps, all three are zero.
func FindEmirp(limit int64) (count, max, sum int64, err error) {
	s, err := New(primes.New()).Find(limit)
	if err != nil {
		return 0, 0, 0, err
	}
	return s.Count, s.Max, s.Sum, nil
}

// Find returns the summary of all emirps <= limit. When there are none the
// zero Summary is returned with a nil error.
func (f *Finder) Find(limit int64) (Summary, error) {
	p, err := f.run(limit, false)
	if err != nil {
		return Summary{}, err
	}
	return p.summary, nil
}

// Emirps returns every emirp <= limit in ascending order.
func (f *Finder) Emirps(limit int64) ([]int64, error) {
	p, err := f.run(limit, true)
	if err != nil {
		return nil, err
	}
	slices.Sort(p.emirps)
	return p.emirps, nil
}

// IsEmirp reports whether p is an emirp according to snap. p is assumed to be
// prime; snap must cover the reversal of p.
func IsEmirp(p int64, snap *primes.Snapshot) (bool, error) {
	reversed, err := Reverse(p)
	if err != nil {
		return false, err
	}
	return reversed != p && snap.Contains(reversed), nil
}

// partial is the result of classifying one chunk of candidates.
type partial struct {
	summary Summary
	emirps  []int64
}

func (f *Finder) run(limit int64, collect bool) (partial, error) {
	if limit > MaxLimit {
		return partial{}, fmt.Errorf("limit %d: %w (max %d)", limit, ErrLimitOutOfRange, MaxLimit)
	}
	if limit < 2 {
		return partial{}, nil
	}

	f.progress(fmt.Sprintf("Ensuring prime cache covers %d...", limit))
	if err := f.cache.EnsureCoverage(limit); err != nil {
		return partial{}, fmt.Errorf("failed to extend prime cache to %d: %w", limit, err)
	}

	// No extension runs between here and the end of classification, so
	// workers read the snapshot without locking.
	snap := f.cache.Snapshot()
	candidates := snap.CandidatesFor(limit)
	f.progress(fmt.Sprintf("  Cache holds primes up to %d, classifying %d candidates", snap.Max(), len(candidates)))

	result, err := f.classify(candidates, snap, collect)
	if err != nil {
		return partial{}, err
	}

	f.progress(fmt.Sprintf("  Classification complete: %d emirps found", result.summary.Count))
	return result, nil
}

// classify fans the candidates out to a worker pool and reduces the per-chunk
// partials as they arrive.
func (f *Finder) classify(candidates []int64, snap *primes.Snapshot, collect bool) (partial, error) {
	if len(candidates) == 0 {
		return partial{}, nil
	}

	numChunks := (len(candidates) + f.chunkSize - 1) / f.chunkSize
	chunks := make(chan []int64, numChunks)
	results := make(chan partial, f.workers)

	// Start worker pool
	var eg errgroup.Group
	for w := 1; w <= f.workers; w++ {
		eg.Go(func() error {
			return classifyWorker(chunks, results, snap, collect)
		})
	}

	// Reduce results in a separate goroutine
	var total partial
	var reduceErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		resultCount := 0
		for p := range results {
			resultCount++
			if reduceErr != nil {
				continue
			}
			total.summary, reduceErr = total.summary.merge(p.summary)
			total.emirps = append(total.emirps, p.emirps...)

			if resultCount%100 == 0 || resultCount == numChunks {
				f.progress(fmt.Sprintf("    Processed %d/%d chunks (%d emirps found so far)",
					resultCount, numChunks, total.summary.Count))
			}
		}
	}()

	for i := 0; i < numChunks; i++ {
		start := i * f.chunkSize
		end := min(start+f.chunkSize, len(candidates))
		chunks <- candidates[start:end]
	}
	close(chunks)

	// Wait for all workers to finish, then let the reducer drain
	err := eg.Wait()
	close(results)
	<-done

	if err != nil {
		return partial{}, err
	}
	if reduceErr != nil {
		return partial{}, reduceErr
	}
	return total, nil
}

func classifyWorker(chunks <-chan []int64, results chan<- partial, snap *primes.Snapshot, collect bool) error {
	for candidates := range chunks {
		var p partial
		for _, candidate := range candidates {
			ok, err := IsEmirp(candidate, snap)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if p.summary, err = p.summary.add(candidate); err != nil {
				return err
			}
			if collect {
				p.emirps = append(p.emirps, candidate)
			}
		}
		results <- p
	}
	return nil
}

func (f *Finder) progress(msg string) {
	if f.progressCallback != nil {
		f.progressCallback(msg)
	}
}
