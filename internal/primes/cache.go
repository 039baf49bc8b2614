// Package primes keeps an incrementally grown, complete set of primes.
//
// A Cache starts from a small seed and is extended on demand to a power-of-ten
// ceiling. Extensions are done by parallel trial division in two phases: first
// against the primes already known, then, for values above the square root of
// the new ceiling, against the primes discovered below that root.
package primes

import (
	"slices"
	"sync"
)

// seedPrimes are all primes up to seedCeiling.
var seedPrimes = []int64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131, 137, 139, 149, 151,
	157, 163, 167, 173, 179, 181, 191, 193, 197, 199,
}

const seedCeiling = 199

// Cache is an ordered set of primes that is complete for [2, Ceiling()].
// It only ever grows. A Cache is safe for concurrent use: extensions hold the
// write lock, queries hold the read lock.
type Cache struct {
	mu sync.RWMutex
	// primes is ascending. Extensions replace the slice, never write into it,
	// so snapshots may keep referencing an old one.
	primes  []int64
	covered int64

	workers   int
	chunkSize int
}

// Option configures a Cache.
type Option func(*Cache)

// WithWorkers sets the number of workers used to sieve an extension.
// Zero or negative means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *Cache) {
		c.workers = n
	}
}

// WithChunkSize sets how many candidates a sieve worker takes at a time.
func WithChunkSize(n int) Option {
	return func(c *Cache) {
		c.chunkSize = n
	}
}

// New returns an empty cache. It is seeded on the first EnsureCoverage call.
func New(opts ...Option) *Cache {
	c := &Cache{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureCoverage makes the cache complete up to NextCoverageCeiling(limit),
// which covers every prime <= limit and every digit reversal of one. Limits
// below 2 leave the cache untouched, and a ceiling that is already covered is
// a no-op.
func (c *Cache) EnsureCoverage(limit int64) error {
	if limit < 2 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.primes) == 0 {
		c.primes = slices.Clone(seedPrimes)
		c.covered = seedCeiling
	}
	ceiling := NextCoverageCeiling(limit)
	if ceiling <= c.covered {
		return nil
	}

	found, err := sieveRange(c.primes, c.covered, ceiling, c.workers, c.chunkSize)
	if err != nil {
		return err
	}

	grown := make([]int64, 0, len(c.primes)+len(found))
	grown = append(grown, c.primes...)
	grown = append(grown, found...)
	c.primes = grown
	c.covered = ceiling
	return nil
}

// Contains reports whether x is a known prime. Values above Ceiling() are
// reported as not prime; callers must cover the range first.
func (c *Cache) Contains(x int64) bool {
	return c.Snapshot().Contains(x)
}

// CandidatesFor returns the cached primes p with 11 < p <= limit whose
// leading digit is not 2, 4, 5, 6 or 8, in ascending order.
func (c *Cache) CandidatesFor(limit int64) []int64 {
	return c.Snapshot().CandidatesFor(limit)
}

// Max returns the largest known prime, or 0 for an unseeded cache.
func (c *Cache) Max() int64 {
	return c.Snapshot().Max()
}

// Ceiling returns the value up to which the cache is complete.
func (c *Cache) Ceiling() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.covered
}

// Len returns the number of known primes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.primes)
}

// List returns a copy of the known primes in ascending order.
func (c *Cache) List() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.primes)
}

// Snapshot returns a read-only view of the cache as it is now. Later
// extensions are not visible through it.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Snapshot{primes: c.primes, covered: c.covered}
}

// Snapshot is an immutable view of a Cache. It needs no locking.
type Snapshot struct {
	primes  []int64
	covered int64
}

// Contains reports whether x is a prime in this view.
func (s *Snapshot) Contains(x int64) bool {
	_, found := slices.BinarySearch(s.primes, x)
	return found
}

// Max returns the largest prime in this view, or 0 if it is empty.
func (s *Snapshot) Max() int64 {
	if len(s.primes) == 0 {
		return 0
	}
	return s.primes[len(s.primes)-1]
}

// Ceiling returns the value up to which this view is complete.
func (s *Snapshot) Ceiling() int64 {
	return s.covered
}

// CandidatesFor returns the primes in this view that may be emirps and are
// <= limit. See IsCandidate.
func (s *Snapshot) CandidatesFor(limit int64) []int64 {
	end, found := slices.BinarySearch(s.primes, limit)
	if found {
		end++
	}

	var candidates []int64
	for _, p := range s.primes[:end] {
		if IsCandidate(p) {
			candidates = append(candidates, p)
		}
	}
	return candidates
}

// IsCandidate reports whether prime p can be an emirp at all. Primes up to 11
// are excluded, as are primes whose reversal would end in an even digit or 5.
func IsCandidate(p int64) bool {
	if p <= 11 {
		return false
	}
	switch LeadingDigit(p) {
	case 2, 4, 5, 6, 8:
		return false
	}
	return true
}
