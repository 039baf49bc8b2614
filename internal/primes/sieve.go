package primes

import "sort"

// sieveRange returns the primes in (covered, ceiling] in ascending order.
// known must hold every prime <= covered.
//
// Phase 1 drops every odd value in the range that a known prime divides.
// The survivors are split at sqrt(ceiling). Survivors at or below the root
// are primes once they are sieved against each other, which only matters
// when the root lies beyond covered². Survivors above the root are checked
// again against those small primes in phase 2.
func sieveRange(known []int64, covered, ceiling int64, workers, chunkSize int) ([]int64, error) {
	if ceiling <= covered {
		return nil, nil
	}

	// Phase 1: trial division by the known primes
	survivors, err := parallelFilter(oddRange(covered, ceiling), workers, chunkSize, notDivisibleBy(known))
	if err != nil {
		return nil, err
	}

	root := isqrt(ceiling)
	split := sort.Search(len(survivors), func(i int) bool {
		return survivors[i] > root
	})
	small := resieve(survivors[:split])
	large := survivors[split:]

	// Phase 2: trial division of the large partition by the small primes
	if len(small) > 0 {
		large, err = parallelFilter(large, workers, chunkSize, notDivisibleBy(small))
		if err != nil {
			return nil, err
		}
	}

	found := make([]int64, 0, len(small)+len(large))
	found = append(found, small...)
	found = append(found, large...)
	return found, nil
}

// oddRange returns the odd integers in (from, to]. Even values are never
// prime past the seed, so they are not generated.
func oddRange(from, to int64) []int64 {
	start := from + 1
	if start%2 == 0 {
		start++
	}
	if start > to {
		return nil
	}

	values := make([]int64, 0, (to-start)/2+1)
	for n := start; n <= to; n += 2 {
		values = append(values, n)
	}
	return values
}

// resieve removes from an ascending slice every value divisible by a smaller
// value that survives.
func resieve(values []int64) []int64 {
	kept := make([]int64, 0, len(values))
	for _, n := range values {
		if notDivisibleBy(kept)(n) {
			kept = append(kept, n)
		}
	}
	return kept
}
