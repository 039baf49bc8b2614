package primes

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isPrime is an independent trial-division oracle.
func isPrime(n int64) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for i := int64(3); i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

func TestCache_EnsureCoverage_SeedsOnFirstCall(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Max())

	require.NoError(t, c.EnsureCoverage(47))

	assert.Equal(t, seedPrimes, c.List())
	assert.Equal(t, int64(199), c.Max())
	assert.Equal(t, int64(seedCeiling), c.Ceiling())
}

func TestCache_EnsureCoverage_BelowTwo(t *testing.T) {
	for _, limit := range []int64{-10, 0, 1} {
		c := New()
		require.NoError(t, c.EnsureCoverage(limit))
		assert.Equal(t, 0, c.Len(), "limit %d must leave the cache empty", limit)
		assert.False(t, c.Contains(2))
	}
}

func TestCache_EnsureCoverage_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		limit       int64
		wantCeiling int64
	}{
		{name: "within seed", limit: 99, wantCeiling: 199},
		{name: "three digits within seed", limit: 150, wantCeiling: 1000},
		{name: "three digits", limit: 450, wantCeiling: 1000},
		{name: "four digits", limit: 1234, wantCeiling: 10000},
		{name: "five digits", limit: 20000, wantCeiling: 100000},
		{name: "six digits", limit: 200000, wantCeiling: 1000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithWorkers(4), WithChunkSize(512))
			require.NoError(t, c.EnsureCoverage(tt.limit))
			assert.Equal(t, tt.wantCeiling, c.Ceiling())

			list := c.List()
			for i, p := range list {
				assert.LessOrEqual(t, p, tt.wantCeiling)
				if !isPrime(p) {
					t.Fatalf("cache holds composite %d", p)
				}
				if i > 0 && list[i-1] >= p {
					t.Fatalf("cache not strictly ascending at %d: %d >= %d", i, list[i-1], p)
				}
			}

			// Completeness over the whole covered range
			for k := int64(2); k <= tt.wantCeiling; k++ {
				if isPrime(k) != c.Contains(k) {
					t.Fatalf("Contains(%d) = %v, want %v", k, c.Contains(k), isPrime(k))
				}
			}
		})
	}
}

func TestCache_EnsureCoverage_Incremental(t *testing.T) {
	incremental := New(WithWorkers(3))
	for _, limit := range []int64{47, 450, 5000, 60000} {
		require.NoError(t, incremental.EnsureCoverage(limit))
	}

	direct := New(WithWorkers(3))
	require.NoError(t, direct.EnsureCoverage(60000))

	assert.Equal(t, direct.Ceiling(), incremental.Ceiling())
	assert.Equal(t, direct.List(), incremental.List())
}

func TestCache_EnsureCoverage_MultiDecadeJump(t *testing.T) {
	c := New(WithWorkers(4))
	require.NoError(t, c.EnsureCoverage(1_000_000))
	assert.Equal(t, int64(10_000_000), c.Ceiling())

	assert.True(t, c.Contains(211))
	assert.False(t, c.Contains(211*211))
	assert.False(t, c.Contains(3137*3137))
	assert.True(t, c.Contains(9_999_991))

	// pi(10^7)
	assert.Equal(t, 664579, c.Len())
}

// With only 2 and 3 known, sqrt(ceiling) lies far beyond covered², so
// composites such as 25 and 91 survive phase 1 in the small partition.
func TestSieveRange_SmallPartitionResieved(t *testing.T) {
	found, err := sieveRange([]int64{2, 3}, 3, 10000, 3, 64)
	require.NoError(t, err)

	var want []int64
	for n := int64(4); n <= 10000; n++ {
		if isPrime(n) {
			want = append(want, n)
		}
	}
	assert.Equal(t, want, found)
}

func TestResieve(t *testing.T) {
	assert.Equal(t, []int64{5, 7, 11, 13}, resieve([]int64{5, 7, 11, 13, 25, 35, 49}))
	assert.Empty(t, resieve(nil))
}

func TestOddRange(t *testing.T) {
	assert.Equal(t, []int64{201, 203, 205}, oddRange(199, 205))
	assert.Equal(t, []int64{201, 203, 205}, oddRange(200, 206))
	assert.Nil(t, oddRange(10, 10))
}

func TestCache_EnsureCoverage_Idempotent(t *testing.T) {
	c := New()
	require.NoError(t, c.EnsureCoverage(5000))
	before := c.List()
	ceiling := c.Ceiling()

	for _, limit := range []int64{5000, 4000, 9999, 2} {
		require.NoError(t, c.EnsureCoverage(limit))
		assert.Equal(t, before, c.List(), "EnsureCoverage(%d) must not change the cache", limit)
		assert.Equal(t, ceiling, c.Ceiling())
	}
}

func TestCache_Contains_BeyondCoverage(t *testing.T) {
	c := New()
	require.NoError(t, c.EnsureCoverage(47))
	require.Equal(t, int64(seedCeiling), c.Ceiling())

	// 211 is prime but above the seed ceiling of 199
	assert.False(t, c.Contains(211))
	require.NoError(t, c.EnsureCoverage(211))
	assert.True(t, c.Contains(211))
}

func TestCache_CandidatesFor(t *testing.T) {
	c := New()
	require.NoError(t, c.EnsureCoverage(100))

	assert.Equal(t, []int64{13, 17, 19, 31, 37, 71, 73, 79, 97}, c.CandidatesFor(100))
	assert.Equal(t, []int64{13, 17}, c.CandidatesFor(17))
	assert.Empty(t, c.CandidatesFor(12))
	assert.Empty(t, c.CandidatesFor(11))
	assert.Empty(t, c.CandidatesFor(10))
}

func TestCache_CandidatesFor_ExcludedLeadingDigits(t *testing.T) {
	c := New()
	require.NoError(t, c.EnsureCoverage(100000))

	candidates := c.CandidatesFor(100000)
	require.NotEmpty(t, candidates)
	for _, p := range candidates {
		assert.Greater(t, p, int64(11))
		switch LeadingDigit(p) {
		case 2, 4, 5, 6, 8:
			t.Fatalf("candidate %d has excluded leading digit", p)
		}
	}

	// Every eligible prime is present
	want := 0
	for _, p := range c.List() {
		if p > 11 && p <= 100000 && IsCandidate(p) {
			want++
		}
	}
	assert.Len(t, candidates, want)
}

func TestCache_Snapshot_IsStable(t *testing.T) {
	c := New()
	require.NoError(t, c.EnsureCoverage(47))
	snap := c.Snapshot()

	require.NoError(t, c.EnsureCoverage(5000))

	assert.Equal(t, int64(199), snap.Max())
	assert.Equal(t, int64(seedCeiling), snap.Ceiling())
	assert.False(t, snap.Contains(211))
	assert.True(t, c.Contains(211))
}

func TestCache_ConcurrentUse(t *testing.T) {
	c := New(WithWorkers(2))

	var wg sync.WaitGroup
	for _, limit := range []int64{300, 3000, 30000, 30000, 999, 12} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.EnsureCoverage(limit))
			assert.True(t, c.Contains(199))
			_ = c.CandidatesFor(limit)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100000), c.Ceiling())
	assert.Equal(t, 9592, c.Len())
}

func BenchmarkEnsureCoverage(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c := New()
		for n := int64(1234); n < 1240000; n *= 10 {
			c.EnsureCoverage(n)
		}
	}
}
