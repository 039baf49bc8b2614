package emirp

import (
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emirps/internal/primes"
)

// referenceEmirps is an oracle independent of primes.Cache: a plain sieve of
// Eratosthenes plus a string-based reversal check over every prime.
func referenceEmirps(limit int64) []int64 {
	bound := primes.NextCoverageCeiling(limit)
	composite := make([]bool, bound+1)
	composite[0], composite[1] = true, true
	for i := int64(2); i*i <= bound; i++ {
		if !composite[i] {
			for j := i * i; j <= bound; j += i {
				composite[j] = true
			}
		}
	}

	var emirps []int64
	for p := int64(2); p <= limit; p++ {
		if composite[p] {
			continue
		}
		digits := []byte(strconv.FormatInt(p, 10))
		for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
			digits[i], digits[j] = digits[j], digits[i]
		}
		r, _ := strconv.ParseInt(string(digits), 10, 64)
		if r != p && !composite[r] {
			emirps = append(emirps, p)
		}
	}
	return emirps
}

func summarize(emirps []int64) Summary {
	var s Summary
	for _, e := range emirps {
		s.Count++
		s.Max = max(s.Max, e)
		s.Sum += e
	}
	return s
}

func TestFinder_Find_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		limit int64
		want  Summary
	}{
		{name: "below two", limit: 1, want: Summary{}},
		{name: "single digit", limit: 10, want: Summary{}},
		{name: "twelve", limit: 12, want: Summary{}},
		{name: "first emirp", limit: 13, want: Summary{Count: 1, Max: 13, Sum: 13}},
		{name: "thirty one", limit: 31, want: Summary{Count: 3, Max: 31, Sum: 61}},
		{name: "one hundred", limit: 100, want: Summary{Count: 8, Max: 97, Sum: 418}},
		{name: "one thousand", limit: 1000, want: Summary{Count: 36, Max: 991, Sum: 16788}},
		{name: "two hundred thousand", limit: 200000, want: Summary{Count: 4278, Max: 199961, Sum: 470781280}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(primes.New(), WithWorkers(4), WithChunkSize(64))
			got, err := f.Find(tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Count == 0, got.Empty())
		})
	}
}

func TestFinder_Find_MatchesReference(t *testing.T) {
	f := New(primes.New(), WithWorkers(8))
	for _, limit := range []int64{500, 7777, 20000, 200000} {
		got, err := f.Find(limit)
		require.NoError(t, err)
		assert.Equal(t, summarize(referenceEmirps(limit)), got, "Find(%d)", limit)
	}
}

func TestFinder_Emirps(t *testing.T) {
	f := New(primes.New(), WithWorkers(3), WithChunkSize(16))

	got, err := f.Emirps(100)
	require.NoError(t, err)
	assert.Equal(t, []int64{13, 17, 31, 37, 71, 73, 79, 97}, got)

	got, err = f.Emirps(200000)
	require.NoError(t, err)
	assert.Equal(t, referenceEmirps(200000), got)

	got, err = f.Emirps(12)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFinder_Find_SharesCacheAcrossLimits(t *testing.T) {
	cache := primes.New()
	f := New(cache)

	_, err := f.Find(47)
	require.NoError(t, err)
	assert.Equal(t, int64(199), cache.Ceiling())

	_, err = f.Find(450)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cache.Ceiling())

	// A smaller limit afterwards reuses the coverage
	got, err := f.Find(100)
	require.NoError(t, err)
	assert.Equal(t, Summary{Count: 8, Max: 97, Sum: 418}, got)
	assert.Equal(t, int64(1000), cache.Ceiling())
}

func TestFinder_Find_LimitOutOfRange(t *testing.T) {
	f := New(primes.New())
	_, err := f.Find(MaxLimit + 1)
	assert.ErrorIs(t, err, ErrLimitOutOfRange)

	_, err = f.Emirps(math.MaxInt64)
	assert.ErrorIs(t, err, ErrLimitOutOfRange)

	assert.Equal(t, 0, f.Cache().Len(), "rejected limit must not touch the cache")
}

func TestFinder_Find_Concurrent(t *testing.T) {
	f := New(primes.New(), WithWorkers(2))
	limits := []int64{100, 1000, 20000, 100, 5000, 20000}

	results := make([]Summary, len(limits))
	var wg sync.WaitGroup
	for i, limit := range limits {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := f.Find(limit)
			assert.NoError(t, err)
			results[i] = s
		}()
	}
	wg.Wait()

	for i, limit := range limits {
		assert.Equal(t, summarize(referenceEmirps(limit)), results[i], "Find(%d)", limit)
	}
}

func TestFinder_Progress(t *testing.T) {
	var messages []string
	f := New(primes.New(), WithWorkers(1), WithProgress(func(msg string) {
		messages = append(messages, msg)
	}))

	_, err := f.Find(1000)
	require.NoError(t, err)
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[0], "covers 1000")
	assert.Contains(t, messages[len(messages)-1], "36 emirps found")
}

func TestFindEmirp(t *testing.T) {
	count, maxEmirp, sum, err := FindEmirp(100)
	require.NoError(t, err)
	assert.Equal(t, int64(8), count)
	assert.Equal(t, int64(97), maxEmirp)
	assert.Equal(t, int64(418), sum)

	count, maxEmirp, sum, err = FindEmirp(12)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, maxEmirp)
	assert.Zero(t, sum)
}

func TestIsEmirp(t *testing.T) {
	cache := primes.New()
	require.NoError(t, cache.EnsureCoverage(1000))
	snap := cache.Snapshot()

	tests := []struct {
		p    int64
		want bool
	}{
		{p: 13, want: true},
		{p: 31, want: true},
		{p: 19, want: false},  // 91 = 7 * 13
		{p: 11, want: false},  // palindrome
		{p: 101, want: false}, // palindrome
		{p: 151, want: false}, // palindromic prime, its reversal is prime
		{p: 107, want: true},  // 701
	}
	for _, tt := range tests {
		got, err := IsEmirp(tt.p, snap)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "IsEmirp(%d)", tt.p)
	}
}

func BenchmarkFind(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := New(primes.New()).Find(200000); err != nil {
			b.Fatal(err)
		}
	}
}
