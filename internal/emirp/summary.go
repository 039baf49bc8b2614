package emirp

import (
	"fmt"
	"math"
)

// Summary aggregates the emirps found below a limit. When none are found all
// three fields are zero.
type Summary struct {
	Count int64
	Max   int64
	Sum   int64
}

// Empty reports whether no emirp was found.
func (s Summary) Empty() bool {
	return s.Count == 0
}

// add folds a single emirp into the summary.
func (s Summary) add(p int64) (Summary, error) {
	return s.merge(Summary{Count: 1, Max: p, Sum: p})
}

// merge combines two partial summaries. It is commutative and associative,
// so partials may arrive in any order.
func (s Summary) merge(o Summary) (Summary, error) {
	if o.Sum > 0 && s.Sum > math.MaxInt64-o.Sum {
		return s, fmt.Errorf("sum %d + %d: %w", s.Sum, o.Sum, ErrOverflow)
	}
	return Summary{
		Count: s.Count + o.Count,
		Max:   max(s.Max, o.Max),
		Sum:   s.Sum + o.Sum,
	}, nil
}
