package emirp

import (
	"fmt"
	"math"
)

// Reverse returns n with its decimal digits in reverse order, e.g. 1024 ->
// 4201. Trailing zeros of n become leading zeros and drop out: 100 -> 1.
// Negative input has no digit reversal and is rejected.
func Reverse(n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("reverse %d: negative input", n)
	}

	var reversed int64
	for rest := n; rest > 0; rest /= 10 {
		digit := rest % 10
		if reversed > (math.MaxInt64-digit)/10 {
			return 0, fmt.Errorf("reverse %d: %w", n, ErrOverflow)
		}
		reversed = reversed*10 + digit
	}
	return reversed, nil
}
