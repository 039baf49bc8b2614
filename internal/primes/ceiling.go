package primes

import "math"

// maxCeilingDigits is the widest power of ten that still fits in an int64.
const maxCeilingDigits = 18

// NextCoverageCeiling rounds limit up to the power of ten that has one more
// digit than limit itself: 7 -> 10, 47 -> 100, 100 -> 1000, 450 -> 1000.
// Growing to a round boundary amortizes repeated extensions.
//
// Limits below 1 are treated as a single digit and yield 10. Limits with more
// than 18 digits have no representable ceiling and yield math.MaxInt64.
func NextCoverageCeiling(limit int64) int64 {
	digits := DigitCount(limit)
	if digits > maxCeilingDigits {
		return math.MaxInt64
	}

	ceiling := int64(1)
	for i := 0; i < digits; i++ {
		ceiling *= 10
	}
	return ceiling
}

// DigitCount returns the number of decimal digits in n. Zero and negative
// values count as one digit.
func DigitCount(n int64) int {
	if n < 10 {
		return 1
	}
	digits := 0
	for ; n > 0; n /= 10 {
		digits++
	}
	return digits
}

// LeadingDigit returns the most significant decimal digit of a positive n.
func LeadingDigit(n int64) int64 {
	for n >= 10 {
		n /= 10
	}
	return n
}

// isqrt returns the largest r with r*r <= n.
func isqrt(n int64) int64 {
	if n < 2 {
		return n
	}
	r := int64(math.Sqrt(float64(n)))
	// float64 rounding can be off by one either way near the top of the range
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
