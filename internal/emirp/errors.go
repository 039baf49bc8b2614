package emirp

import "errors"

// MaxLimit is the largest limit Find accepts. Its coverage ceiling, 10^18,
// and every reversal of a value below that ceiling fit in an int64.
const MaxLimit int64 = 999_999_999_999_999_999

var (
	// ErrLimitOutOfRange is returned for limits above MaxLimit.
	ErrLimitOutOfRange = errors.New("limit out of supported range")

	// ErrOverflow is returned when a reversal or the running sum would not
	// fit in an int64.
	ErrOverflow = errors.New("int64 overflow")
)
