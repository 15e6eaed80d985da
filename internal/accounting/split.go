package accounting

import "math"

// SplitCopies decomposes fractional virtual copies into whole
// machines running at the configured clock speed plus one machine at
// a reduced clock. A copies value of 3.75 at clock 2.0 means 3
// machines at 200% and one more at 150%. The returned lastClock is 0
// when the copies divide evenly.
//
// The fractional part of a copies value is always lastClock/clock, so
// splitting is the exact inverse of the compose step used by
// variable-clock backdriving.
func SplitCopies(copies, clock float64) (whole, lastClock float64) {
	whole, frac := math.Modf(copies)
	return whole, frac * clock
}
