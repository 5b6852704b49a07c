package coord

import "math"

// FNV-1a 64-bit parameters.
const (
	hashOffset uint64 = 14695981039346656037
	hashPrime  uint64 = 1099511628211
)

// ordinateSeparator is folded into the hash between x and y so that the
// split point of the digits contributes to the result.
const ordinateSeparator = ' '

func hashByte(h uint64, b byte) uint64 {
	h ^= uint64(b)
	h *= hashPrime
	return h
}

// pow10 holds the exact powers of ten used to scale fraction digits.
// Geographic coordinates rarely carry more than 11 fraction digits; anything
// longer falls back to math.Pow10.
var pow10 = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11,
}

func scale(n int) float64 {
	if n < len(pow10) {
		return pow10[n]
	}
	return math.Pow10(n)
}
