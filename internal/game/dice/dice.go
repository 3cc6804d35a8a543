// Package dice provides the randomness abstraction shared by move resolution,
// injury rolls, wild encounter generation, and opponent move choice.
//
// Every consumer takes a Source as a constructor argument so tests can
// substitute a deterministic sequence.
package dice

// Source is the randomness provider for the battle engine.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a uniformly distributed float in [0, 1).
	Float64() float64
}

// Chance reports whether a draw from src falls under probability p.
// p <= 0 never succeeds and p >= 1 always succeeds; neither consumes a draw.
//
// Postcondition: at most one Float64 draw is taken from src.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Between returns lo + draw*(hi-lo) for a single Float64 draw.
//
// Precondition: lo <= hi.
// Postcondition: lo <= result < hi, or result == lo when lo == hi.
func Between(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}
