package salesbot

import "math/rand/v2"

// Rand picks an index in [0, n). Tests inject a fixed source to pin the
// discovery-question and default-sentence choices.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand uses the process-wide math/rand/v2 source.
var DefaultRand Rand = globalRand{}

// FixedRand always returns the same index, clamped to n.
type FixedRand int

// IntN implements Rand.
func (f FixedRand) IntN(n int) int {
	i := int(f)
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return i
}
