package sequencer

import "math/rand"

// DefaultOffsets are the transposition intervals (semitones) of the
// melodic voice, centred on unison
var DefaultOffsets = []int{-7, -5, -2, 0, 2, 5, 7}

// Step moves current by at most two places within [0, n), drawing
// uniformly from the reachable neighbourhood (staying put included)
func Step(current, n int, rng *rand.Rand) int {
	if n <= 1 {
		return 0
	}
	current = min(max(current, 0), n-1)
	lo := max(0, current-2)
	hi := min(n-1, current+2)
	return lo + rng.Intn(hi-lo+1)
}

// TranspositionWalk is a bounded random walk over a list of intervals
type TranspositionWalk struct {
	offsets []int
	index   int
	chance  float64 // probability a Step actually re-rolls
	rng     *rand.Rand
}

// NewTranspositionWalk starts at index start (clamped into the list).
// chance 1 re-rolls on every step, 0 freezes the walk.
func NewTranspositionWalk(offsets []int, start int, chance float64, rng *rand.Rand) *TranspositionWalk {
	if len(offsets) == 0 {
		offsets = []int{0}
	}
	o := make([]int, len(offsets))
	copy(o, offsets)
	if start < 0 {
		start = 0
	}
	if start >= len(o) {
		start = len(o) - 1
	}
	return &TranspositionWalk{offsets: o, index: start, chance: chance, rng: rng}
}

// Step possibly moves the walk and returns the new index
func (w *TranspositionWalk) Step() int {
	if w.rng.Float64() < w.chance {
		w.index = Step(w.index, len(w.offsets), w.rng)
	}
	return w.index
}

// Index returns the current position in the list
func (w *TranspositionWalk) Index() int {
	return w.index
}

// Offset returns the current interval in semitones
func (w *TranspositionWalk) Offset() int {
	return w.offsets[w.index]
}

// Len returns the number of intervals
func (w *TranspositionWalk) Len() int {
	return len(w.offsets)
}
