package sequencer

import (
	"errors"
	"math/rand"
)

// ErrEmptyPool is returned when a note pool has nothing to draw from
var ErrEmptyPool = errors.New("empty note pool")

// NoteSequencer draws an endless stream of notes from a fixed pool,
// never returning the same note twice in a row. With a single-note pool
// there is nothing else to pick, so that note repeats.
type NoteSequencer struct {
	pool []string
	rng  *rand.Rand

	last    string
	hasLast bool

	candidates []string // scratch, reused between draws
}

// NewNoteSequencer copies pool; the caller may reuse its slice
func NewNoteSequencer(pool []string, rng *rand.Rand) (*NoteSequencer, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	p := make([]string, len(pool))
	copy(p, pool)
	return &NoteSequencer{
		pool:       p,
		rng:        rng,
		candidates: make([]string, 0, len(p)),
	}, nil
}

// Next draws the next note
func (s *NoteSequencer) Next() string {
	s.candidates = s.candidates[:0]
	for _, n := range s.pool {
		if s.hasLast && n == s.last {
			continue
		}
		s.candidates = append(s.candidates, n)
	}

	var note string
	if len(s.candidates) == 0 {
		note = s.pool[0]
	} else {
		note = s.candidates[s.rng.Intn(len(s.candidates))]
	}

	s.last = note
	s.hasLast = true
	return note
}

// Last returns the previous draw, if any
func (s *NoteSequencer) Last() (string, bool) {
	return s.last, s.hasLast
}

// Pool returns a copy of the notes being drawn from
func (s *NoteSequencer) Pool() []string {
	p := make([]string, len(s.pool))
	copy(p, s.pool)
	return p
}
