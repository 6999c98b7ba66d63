package sequencer

import (
	"fmt"
	"math"
	"math/rand"

	"go-drift/midi"
)

// Event is one note of a phrase. Its playback time is derived from Slot.
type Event struct {
	Slot int
	Note string
}

// Phrase is a batch of slotted notes, ordered by slot
type Phrase []Event

// Notes returns just the note names
func (p Phrase) Notes() []string {
	out := make([]string, len(p))
	for i, ev := range p {
		out[i] = ev.Note
	}
	return out
}

// Gate gives each slot a keep probability: Base on even slots,
// Base-Decay on odd ones, so downbeats are denser than offbeats
type Gate struct {
	Base  float64
	Decay float64
}

// Chance returns the keep probability of slot i
func (g Gate) Chance(i int) float64 {
	return g.Base - float64(i%2)*g.Decay
}

// GatedPhrase walks slots 0..length-1, keeping each one with the gate's
// probability and pairing it with the sequencer's next note. The
// sequencer's memory carries across phrases.
func GatedPhrase(length int, gate Gate, seq *NoteSequencer, rng *rand.Rand) Phrase {
	var p Phrase
	for i := 0; i < length; i++ {
		if rng.Float64() < gate.Chance(i) {
			p = append(p, Event{Slot: i, Note: seq.Next()})
		}
	}
	return p
}

// DirectionalPhrase fills every slot 0..length-1 with a note from pool,
// no two neighbours equal, each shifted by transpose semitones.
// Memory is local to the phrase.
func DirectionalPhrase(length int, pool []string, transpose int, rng *rand.Rand) (Phrase, error) {
	seq, err := NewNoteSequencer(pool, rng)
	if err != nil {
		return nil, err
	}

	p := make(Phrase, 0, length)
	for i := 0; i < length; i++ {
		note, err := midi.Transpose(seq.Next(), transpose)
		if err != nil {
			return nil, fmt.Errorf("phrase slot %d: %w", i, err)
		}
		p = append(p, Event{Slot: i, Note: note})
	}
	return p, nil
}

// Curve spaces slots non-linearly over a span of time. Exponent 1 is
// even spacing; above 1 notes bunch up at the start (front-loaded),
// below 1 they bunch up at the end (back-loaded).
type Curve struct {
	Exponent float64
}

// Offset returns the time of slot within a phrase of length slots
// spread over span seconds
func (c Curve) Offset(slot, length int, span float64) float64 {
	if length <= 0 {
		return 0
	}
	exp := c.Exponent
	if exp <= 0 {
		exp = 1
	}
	return span * math.Pow(float64(slot)/float64(length), exp)
}
