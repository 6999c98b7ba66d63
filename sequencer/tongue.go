package sequencer

import (
	"math/rand"

	"go-drift/debug"
)

// TongueDrumPool is the tuning of the tongue drum
var TongueDrumPool = []string{"C4", "D4", "E4", "G4", "A4", "C5", "D5", "E5"}

// tongueLeadIn is slightly shorter than LeadIn so the phrase sits just
// ahead of the percussion grid
const tongueLeadIn = 0.95

// TongueDrum loops a sparse eight-slot phrase, replacing it with a new one
// more and more likely the longer the current one has been looping
type TongueDrum struct {
	player Player
	seq    *NoteSequencer
	rng    *rand.Rand
	unit   float64
	gate   Gate
	slots  int

	phrase Phrase
	loops  int
}

// NewTongueDrum plays pool through player with slots of unit seconds
func NewTongueDrum(player Player, pool []string, unit float64, rng *rand.Rand) (*TongueDrum, error) {
	seq, err := NewNoteSequencer(pool, rng)
	if err != nil {
		return nil, err
	}
	d := &TongueDrum{
		player: player,
		seq:    seq,
		rng:    rng,
		unit:   unit,
		gate:   Gate{Base: 0.5, Decay: 0.25},
		slots:  8,
	}
	d.phrase = d.newPhrase()
	return d, nil
}

// Name implements Voice
func (d *TongueDrum) Name() string { return "tongue-drum" }

// Interval implements Periodic: one phrase per loop
func (d *TongueDrum) Interval() float64 { return float64(d.slots) * d.unit }

func (d *TongueDrum) newPhrase() Phrase {
	return GatedPhrase(d.slots, d.gate, d.seq, d.rng)
}

// Fire plays the current phrase, then decides whether to keep it
func (d *TongueDrum) Fire(t float64) float64 {
	for _, ev := range d.phrase {
		d.player.TriggerAttack(ev.Note, t+float64(ev.Slot)*d.unit+tongueLeadIn, 1)
	}

	if d.rng.Float64() < float64(d.loops*d.loops)/100 {
		debug.Log("voice", "tongue-drum new phrase after %d loops", d.loops)
		d.loops = 0
		d.phrase = d.newPhrase()
	} else {
		d.loops++
	}
	return 0
}

// Phrase returns the phrase currently looping
func (d *TongueDrum) Phrase() Phrase {
	return d.phrase
}

// Loops returns how many times the current phrase has repeated
func (d *TongueDrum) Loops() int {
	return d.loops
}
