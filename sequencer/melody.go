package sequencer

import (
	"math/rand"

	"go-drift/debug"
)

var (
	// MelodyPrimary is the chord half the phrases are drawn from
	MelodyPrimary = []string{"C4", "E4", "G4", "B4", "D5", "E5"}
	// MelodySecondary is the chord the other half are drawn from
	MelodySecondary = []string{"A3", "C4", "D4", "F4", "A4", "C5"}
)

// Melody plays short directional phrases spread over a few seconds, each
// transposed by a slowly wandering interval. Its loudness is gated by a
// separate Breath on Gain.
type Melody struct {
	player    Player
	rng       *rand.Rand
	primary   []string
	secondary []string
	walk      *TranspositionWalk

	// Gain is the loudness parameter a Breath voice can shape
	Gain Automatable

	MinLength, MaxLength int     // notes per phrase, inclusive
	SpanMin, SpanMax     float64 // seconds a phrase is spread over
	RestMin, RestMax     float64 // added to half the span before the next phrase
	Velocity             float64

	last Phrase
}

// NewMelody draws from primary and secondary with a coin flip per phrase
func NewMelody(player Player, primary, secondary []string, gain Automatable, rng *rand.Rand) (*Melody, error) {
	if len(primary) == 0 || len(secondary) == 0 {
		return nil, ErrEmptyPool
	}
	return &Melody{
		player:    player,
		rng:       rng,
		primary:   primary,
		secondary: secondary,
		walk:      NewTranspositionWalk(DefaultOffsets, 3, 1, rng),
		Gain:      gain,
		MinLength: 3,
		MaxLength: 8,
		SpanMin:   4,
		SpanMax:   8,
		RestMin:   7,
		RestMax:   14,
		Velocity:  0.6,
	}, nil
}

// Name implements Voice
func (m *Melody) Name() string { return "melody" }

// Fire builds one phrase and schedules it after the lead-in
func (m *Melody) Fire(t float64) float64 {
	pool := m.primary
	if m.rng.Float64() < 0.5 {
		pool = m.secondary
	}
	length := m.MinLength + m.rng.Intn(m.MaxLength-m.MinLength+1)
	m.walk.Step()

	phrase, err := DirectionalPhrase(length, pool, m.walk.Offset(), m.rng)
	if err != nil {
		debug.Log("voice", "melody: %v", err)
		return -1
	}
	m.last = phrase

	span := uniform(m.rng, m.SpanMin, m.SpanMax)
	curve := m.curve()
	for _, ev := range phrase {
		at := t + LeadIn + curve.Offset(ev.Slot, length, span)
		m.player.TriggerAttack(ev.Note, at, m.Velocity)
	}
	prune(m.Gain, t)

	debug.Log("voice", "melody %d notes %+d over %.1fs exp %.2f", length, m.walk.Offset(), span, curve.Exponent)
	return span/2 + uniform(m.rng, m.RestMin, m.RestMax)
}

// curve is front-loaded or back-loaded with equal odds
func (m *Melody) curve() Curve {
	exp := uniform(m.rng, 1.5, 3)
	if m.rng.Float64() < 0.5 {
		exp = 1 / exp
	}
	return Curve{Exponent: exp}
}

// Last returns the most recent phrase
func (m *Melody) Last() Phrase {
	return m.last
}

// Transposition returns the current interval of the walk
func (m *Melody) Transposition() int {
	return m.walk.Offset()
}
