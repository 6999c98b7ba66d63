package sequencer

import (
	"math/rand"

	"go-drift/debug"
)

// Drone re-strikes a root note at irregular intervals and, now and then,
// colours it with an A or a G an octave or two above.
type Drone struct {
	player Player
	rng    *rand.Rand

	Root      string
	MaxJitter float64 // next strike within [0, MaxJitter)
	Cooldown  float64 // minimum seconds between embellishments
	Chance    float64 // probability of an embellishment once cooled down
	Octave    float64 // probability the embellishment is doubled an octave up

	lastExtra     string
	lastExtraTime float64
}

// NewDrone starts the embellishment cooldown at start
func NewDrone(player Player, rng *rand.Rand, start float64) *Drone {
	return &Drone{
		player:        player,
		rng:           rng,
		Root:          "C4",
		MaxJitter:     10,
		Cooldown:      20,
		Chance:        0.3,
		Octave:        0.2,
		lastExtra:     "A",
		lastExtraTime: start,
	}
}

// Name implements Voice
func (d *Drone) Name() string { return "drone" }

// Fire strikes the root one lead-in after t and maybe an embellishment
func (d *Drone) Fire(t float64) float64 {
	at := t + LeadIn
	d.player.TriggerAttack(d.Root, at, 1)
	next := d.rng.Float64() * d.MaxJitter

	if t-d.lastExtraTime < d.Cooldown || d.rng.Float64() >= d.Chance {
		return next
	}

	// G is favoured, and never two As in a row
	if d.rng.Float64() < 0.6 || d.lastExtra == "A" {
		d.lastExtra = "G"
	} else {
		d.lastExtra = "A"
	}
	d.lastExtraTime = t

	debug.Log("voice", "drone extra %s4", d.lastExtra)
	d.player.TriggerAttack(d.lastExtra+"4", at, 1)
	if d.rng.Float64() < d.Octave {
		debug.Log("voice", "drone extra %s5", d.lastExtra)
		d.player.TriggerAttack(d.lastExtra+"5", at, 1)
	}
	return next
}

// LastExtra returns the last embellishment and when it sounded
func (d *Drone) LastExtra() (string, float64) {
	return d.lastExtra, d.lastExtraTime
}
