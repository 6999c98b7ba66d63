package sequencer

import "math/rand"

// Sweepable is an automatable parameter whose scheduled value can be read
type Sweepable interface {
	Automatable
	ValueAt(t float64) float64
}

// PanTone plays a low sine-like note every bar while sweeping it to a new
// random position in the stereo field
type PanTone struct {
	player Player
	pan    Sweepable
	rng    *rand.Rand
	unit   float64

	Note     string
	Length   float64 // seconds each note is held
	Sweep    float64 // seconds the pan takes to reach its target
	Velocity float64

	target float64
}

// NewPanTone plays through player and sweeps pan, one note per 8 units
func NewPanTone(player Player, pan Sweepable, unit float64, rng *rand.Rand) *PanTone {
	return &PanTone{
		player:   player,
		pan:      pan,
		rng:      rng,
		unit:     unit,
		Note:     "C2",
		Length:   1,
		Sweep:    2,
		Velocity: 0.32,
	}
}

// Name implements Voice
func (p *PanTone) Name() string { return "pan-tone" }

// Interval implements Periodic
func (p *PanTone) Interval() float64 { return 8 * p.unit }

// Fire holds the pan where it will be at the note start, then ramps it to
// a fresh position
func (p *PanTone) Fire(t float64) float64 {
	at := t + LeadIn
	p.target = p.rng.Float64()*2 - 1

	p.pan.SetValueAtTime(p.pan.ValueAt(at), at)
	p.pan.LinearRampToValueAtTime(p.target, at+p.Sweep)
	prune(p.pan, t)

	p.player.TriggerAttackRelease(p.Note, p.Length, at, p.Velocity)
	return 0
}

// Target returns the pan position of the latest sweep
func (p *PanTone) Target() float64 {
	return p.target
}
