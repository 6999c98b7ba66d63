package sequencer

import "math/rand"

// Hit is a group of strokes that sound together with one roll of Chance.
// Offsets are in units after the bar start.
type Hit struct {
	Offsets []float64
	Chance  float64 // 1 always plays
}

// Pattern describes a percussion layer repeating every Length units
type Pattern struct {
	Name     string
	Length   float64 // units per repetition
	Velocity float64
	Hits     []Hit
}

// Hats: a steady pulse with the odd ghost stroke in between
func Hats() Pattern {
	return Pattern{
		Name:     "hats",
		Length:   0.5,
		Velocity: 0.1,
		Hits: []Hit{
			{Offsets: []float64{0}, Chance: 1},
			{Offsets: []float64{0.25}, Chance: 0.1},
		},
	}
}

// Kick: downbeat plus occasional pickups
func Kick() Pattern {
	return Pattern{
		Name:     "kick",
		Length:   8,
		Velocity: 0.25,
		Hits: []Hit{
			{Offsets: []float64{0}, Chance: 1},
			{Offsets: []float64{1}, Chance: 0.2},
			{Offsets: []float64{7}, Chance: 0.2},
		},
	}
}

// Snare: backbeat, a dragged grace note and a rare closing flam
func Snare() Pattern {
	return Pattern{
		Name:     "snare",
		Length:   8,
		Velocity: 0.25,
		Hits: []Hit{
			{Offsets: []float64{3.25}, Chance: 0.33},
			{Offsets: []float64{4}, Chance: 1},
			{Offsets: []float64{7.5, 7.75}, Chance: 0.1},
		},
	}
}

// Percussion plays a Pattern on a fixed grid so the layers stay locked
// together
type Percussion struct {
	pattern Pattern
	player  Player
	note    string
	unit    float64
	rng     *rand.Rand
}

// NewPercussion plays pattern as note through player
func NewPercussion(pattern Pattern, player Player, note string, unit float64, rng *rand.Rand) *Percussion {
	return &Percussion{
		pattern: pattern,
		player:  player,
		note:    note,
		unit:    unit,
		rng:     rng,
	}
}

// Name implements Voice
func (p *Percussion) Name() string { return p.pattern.Name }

// Interval implements Periodic
func (p *Percussion) Interval() float64 { return p.pattern.Length * p.unit }

// Fire rolls each hit group once and triggers the strokes that won
func (p *Percussion) Fire(t float64) float64 {
	for _, hit := range p.pattern.Hits {
		if hit.Chance < 1 && p.rng.Float64() >= hit.Chance {
			continue
		}
		for _, off := range hit.Offsets {
			p.player.TriggerAttack(p.note, t+LeadIn+off*p.unit, p.pattern.Velocity)
		}
	}
	return 0
}
