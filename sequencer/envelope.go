package sequencer

import "math/rand"

// Automatable is a parameter that accepts timed automation
type Automatable interface {
	SetValueAtTime(value, t float64)
	LinearRampToValueAtTime(value, t float64)
}

// Stages are the anchor times of a rise/hold/fall envelope
type Stages struct {
	Start float64 // value 0, rise begins
	Rise  float64 // value 1 reached
	Hold  float64 // fall begins
	End   float64 // value 0 again
}

// EnvelopeStages splits duration into equal thirds from start
func EnvelopeStages(start, duration float64) Stages {
	return Stages{
		Start: start,
		Rise:  start + duration/3,
		Hold:  start + 2*duration/3,
		End:   start + duration,
	}
}

// ScheduleEnvelope writes one rise/hold/fall onto p
func ScheduleEnvelope(p Automatable, start, duration float64) Stages {
	s := EnvelopeStages(start, duration)
	p.SetValueAtTime(0, s.Start)
	p.LinearRampToValueAtTime(1, s.Rise)
	p.SetValueAtTime(1, s.Hold)
	p.LinearRampToValueAtTime(0, s.End)
	return s
}

// Breath gates a parameter with an endless chain of slow envelopes
// separated by silences, independent of whatever plays underneath.
type Breath struct {
	name  string
	param Automatable
	rng   *rand.Rand

	DurationMin, DurationMax float64
	SilenceMin, SilenceMax   float64

	last Stages
}

// NewBreath breathes param with envelopes of 30-60s and 20-40s of
// silence between them
func NewBreath(name string, param Automatable, rng *rand.Rand) *Breath {
	return &Breath{
		name:        name,
		param:       param,
		rng:         rng,
		DurationMin: 30,
		DurationMax: 60,
		SilenceMin:  20,
		SilenceMax:  40,
	}
}

// Name implements Voice
func (b *Breath) Name() string { return b.name }

// Fire schedules one envelope starting after the lead-in and asks to be
// woken once it and the following silence are over
func (b *Breath) Fire(t float64) float64 {
	duration := uniform(b.rng, b.DurationMin, b.DurationMax)
	b.last = ScheduleEnvelope(b.param, t+LeadIn, duration)
	prune(b.param, t)
	return LeadIn + duration + uniform(b.rng, b.SilenceMin, b.SilenceMax)
}

// Last returns the stages of the most recent envelope
func (b *Breath) Last() Stages {
	return b.last
}

// pruneMargin keeps a little automation history for outputs that sample
// slightly behind the transport
const pruneMargin = 10

// prune drops automation points older than t on params that support it
func prune(p any, t float64) {
	if pp, ok := p.(interface{ Prune(before float64) }); ok {
		pp.Prune(t - pruneMargin)
	}
}

// uniform draws from [lo, hi)
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
