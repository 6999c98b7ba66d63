package midi

import (
	"fmt"

	"go-drift/debug"
)

// ChannelPlayer turns note triggers into timed NoteOn/NoteOff pairs on one
// MIDI channel of a Sink
type ChannelPlayer struct {
	sink    Sink
	channel uint8
	hold    float64 // seconds between NoteOn and NoteOff for plain attacks
	shift   int     // semitones added to every note
	gain    float64 // velocity scale
}

// NewChannelPlayer plays on channel (1-16) of sink. Attacks without an
// explicit release last hold seconds.
func NewChannelPlayer(sink Sink, channel int, hold float64) *ChannelPlayer {
	if channel < 1 {
		channel = 1
	}
	if channel > 16 {
		channel = 16
	}
	return &ChannelPlayer{
		sink:    sink,
		channel: uint8(channel - 1),
		hold:    hold,
		gain:    1,
	}
}

// WithShift returns a copy that transposes every note by semitones
func (p *ChannelPlayer) WithShift(semitones int) *ChannelPlayer {
	cp := *p
	cp.shift = semitones
	return &cp
}

// WithGain returns a copy that scales every velocity
func (p *ChannelPlayer) WithGain(gain float64) *ChannelPlayer {
	cp := *p
	cp.gain = gain
	return &cp
}

// Channel returns the 1-based MIDI channel
func (p *ChannelPlayer) Channel() int {
	return int(p.channel) + 1
}

// TriggerAttack plays note at transport time `at`
func (p *ChannelPlayer) TriggerAttack(note string, at, velocity float64) {
	p.TriggerAttackRelease(note, p.hold, at, velocity)
}

// TriggerAttackRelease plays note at `at` and releases it duration later
func (p *ChannelPlayer) TriggerAttackRelease(note string, duration, at, velocity float64) {
	name, err := Transpose(note, p.shift)
	if err != nil {
		debug.Log("player", "ch=%d drop %q: %v", p.Channel(), note, err)
		return
	}
	key, err := ParseNote(name)
	if err != nil {
		debug.Log("player", "ch=%d drop %q: %v", p.Channel(), note, err)
		return
	}

	p.sink.Schedule(Event{
		Time:     at,
		Type:     NoteOn,
		Channel:  p.channel,
		Note:     key,
		Velocity: Velocity(velocity * p.gain),
	})
	if duration < 0 {
		duration = 0
	}
	p.sink.Schedule(Event{
		Time:    at + duration,
		Type:    NoteOff,
		Channel: p.channel,
		Note:    key,
	})
}

// Check reports the first note that cannot be played once shifted
func (p *ChannelPlayer) Check(notes ...string) error {
	for _, n := range notes {
		name, err := Transpose(n, p.shift)
		if err == nil {
			_, err = ParseNote(name)
		}
		if err != nil {
			return fmt.Errorf("ch=%d %q: %w", p.Channel(), n, err)
		}
	}
	return nil
}
