package sequencer

import (
	"context"
	"math/rand"
	"slices"

	"go-drift/midi"
	"go-drift/transport"
)

// Voice names, in the order the piece registers them
const (
	VoiceTongueDrum = "tongue-drum"
	VoiceHats       = "hats"
	VoiceKick       = "kick"
	VoiceSnare      = "snare"
	VoiceDrone      = "drone"
	VoiceMelody     = "melody"
	VoiceBreath     = "breath"
	VoicePanTone    = "pan-tone"
)

// VoiceNames returns every voice of the piece
func VoiceNames() []string {
	return []string{
		VoiceTongueDrum, VoiceHats, VoiceKick, VoiceSnare,
		VoiceDrone, VoiceMelody, VoiceBreath, VoicePanTone,
	}
}

// VoiceOptions configures one voice of the piece
type VoiceOptions struct {
	Enabled  bool
	Channel  int     // 1-16
	Velocity float64 // scales every velocity the voice plays
}

// DefaultVoiceOptions returns the stock channel layout
func DefaultVoiceOptions() map[string]VoiceOptions {
	return map[string]VoiceOptions{
		VoiceTongueDrum: {Enabled: true, Channel: 1, Velocity: 1},
		VoiceHats:       {Enabled: true, Channel: 10, Velocity: 1},
		VoiceKick:       {Enabled: true, Channel: 10, Velocity: 1},
		VoiceSnare:      {Enabled: true, Channel: 10, Velocity: 1},
		VoiceDrone:      {Enabled: true, Channel: 2, Velocity: 1},
		VoiceMelody:     {Enabled: true, Channel: 3, Velocity: 1},
		VoiceBreath:     {Enabled: true, Channel: 3, Velocity: 1},
		VoicePanTone:    {Enabled: true, Channel: 4, Velocity: 1},
	}
}

// PieceOptions configures the whole piece
type PieceOptions struct {
	Unit   float64 // base time unit in seconds
	Kit    string
	Voices map[string]VoiceOptions // missing voices use the defaults
}

// Engine is where the piece plays: a sink for notes that can also follow
// automation parameters
type Engine interface {
	midi.Sink
	midi.Binder
}

// note lengths per voice, in seconds
const (
	holdTongue     = 2.0
	holdPercussion = 0.1
	holdDrone      = 8.0
	holdMelody     = 1.5
)

// Piece returns the voice specs of the composition playing into engine.
// The percussion layers and the tongue drum form the start group.
func Piece(engine Engine, opts PieceOptions) []VoiceSpec {
	if opts.Unit <= 0 {
		opts.Unit = 0.5
	}
	voices := DefaultVoiceOptions()
	for name, vo := range opts.Voices {
		voices[name] = vo
	}
	kit := GetKit(opts.Kit)
	unit := opts.Unit

	player := func(name string, hold float64, shift int, notes ...string) func(context.Context) (Player, error) {
		vo := voices[name]
		return func(context.Context) (Player, error) {
			p := midi.NewChannelPlayer(engine, vo.Channel, hold).WithShift(shift).WithGain(vo.Velocity)
			if err := p.Check(notes...); err != nil {
				return nil, err
			}
			return p, nil
		}
	}

	// the breath gates the melody's loudness; without it the melody plays
	// at full level
	gainStart := 1.0
	if voices[VoiceBreath].Enabled && voices[VoiceMelody].Enabled {
		gainStart = 0
	}
	gain := transport.NewParam("melody.gain", gainStart)
	pan := transport.NewParam("pan-tone.pan", 0)

	percussion := func(pattern Pattern) VoiceSpec {
		note := kit.Note(pattern.Name)
		return VoiceSpec{
			Name:  pattern.Name,
			Group: true,
			Load:  player(pattern.Name, holdPercussion, 0, note),
			Build: func(p Player, rng *rand.Rand, _ float64) (Voice, error) {
				return NewPercussion(pattern, p, note, unit, rng), nil
			},
		}
	}

	specs := []VoiceSpec{
		{
			Name:  VoiceTongueDrum,
			Group: true,
			Load:  player(VoiceTongueDrum, holdTongue, -12, TongueDrumPool...),
			Build: func(p Player, rng *rand.Rand, _ float64) (Voice, error) {
				return NewTongueDrum(p, TongueDrumPool, unit, rng)
			},
		},
		percussion(Hats()),
		percussion(Kick()),
		percussion(Snare()),
		{
			Name: VoiceDrone,
			Load: player(VoiceDrone, holdDrone, -24, "C4", "A4", "G4", "A5", "G5"),
			Build: func(p Player, rng *rand.Rand, now float64) (Voice, error) {
				return NewDrone(p, rng, now), nil
			},
		},
		{
			Name: VoiceMelody,
			Load: func(ctx context.Context) (Player, error) {
				load := player(VoiceMelody, holdMelody, 0, slices.Concat(MelodyPrimary, MelodySecondary)...)
				p, err := load(ctx)
				if err != nil {
					return nil, err
				}
				engine.Bind(midi.GainBinding(gain.Name, gain, voices[VoiceMelody].Channel))
				return p, nil
			},
			Build: func(p Player, rng *rand.Rand, _ float64) (Voice, error) {
				return NewMelody(p, MelodyPrimary, MelodySecondary, gain, rng)
			},
		},
		{
			Name: VoiceBreath,
			Load: func(context.Context) (Player, error) {
				return nil, nil
			},
			Build: func(_ Player, rng *rand.Rand, _ float64) (Voice, error) {
				return NewBreath(VoiceBreath, gain, rng), nil
			},
		},
		{
			Name: VoicePanTone,
			Load: func(ctx context.Context) (Player, error) {
				p, err := player(VoicePanTone, 0, 0, "C2")(ctx)
				if err != nil {
					return nil, err
				}
				engine.Bind(midi.PanBinding(pan.Name, pan, voices[VoicePanTone].Channel))
				return p, nil
			},
			Build: func(p Player, rng *rand.Rand, _ float64) (Voice, error) {
				return NewPanTone(p, pan, unit, rng), nil
			},
		},
	}

	for i := range specs {
		vo := voices[specs[i].Name]
		specs[i].Channel = vo.Channel
		specs[i].Disabled = !vo.Enabled
		if specs[i].Name == VoiceBreath && !voices[VoiceMelody].Enabled {
			specs[i].Disabled = true // nothing to breathe on
		}
	}
	return specs
}
