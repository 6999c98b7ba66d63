package sequencer

import "go-drift/midi"

// DrumKit maps the percussion voices to the notes a drum machine expects
type DrumKit struct {
	Name  string
	Kick  uint8
	Snare uint8
	Hats  uint8
}

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm": {
		Name:  "General MIDI",
		Kick:  36,
		Snare: 38,
		Hats:  42,
	},
	"rd8": {
		Name:  "Behringer RD-8",
		Kick:  36,
		Snare: 40, // RD-8 uses 40, not 38
		Hats:  42,
	},
	"tr8s": {
		Name:  "Roland TR-8S",
		Kick:  36,
		Snare: 38,
		Hats:  42,
	},
	"er1": {
		Name:  "Korg ER-1",
		Kick:  36, // Perc Synth 1
		Snare: 38, // Perc Synth 2
		Hats:  42, // Closed HH (PCM)
	},
}

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s", "er1"}
}

// GetKit returns a kit by name, defaulting to DefaultKit if not found
func GetKit(name string) DrumKit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}

// Note returns the note name a percussion voice plays, "" if the kit has
// no such voice
func (k DrumKit) Note(voice string) string {
	switch voice {
	case "kick":
		return midi.NoteName(k.Kick)
	case "snare":
		return midi.NoteName(k.Snare)
	case "hats":
		return midi.NoteName(k.Hats)
	}
	return ""
}

// DefaultKit is the default kit name
const DefaultKit = "gm"
