package midi

import "sort"

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Controller numbers used for parameter automation
const (
	CCVolume      uint8 = 7
	CCPan         uint8 = 10
	CCExpression  uint8 = 11
	CCAllNotesOff uint8 = 123
)

// Event is a MIDI message scheduled at a transport time (seconds)
type Event struct {
	Time     float64
	Type     uint8 // NoteOn, NoteOff, CC
	Channel  uint8 // 0-15
	Note     uint8 // note number, or controller number for CC
	Velocity uint8 // velocity, or controller value for CC
}

// Sink receives timed events. Implementations must accept events in any
// time order.
type Sink interface {
	Schedule(ev Event)
}

// Binder samples automation parameters into controller changes
type Binder interface {
	Bind(b Binding)
}

// Tee fans events out to several sinks
type Tee []Sink

// Schedule implements Sink
func (t Tee) Schedule(ev Event) {
	for _, s := range t {
		s.Schedule(ev)
	}
}

// Bind implements Binder for every sink that supports it
func (t Tee) Bind(b Binding) {
	for _, s := range t {
		if bs, ok := s.(Binder); ok {
			bs.Bind(b)
		}
	}
}

// SortEvents orders events by time; at equal times note-offs go first so a
// retriggered note is not cut by its own release. Remaining ties are broken
// on the message itself so the order never depends on who scheduled first.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if (a.Type == NoteOff) != (b.Type == NoteOff) {
			return a.Type == NoteOff
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		if a.Note != b.Note {
			return a.Note < b.Note
		}
		return a.Velocity < b.Velocity
	})
}
