package midi

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// PPQ is the resolution of recorded files (ticks per quarter note)
const PPQ = 960

// Recorder collects scheduled events and writes them as a Standard MIDI
// File: a tempo track followed by one track per used channel.
type Recorder struct {
	bpm float64

	mu       sync.Mutex
	events   []Event
	bindings []Binding
	prevCC   ccState
	sampled  float64 // parameters are sampled up to here
	names    map[uint8]string

	flushEvery time.Duration // live sampling period, see Run
}

// NewRecorder records against a fixed tempo; transport seconds are
// converted to ticks with it
func NewRecorder(bpm float64) *Recorder {
	if bpm <= 0 {
		bpm = 120
	}
	return &Recorder{
		bpm:        bpm,
		prevCC:     make(ccState),
		names:      make(map[uint8]string),
		flushEvery: time.Second / 4,
	}
}

// Schedule implements Sink
func (r *Recorder) Schedule(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Bind records a parameter as control changes (see Flush)
func (r *Recorder) Bind(b Binding) {
	r.mu.Lock()
	r.bindings = append(r.bindings, b)
	r.mu.Unlock()
}

// NameChannel sets the track name written for a 1-based channel
func (r *Recorder) NameChannel(channel int, name string) {
	r.mu.Lock()
	r.names[uint8((channel-1)&0x0F)] = name
	r.mu.Unlock()
}

// Flush samples bound parameters at the parameter rate up to `until`,
// recording only changed values
func (r *Recorder) Flush(until float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step := 1.0 / ccFPS
	for t := r.sampled; t <= until; t += step {
		for _, b := range r.bindings {
			ev := b.sample(t)
			if r.prevCC.changed(ev) {
				r.events = append(r.events, ev)
			}
		}
		r.sampled = t + step
	}
}

// Run samples bound parameters while a live session plays, until ctx is
// done. Parameters drop old automation points, so they must be sampled
// while those points still exist.
func (r *Recorder) Run(ctx context.Context, clock Clock) {
	ticker := time.NewTicker(r.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Flush(clock.Position())
		}
	}
}

// Len returns the number of recorded events
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Events returns a time-sorted copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	r.mu.Unlock()
	SortEvents(out)
	return out
}

func (r *Recorder) ticks(seconds float64) uint32 {
	if seconds <= 0 {
		return 0
	}
	return uint32(math.Round(seconds * r.bpm / 60 * PPQ))
}

// SMF builds the file
func (r *Recorder) SMF() (*smf.SMF, error) {
	events := r.Events()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(PPQ)

	// Track 0: tempo track
	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(r.bpm))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	byChannel := make(map[uint8][]Event)
	var order []uint8
	for _, ev := range events {
		if _, ok := byChannel[ev.Channel]; !ok {
			order = append(order, ev.Channel)
		}
		byChannel[ev.Channel] = append(byChannel[ev.Channel], ev)
	}

	r.mu.Lock()
	names := make(map[uint8]string, len(r.names))
	for k, v := range r.names {
		names[k] = v
	}
	r.mu.Unlock()

	for _, ch := range order {
		var track smf.Track
		if name, ok := names[ch]; ok {
			track.Add(0, smf.MetaTrackSequenceName(name))
		}

		var held noteCounter
		var last uint32
		for _, ev := range byChannel[ch] {
			if !held.filter(ev) {
				continue
			}
			var msg gomidi.Message
			switch ev.Type {
			case NoteOn:
				msg = gomidi.NoteOn(ev.Channel, ev.Note, ev.Velocity)
			case NoteOff:
				msg = gomidi.NoteOff(ev.Channel, ev.Note)
			case CC:
				msg = gomidi.ControlChange(ev.Channel, ev.Note, ev.Velocity)
			default:
				continue
			}
			tick := r.ticks(ev.Time)
			track.Add(tick-last, msg)
			last = tick
		}
		track.Close(0)
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("error adding channel %d track: %w", ch+1, err)
		}
	}
	return s, nil
}

// WriteTo writes the file to w
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	s, err := r.SMF()
	if err != nil {
		return 0, err
	}
	return s.WriteTo(w)
}

// Save writes the file to path
func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
