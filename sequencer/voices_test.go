package sequencer

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"go-drift/midi"
	"go-drift/transport"
)

// halfSource makes every Float64 draw 0.5
type halfSource struct{}

func (halfSource) Int63() int64 { return 1 << 62 }
func (halfSource) Seed(int64)   {}

func hitTimes(hits []hit) []float64 {
	out := make([]float64, len(hits))
	for i, h := range hits {
		out[i] = h.at
	}
	return out
}

func TestTongueDrumPlaysPhrase(t *testing.T) {
	p := &fakePlayer{}
	d, err := NewTongueDrum(p, TongueDrumPool, 0.5, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatal(err)
	}
	if d.Interval() != 4 {
		t.Errorf("Interval() = %v, want 4", d.Interval())
	}

	phrase := d.Phrase()
	d.Fire(10)
	hits := p.take()
	if len(hits) != len(phrase) {
		t.Fatalf("played %d notes, phrase has %d", len(hits), len(phrase))
	}
	for i, h := range hits {
		want := 10 + float64(phrase[i].Slot)*0.5 + 0.95
		if math.Abs(h.at-want) > 1e-9 || h.note != phrase[i].Note {
			t.Errorf("hit %d = %+v, want %s at %v", i, h, phrase[i].Note, want)
		}
	}
	// nothing can replace a phrase that has never looped
	if d.Loops() != 1 || !slices.Equal(d.Phrase().Notes(), phrase.Notes()) {
		t.Errorf("after first loop: loops=%d phrase=%v", d.Loops(), d.Phrase())
	}
}

func TestTongueDrumRegenerates(t *testing.T) {
	d, _ := NewTongueDrum(&fakePlayer{}, TongueDrumPool, 0.5, rand.New(rand.NewSource(6)))
	resets := 0
	for i := 0; i < 500; i++ {
		before := d.Loops()
		d.Fire(float64(i) * 4)
		if d.Loops() > 10 {
			t.Fatalf("phrase looped %d times, certain replacement at 10", d.Loops())
		}
		if d.Loops() == 0 {
			resets++
		} else if d.Loops() != before+1 {
			t.Fatalf("loops went %d -> %d", before, d.Loops())
		}
	}
	if resets == 0 {
		t.Error("phrase never regenerated")
	}
}

func TestPercussionPatterns(t *testing.T) {
	tests := []struct {
		name     string
		pattern  Pattern
		src      rand.Source
		interval float64
		want     []float64
	}{
		{"hats all", Hats(), firstSource{}, 0.25, []float64{1, 1.125}},
		{"hats plain", Hats(), halfSource{}, 0.25, []float64{1}},
		{"kick all", Kick(), firstSource{}, 4, []float64{1, 1.5, 4.5}},
		{"kick plain", Kick(), halfSource{}, 4, []float64{1}},
		{"snare all", Snare(), firstSource{}, 4, []float64{2.625, 3, 4.75, 4.875}},
		{"snare plain", Snare(), halfSource{}, 4, []float64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePlayer{}
			perc := NewPercussion(tt.pattern, p, "C2", 0.5, rand.New(tt.src))
			if perc.Interval() != tt.interval {
				t.Errorf("Interval() = %v, want %v", perc.Interval(), tt.interval)
			}
			perc.Fire(0)
			hits := p.take()
			if got := hitTimes(hits); !slices.Equal(got, tt.want) {
				t.Errorf("hits at %v, want %v", got, tt.want)
			}
			for _, h := range hits {
				if h.velocity != tt.pattern.Velocity || h.note != "C2" {
					t.Errorf("hit %+v", h)
				}
			}
		})
	}
}

func TestDroneCooldown(t *testing.T) {
	p := &fakePlayer{}
	d := NewDrone(p, rand.New(firstSource{}), 0)

	d.Fire(5)
	if hits := p.take(); len(hits) != 1 || hits[0].note != "C4" || hits[0].at != 5+LeadIn {
		t.Fatalf("inside cooldown: %+v", hits)
	}

	d.Fire(25)
	hits := p.take()
	notes := []string{}
	for _, h := range hits {
		notes = append(notes, h.note)
		if h.at != 25+LeadIn {
			t.Errorf("%s at %v, want %v", h.note, h.at, 25+LeadIn)
		}
	}
	if !slices.Equal(notes, []string{"C4", "G4", "G5"}) {
		t.Fatalf("after cooldown played %v", notes)
	}
	if last, at := d.LastExtra(); last != "G" || at != 25 {
		t.Errorf("LastExtra() = %s, %v", last, at)
	}

	d.Fire(30)
	if hits := p.take(); len(hits) != 1 {
		t.Errorf("cooldown not restarted: %+v", hits)
	}
}

func TestDroneNeverRepeatsA(t *testing.T) {
	p := &fakePlayer{}
	d := NewDrone(p, rand.New(rand.NewSource(12)), 0)

	prev := "A"
	extras := 0
	for at := 21.0; at < 20000; at += 21 {
		next := d.Fire(at)
		if next < 0 || next >= 10 {
			t.Fatalf("next strike in %v, want [0,10)", next)
		}
		last, when := d.LastExtra()
		if when != at {
			continue
		}
		extras++
		if last == "A" && prev == "A" {
			t.Fatalf("two A embellishments in a row at %v", at)
		}
		prev = last
	}
	if extras == 0 {
		t.Error("no embellishments")
	}
	for _, h := range p.take() {
		if !slices.Contains([]string{"C4", "A4", "G4", "A5", "G5"}, h.note) {
			t.Fatalf("unexpected note %q", h.note)
		}
	}
}

func TestMelodyPhrase(t *testing.T) {
	p := &fakePlayer{}
	gain := transport.NewParam("gain", 0)
	m, err := NewMelody(p, MelodyPrimary, MelodySecondary, gain, rand.New(rand.NewSource(21)))
	if err != nil {
		t.Fatal(err)
	}

	at := 10.0
	for i := 0; i < 100; i++ {
		next := m.Fire(at)
		if next < 2+7 || next >= 4+14 {
			t.Fatalf("next phrase in %v, want [9,18)", next)
		}
		hits := p.take()
		if len(hits) < 3 || len(hits) > 8 {
			t.Fatalf("phrase of %d notes", len(hits))
		}
		if len(hits) != len(m.Last()) {
			t.Fatalf("played %d of %d notes", len(hits), len(m.Last()))
		}
		for j, h := range hits {
			if h.at < at+LeadIn || h.at >= at+LeadIn+8 {
				t.Fatalf("note at %v outside the phrase span", h.at)
			}
			if j > 0 && h.at < hits[j-1].at {
				t.Fatalf("notes out of order: %v", hitTimes(hits))
			}
			if j > 0 && h.note == hits[j-1].note {
				t.Fatalf("adjacent notes both %q", h.note)
			}
			if _, err := midi.ParseNote(h.note); err != nil {
				t.Fatal(err)
			}
		}
		if off := m.Transposition(); !slices.Contains(DefaultOffsets, off) {
			t.Fatalf("transposition %d", off)
		}
		at += next
	}
}

func TestMelodyEmptyPool(t *testing.T) {
	if _, err := NewMelody(&fakePlayer{}, nil, MelodySecondary, nil, rand.New(rand.NewSource(1))); err == nil {
		t.Error("want error for empty primary pool")
	}
}

func TestPanToneSweep(t *testing.T) {
	p := &fakePlayer{}
	pan := transport.NewParam("pan", 0)
	tone := NewPanTone(p, pan, 0.5, rand.New(firstSource{}))

	if tone.Interval() != 4 {
		t.Errorf("Interval() = %v, want 4", tone.Interval())
	}
	tone.Fire(0)

	hits := p.take()
	if len(hits) != 1 || hits[0] != (hit{note: "C2", at: 1, duration: 1, velocity: tone.Velocity}) {
		t.Fatalf("hits = %+v", hits)
	}
	tests := []struct {
		at, want float64
	}{
		{0.5, 0},
		{1, 0},
		{2, -0.5},
		{3, -1},
		{4, -1},
	}
	for _, tt := range tests {
		if got := pan.ValueAt(tt.at); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("pan at %v = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestPanToneHoldsBeforeRamp(t *testing.T) {
	pan := transport.NewParam("pan", 0)
	tone := NewPanTone(&fakePlayer{}, pan, 0.5, rand.New(rand.NewSource(3)))

	for bar := 0; bar < 50; bar++ {
		at := float64(bar) * 4
		before := pan.ValueAt(at + LeadIn)
		tone.Fire(at)
		if got := pan.ValueAt(at + LeadIn); math.Abs(got-before) > 1e-9 {
			t.Fatalf("bar %d: pan jumped from %v to %v", bar, before, got)
		}
		if got := pan.ValueAt(at + LeadIn + tone.Sweep); math.Abs(got-tone.Target()) > 1e-9 {
			t.Fatalf("bar %d: pan reached %v, want %v", bar, got, tone.Target())
		}
		if tone.Target() < -1 || tone.Target() >= 1 {
			t.Fatalf("target %v outside [-1,1)", tone.Target())
		}
	}
}

func TestKits(t *testing.T) {
	tests := []struct {
		kit, voice, want string
	}{
		{"gm", "kick", "C2"},
		{"gm", "hats", "F#2"},
		{"rd8", "snare", "E2"},
		{"missing", "snare", "D2"},
		{"gm", "drone", ""},
	}
	for _, tt := range tests {
		if got := GetKit(tt.kit).Note(tt.voice); got != tt.want {
			t.Errorf("GetKit(%q).Note(%q) = %q, want %q", tt.kit, tt.voice, got, tt.want)
		}
	}
	for _, name := range KitNames() {
		if _, ok := Kits[name]; !ok {
			t.Errorf("KitNames lists %q but Kits has no such kit", name)
		}
	}
}
