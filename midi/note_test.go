package midi

import (
	"errors"
	"testing"
)

func TestParseNote(t *testing.T) {
	tests := []struct {
		name string
		want uint8
	}{
		{"C4", 60},
		{"A4", 69},
		{"C-1", 0},
		{"G9", 127},
		{"F#3", 54},
		{"Bb2", 46},
		{"c5", 72},
		{"E#4", 65},
	}
	for _, tt := range tests {
		got, err := ParseNote(tt.name)
		if err != nil {
			t.Errorf("ParseNote(%q) error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNote(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestParseNoteRejects(t *testing.T) {
	for _, name := range []string{"", "H4", "C", "Cx4", "G#9", "Cb-1"} {
		if _, err := ParseNote(name); !errors.Is(err, ErrUnknownNote) {
			t.Errorf("ParseNote(%q) err = %v, want ErrUnknownNote", name, err)
		}
	}
}

func TestNoteNameRoundTrip(t *testing.T) {
	for n := 0; n < 128; n++ {
		got, err := ParseNote(NoteName(uint8(n)))
		if err != nil || got != uint8(n) {
			t.Fatalf("round trip of %d via %q = %d, %v", n, NoteName(uint8(n)), got, err)
		}
	}
}

func TestTranspose(t *testing.T) {
	t.Run("OctaveDown", func(t *testing.T) {
		got, err := Transpose("C5", -12)
		if err != nil || got != "C4" {
			t.Errorf("Transpose(C5, -12) = %q, %v", got, err)
		}
	})
	t.Run("SpellsSharps", func(t *testing.T) {
		got, _ := Transpose("Bb3", 0)
		if got != "Bb3" {
			t.Errorf("zero transpose should keep spelling, got %q", got)
		}
		got, _ = Transpose("A3", 1)
		if got != "A#3" {
			t.Errorf("Transpose(A3, 1) = %q, want A#3", got)
		}
	})
	t.Run("OutOfRange", func(t *testing.T) {
		if _, err := Transpose("G9", 1); !errors.Is(err, ErrUnknownNote) {
			t.Errorf("expected ErrUnknownNote, got %v", err)
		}
	})
}

func TestVelocity(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{0, 1},
		{0.1, 13},
		{0.25, 32},
		{1, 127},
		{2, 127},
	}
	for _, tt := range tests {
		if got := Velocity(tt.in); got != tt.want {
			t.Errorf("Velocity(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
