package transport

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParamSetAndRamp(t *testing.T) {
	p := NewParam("gain", 0.5)

	if v := p.ValueAt(3); v != 0.5 {
		t.Fatalf("unautomated value = %v, want 0.5", v)
	}

	p.SetValueAtTime(0, 100)
	p.LinearRampToValueAtTime(1, 110)
	p.SetValueAtTime(1, 120)
	p.LinearRampToValueAtTime(0, 130)

	tests := []struct {
		at   float64
		want float64
	}{
		{99, 0.5},
		{100, 0},
		{105, 0.5},
		{110, 1},
		{115, 1},
		{120, 1},
		{125, 0.5},
		{130, 0},
		{200, 0},
	}
	for _, tt := range tests {
		if got := p.ValueAt(tt.at); !near(got, tt.want) {
			t.Errorf("ValueAt(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestParamInsertKeepsOrder(t *testing.T) {
	p := NewParam("pan", 0)
	p.LinearRampToValueAtTime(1, 3)
	p.SetValueAtTime(-1, 1)

	if got := p.ValueAt(2); !near(got, 0) {
		t.Errorf("ValueAt(2) = %v, want 0 (midway from -1 to 1)", got)
	}
}

func TestParamPrune(t *testing.T) {
	p := NewParam("gain", 0)
	for i := 0; i < 10; i++ {
		p.SetValueAtTime(float64(i), float64(i))
	}
	p.LinearRampToValueAtTime(20, 20)

	before := p.ValueAt(15)
	p.Prune(12)
	if p.Len() != 2 {
		t.Errorf("Len() = %d after prune, want 2", p.Len())
	}
	if after := p.ValueAt(15); !near(before, after) {
		t.Errorf("prune changed ValueAt(15): %v -> %v", before, after)
	}
}
