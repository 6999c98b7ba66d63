package theme

import (
	"os"
	"path/filepath"
	"testing"
)

const twoToneGPL = `GIMP Palette
Name: two tone
Columns: 2
#
  0   0   0	black
200 100  50	rust
`

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.gpl")
	if err := os.WriteFile(path, []byte(twoToneGPL), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadGPL(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "two tone" || len(p.Colors) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{100, 50, 25}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}
}

func TestLoadGPLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpl")
	os.WriteFile(path, []byte("GIMP Palette\nName: nothing\n"), 0644)
	if _, err := LoadGPL(path); err == nil {
		t.Error("want error for a palette without colours")
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "plasma" {
		t.Errorf("Load(\"\") = %s", p.Name)
	}
}

func TestLookupClamps(t *testing.T) {
	p := Default()
	if p.Lookup(-1) != p.Colors[0] || p.Lookup(2) != p.Colors[len(p.Colors)-1] {
		t.Error("Lookup does not clamp to the ends")
	}
}

func TestGlowFades(t *testing.T) {
	th := New(Default())
	tests := []struct {
		age  float64
		want RGB
	}{
		{-1, th.Palette.Lookup(RoleSuccess)},
		{0, th.Palette.Lookup(RoleSuccess)},
		{fadeTime, th.Palette.Lookup(RoleMuted)},
		{100, th.Palette.Lookup(RoleMuted)},
	}
	for _, tt := range tests {
		if got := th.Glow(tt.age); got != tt.want {
			t.Errorf("Glow(%v) = %v, want %v", tt.age, got, tt.want)
		}
	}
}
