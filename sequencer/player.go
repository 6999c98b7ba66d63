package sequencer

import "sync"

// Player triggers notes at absolute transport times. Velocity is 0-1.
type Player interface {
	TriggerAttack(note string, at, velocity float64)
	TriggerAttackRelease(note string, duration, at, velocity float64)
}

// Meter wraps a Player and remembers what went through it
type Meter struct {
	Player

	mu       sync.Mutex
	count    int
	lastNote string
	lastAt   float64
}

// NewMeter wraps p
func NewMeter(p Player) *Meter {
	return &Meter{Player: p}
}

// TriggerAttack implements Player
func (m *Meter) TriggerAttack(note string, at, velocity float64) {
	m.record(note, at)
	m.Player.TriggerAttack(note, at, velocity)
}

// TriggerAttackRelease implements Player
func (m *Meter) TriggerAttackRelease(note string, duration, at, velocity float64) {
	m.record(note, at)
	m.Player.TriggerAttackRelease(note, duration, at, velocity)
}

func (m *Meter) record(note string, at float64) {
	m.mu.Lock()
	m.count++
	m.lastNote = note
	m.lastAt = at
	m.mu.Unlock()
}

// Read returns the number of triggers and the most recent one
func (m *Meter) Read() (count int, note string, at float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, m.lastNote, m.lastAt
}
