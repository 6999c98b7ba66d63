package sequencer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"go-drift/debug"
	"go-drift/transport"
)

// ErrUnknownVoice is returned for a voice name the manager does not know
var ErrUnknownVoice = errors.New("unknown voice")

// VoiceSpec tells the manager how to bring up one voice
type VoiceSpec struct {
	Name    string
	Channel int
	// Group voices must all load before the transport starts
	Group    bool
	Disabled bool

	// Load acquires the voice's player. A failure keeps the voice silent.
	Load func(ctx context.Context) (Player, error)
	// Build creates the voice around its (metered) player
	Build func(p Player, rng *rand.Rand, now float64) (Voice, error)
}

// slot is the manager's record of one voice
type slot struct {
	spec  VoiceSpec
	state VoiceState
	err   error
	meter *Meter
	voice Voice
}

// Manager loads voices concurrently, starts the transport once the start
// group is ready, and keeps track of what every voice is doing
type Manager struct {
	transport *transport.Transport
	runner    *Runner
	seed      int64
	barrier   *transport.Barrier

	mu    sync.RWMutex
	slots []*slot
	index map[string]*slot

	loading sync.WaitGroup

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager prepares specs on tr. Every voice gets its own random source
// derived from seed, so a seed always renders the same piece.
func NewManager(tr *transport.Transport, seed int64, specs []VoiceSpec) *Manager {
	m := &Manager{
		transport:  tr,
		runner:     NewRunner(tr),
		seed:       seed,
		index:      make(map[string]*slot),
		UpdateChan: make(chan struct{}, 1),
	}

	group := 0
	for _, spec := range specs {
		s := &slot{spec: spec, state: StateLoading}
		if spec.Disabled {
			s.state = StateDisabled
		} else if spec.Group {
			group++
		}
		m.slots = append(m.slots, s)
		m.index[spec.Name] = s
	}

	m.barrier = transport.NewBarrier(group, func() {
		debug.Log("manager", "start group ready, starting transport")
		tr.Start()
		m.notify()
	})
	m.runner.OnFire(func(string, float64) { m.notify() })
	return m
}

// Start loads every enabled voice on its own goroutine and arms it as soon
// as it is ready. Voices are torn down when ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	for i, s := range m.slots {
		if s.spec.Disabled {
			continue
		}
		rng := rand.New(rand.NewSource(m.seed + int64(i)))
		m.loading.Add(1)
		go func() {
			defer m.loading.Done()
			m.load(ctx, s, rng)
		}()
	}
}

func (m *Manager) load(ctx context.Context, s *slot, rng *rand.Rand) {
	name := s.spec.Name

	player, err := s.spec.Load(ctx)
	if err != nil {
		m.fail(s, fmt.Errorf("load %s: %w", name, err))
		return
	}
	meter := NewMeter(player)
	v, err := s.spec.Build(meter, rng, m.transport.Now())
	if err != nil {
		m.fail(s, fmt.Errorf("build %s: %w", name, err))
		return
	}
	if err := m.runner.Start(ctx, v); err != nil {
		m.fail(s, fmt.Errorf("start %s: %w", name, err))
		return
	}

	m.mu.Lock()
	s.meter = meter
	s.voice = v
	s.state = StateWaiting
	m.mu.Unlock()
	debug.Log("manager", "%s loaded", name)

	if s.spec.Group {
		m.barrier.Done()
	}
	m.notify()
}

// fail marks a voice as failed. A failed group voice holds the transport
// back for good.
func (m *Manager) fail(s *slot, err error) {
	m.mu.Lock()
	s.state = StateFailed
	s.err = err
	m.mu.Unlock()
	debug.Log("voice", "%v", err)
	m.notify()
}

// Wait blocks until every voice has finished loading (or failed to)
func (m *Manager) Wait() {
	m.loading.Wait()
}

// Ready is closed once the start group has loaded and the transport runs
func (m *Manager) Ready() <-chan struct{} {
	return m.barrier.Ready()
}

// Transport returns the shared clock
func (m *Manager) Transport() *transport.Transport {
	return m.transport
}

// Seed returns the seed the voices were derived from
func (m *Manager) Seed() int64 {
	return m.seed
}

// StopVoice cancels one voice's pending continuation
func (m *Manager) StopVoice(name string) error {
	m.mu.RLock()
	s, ok := m.index[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVoice, name)
	}

	if m.runner.Stop(name) {
		m.mu.Lock()
		s.state = StateStopped
		m.mu.Unlock()
		m.notify()
	}
	return nil
}

// Stop stops every voice
func (m *Manager) Stop() {
	m.runner.StopAll()
	m.mu.Lock()
	for _, s := range m.slots {
		if s.voice != nil && s.state != StateFinished {
			s.state = StateStopped
		}
	}
	m.mu.Unlock()
	m.notify()
}

// Voice returns the status of one voice
func (m *Manager) Voice(name string) (VoiceStatus, error) {
	m.mu.RLock()
	s, ok := m.index[name]
	m.mu.RUnlock()
	if !ok {
		return VoiceStatus{}, fmt.Errorf("%w: %q", ErrUnknownVoice, name)
	}
	return m.status(s), nil
}

// Snapshot returns the status of every voice in registration order
func (m *Manager) Snapshot() []VoiceStatus {
	m.mu.RLock()
	slots := make([]*slot, len(m.slots))
	copy(slots, m.slots)
	m.mu.RUnlock()

	out := make([]VoiceStatus, len(slots))
	for i, s := range slots {
		out[i] = m.status(s)
	}
	return out
}

func (m *Manager) status(s *slot) VoiceStatus {
	m.mu.RLock()
	vs := VoiceStatus{
		Name:    s.spec.Name,
		State:   s.state,
		Group:   s.spec.Group,
		Channel: s.spec.Channel,
	}
	if s.err != nil {
		vs.Error = s.err.Error()
	}
	meter := s.meter
	m.mu.RUnlock()

	if meter != nil {
		vs.Notes, vs.LastNote, vs.LastAt = meter.Read()
	}
	if st, ok := m.runner.Stats(vs.Name); ok {
		vs.Fires = st.Fires
		vs.LastFire = st.LastFire
		if st.Armed {
			vs.NextFire = st.NextFire
		}
		if vs.State == StateWaiting && m.transport.Started() {
			vs.State = StateRunning
		}
		if vs.State == StateRunning && !st.Armed {
			vs.State = StateFinished
		}
	}
	return vs
}

// TransportStatus describes the shared clock
func (m *Manager) TransportStatus() TransportStatus {
	return TransportStatus{
		Started:  m.transport.Started(),
		Position: m.transport.Position(),
		Now:      m.transport.Now(),
		Pending:  m.transport.Pending(),
		Waiting:  m.barrier.Pending(),
		Seed:     m.seed,
	}
}

// notify pokes the UI without blocking
func (m *Manager) notify() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
