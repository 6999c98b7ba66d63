package sequencer

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go-drift/debug"
	"go-drift/transport"
)

// LeadIn is added to every dispatch time so that triggers always target
// a future instant rather than one the output may already have passed
const LeadIn = 1.0

// ErrVoiceRunning is returned when starting a voice whose name is taken
var ErrVoiceRunning = errors.New("voice already running")

// Voice is one independent generator. Fire does one unit of work at
// transport time t and returns the delay until it wants to fire again;
// a negative delay ends the chain.
type Voice interface {
	Name() string
	Fire(t float64) float64
}

// Periodic voices fire on a fixed grid instead; the value returned by
// Fire is ignored
type Periodic interface {
	Voice
	Interval() float64
}

// Clock is the part of the transport the runner schedules on
type Clock interface {
	Now() float64
	ScheduleOnce(cb transport.Callback, delay float64) transport.Handle
	ScheduleRepeat(cb transport.Callback, interval float64) transport.Handle
	Cancel(h transport.Handle) bool
}

// ChainStats describes one voice's schedule
type ChainStats struct {
	Fires    int
	LastFire float64
	NextFire float64
	Armed    bool
	Periodic bool
}

// chain is a voice plus the single continuation it has armed
type chain struct {
	voice    Voice
	periodic bool
	handle   transport.Handle // 0 when nothing is pending
	stopped  bool
	release  func() bool // detaches the context watcher

	fires    int
	lastFire float64
	nextFire float64
}

// Runner keeps voices firing. Each fire computes one unit of work and the
// runner, not the voice, arms the next invocation, so a chain can be torn
// down at any moment by cancelling its one pending handle.
type Runner struct {
	clock Clock

	mu     sync.Mutex
	chains map[string]*chain
	onFire func(name string, t float64)
}

// NewRunner schedules voices on clock
func NewRunner(clock Clock) *Runner {
	return &Runner{
		clock:  clock,
		chains: make(map[string]*chain),
	}
}

// OnFire registers a hook called after every fire (on the transport
// goroutine)
func (r *Runner) OnFire(fn func(name string, t float64)) {
	r.mu.Lock()
	r.onFire = fn
	r.mu.Unlock()
}

// Start arms v. Periodic voices first fire at the current transport time
// and then every Interval; others fire now and re-arm themselves. The
// chain stops when ctx is cancelled.
func (r *Runner) Start(ctx context.Context, v Voice) error {
	name := v.Name()

	r.mu.Lock()
	if c, ok := r.chains[name]; ok && !c.stopped {
		r.mu.Unlock()
		return ErrVoiceRunning
	}

	c := &chain{voice: v}
	fire := func(t float64) { r.fire(c, t) }
	if p, ok := v.(Periodic); ok {
		c.periodic = true
		c.handle = r.clock.ScheduleRepeat(fire, p.Interval())
	} else {
		c.handle = r.clock.ScheduleOnce(fire, 0)
	}
	c.nextFire = r.clock.Now()
	r.chains[name] = c
	r.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		r.stopChain(c)
	})
	r.mu.Lock()
	c.release = stop
	r.mu.Unlock()

	debug.Log("voice", "%s armed (periodic=%v)", name, c.periodic)
	return nil
}

func (r *Runner) fire(c *chain, t float64) {
	r.mu.Lock()
	if c.stopped {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	next := c.voice.Fire(t)

	r.mu.Lock()
	c.fires++
	c.lastFire = t
	if c.stopped {
		r.mu.Unlock()
		return
	}
	switch {
	case c.periodic:
		c.nextFire = t + c.voice.(Periodic).Interval()
	case next < 0:
		c.handle = 0
		c.stopped = true
		debug.Log("voice", "%s finished", c.voice.Name())
	default:
		c.handle = r.clock.ScheduleOnce(func(at float64) { r.fire(c, at) }, next)
		c.nextFire = t + next
	}
	hook := r.onFire
	r.mu.Unlock()

	if hook != nil {
		hook(c.voice.Name(), t)
	}
}

// Stop cancels a voice's pending continuation immediately.
// Returns false if no such voice is running.
func (r *Runner) Stop(name string) bool {
	r.mu.Lock()
	c, ok := r.chains[name]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return r.stopChain(c)
}

func (r *Runner) stopChain(c *chain) bool {
	r.mu.Lock()
	if c.stopped {
		r.mu.Unlock()
		return false
	}
	c.stopped = true
	h := c.handle
	c.handle = 0
	release := c.release
	r.mu.Unlock()

	if h != 0 {
		r.clock.Cancel(h)
	}
	if release != nil {
		release()
	}
	debug.Log("voice", "%s stopped", c.voice.Name())
	return true
}

// StopAll stops every voice
func (r *Runner) StopAll() {
	for _, name := range r.Names() {
		r.Stop(name)
	}
}

// Pending returns how many continuations the voice has armed (0 or 1)
func (r *Runner) Pending(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chains[name]
	if !ok || c.stopped || c.handle == 0 {
		return 0
	}
	return 1
}

// Stats returns the schedule of a voice
func (r *Runner) Stats(name string) (ChainStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chains[name]
	if !ok {
		return ChainStats{}, false
	}
	return ChainStats{
		Fires:    c.fires,
		LastFire: c.lastFire,
		NextFire: c.nextFire,
		Armed:    !c.stopped && c.handle != 0,
		Periodic: c.periodic,
	}, true
}

// Names returns the started voices, sorted
func (r *Runner) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.chains))
	for n := range r.chains {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
