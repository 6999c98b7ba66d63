package midi

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go-drift/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrPortNotFound is returned when no output port matches a name
var ErrPortNotFound = errors.New("midi output port not found")

// Clock maps transport time to the wall clock
type Clock interface {
	Position() float64
	WallTime(at float64) time.Time
}

// Parameter refresh rate
const ccFPS = 30

// Output sends scheduled events to a live MIDI port at their wall-clock
// time. Events may be scheduled from any goroutine.
type Output struct {
	clock Clock

	mu       sync.Mutex
	queue    []Event // sorted by time
	send     func(gomidi.Message) error
	portName string
	held     noteCounter

	bindings []Binding
	prevCC   ccState

	wake chan struct{} // signal dispatch loop to recalculate (queue changed)
}

// NewOutput creates an output with no port attached; events are dropped
// at their due time until a port is opened
func NewOutput(clock Clock) *Output {
	return &Output{
		clock:  clock,
		prevCC: make(ccState),
		wake:   make(chan struct{}, 1),
	}
}

// ListPorts returns the names of all MIDI output ports.
// Port enumeration can hang on some systems, so it gives up after 3 seconds.
func ListPorts() ([]string, error) {
	outs, err := outPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names, nil
}

func outPorts() ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(3 * time.Second):
		return nil, fmt.Errorf("listing output ports: timed out")
	}
}

// FindPort returns the output port whose name matches exactly, or failing
// that, the first port containing name (case-insensitive). An empty name
// selects the first port.
func FindPort(name string) (drivers.Out, error) {
	outs, err := outPorts()
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		return nil, ErrPortNotFound
	}
	if name == "" {
		return outs[0], nil
	}
	for _, out := range outs {
		if out.String() == name {
			return out, nil
		}
	}
	lower := strings.ToLower(name)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), lower) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
}

// Open attaches the output to a port by name (see FindPort)
func (o *Output) Open(name string) error {
	port, err := FindPort(name)
	if err != nil {
		return err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return fmt.Errorf("failed to open port %s: %w", port.String(), err)
	}
	o.SetSender(port.String(), send)
	debug.Log("output", "opened %s", port.String())
	return nil
}

// SetSender attaches a send function directly. A nil send detaches.
func (o *Output) SetSender(portName string, send func(gomidi.Message) error) {
	o.mu.Lock()
	o.send = send
	o.portName = portName
	o.prevCC = make(ccState) // new port, resend all controllers
	o.mu.Unlock()
}

// PortName returns the attached port, empty if none
func (o *Output) PortName() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.portName
}

// Bind streams a parameter as control changes
func (o *Output) Bind(b Binding) {
	o.mu.Lock()
	o.bindings = append(o.bindings, b)
	o.mu.Unlock()
}

// Schedule implements Sink
func (o *Output) Schedule(ev Event) {
	o.mu.Lock()
	i := sort.Search(len(o.queue), func(i int) bool {
		return o.queue[i].Time > ev.Time
	})
	o.queue = append(o.queue, Event{})
	copy(o.queue[i+1:], o.queue[i:])
	o.queue[i] = ev
	head := i == 0
	o.mu.Unlock()

	if head {
		o.interrupt()
	}
}

// Queued returns the number of events waiting to be sent
func (o *Output) Queued() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func (o *Output) interrupt() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Run dispatches events and parameter updates until ctx is done, then
// releases every sounding note
func (o *Output) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		o.dispatchLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		o.ccLoop(ctx)
	}()
	wg.Wait()
	o.releaseAll()
}

// dispatchLoop waits for the earliest queued event and sends it
func (o *Output) dispatchLoop(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		o.mu.Lock()
		var wait time.Duration = time.Hour
		if len(o.queue) > 0 {
			wait = time.Until(o.clock.WallTime(o.queue[0].Time))
		}
		o.mu.Unlock()

		if wait <= 0 {
			o.sendDue()
			continue
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case <-o.wake:
			// Queue changed, recalculate
		case <-timer.C:
		}
	}
}

// sendDue pops and sends every event whose time has come
func (o *Output) sendDue() {
	now := o.clock.Position()

	o.mu.Lock()
	n := sort.Search(len(o.queue), func(i int) bool {
		return o.queue[i].Time > now
	})
	if n == 0 && len(o.queue) > 0 {
		n = 1 // woken for the head event, clock rounding
	}
	due := make([]Event, n)
	copy(due, o.queue[:n])
	o.queue = o.queue[n:]

	send := o.send
	var wire []Event
	for _, ev := range due {
		if o.held.filter(ev) {
			wire = append(wire, ev)
		}
	}
	o.mu.Unlock()

	if send == nil {
		return
	}
	for _, ev := range wire {
		o.write(send, ev)
	}
}

// ccLoop samples bound parameters at a fixed rate, sending only changes
func (o *Output) ccLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / ccFPS)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.flushCC(o.clock.Position())
		}
	}
}

func (o *Output) flushCC(at float64) {
	o.mu.Lock()
	send := o.send
	var updates []Event
	for _, b := range o.bindings {
		ev := b.sample(at)
		if o.prevCC.changed(ev) {
			updates = append(updates, ev)
		}
	}
	o.mu.Unlock()

	if send == nil || len(updates) == 0 {
		return
	}
	for _, ev := range updates {
		o.write(send, ev)
	}
}

func (o *Output) write(send func(gomidi.Message) error, ev Event) {
	var msg gomidi.Message
	switch ev.Type {
	case NoteOn:
		msg = gomidi.NoteOn(ev.Channel, ev.Note, ev.Velocity)
	case NoteOff:
		msg = gomidi.NoteOff(ev.Channel, ev.Note)
	case CC:
		msg = gomidi.ControlChange(ev.Channel, ev.Note, ev.Velocity)
	default:
		return
	}
	if err := send(msg); err != nil {
		debug.LogEvery(50, "output", "send %s failed: %v", msg, err)
	}
}

// releaseAll drops the queue and silences every sounding note
func (o *Output) releaseAll() {
	o.mu.Lock()
	send := o.send
	offs := o.held.sounding()
	o.held.reset()
	o.queue = nil
	o.mu.Unlock()

	if send == nil {
		return
	}
	for _, ev := range offs {
		o.write(send, ev)
	}
	for ch := uint8(0); ch < 16; ch++ {
		send(gomidi.ControlChange(ch, CCAllNotesOff, 0))
	}
}

// Close detaches the port and closes the MIDI driver
func (o *Output) Close() error {
	o.releaseAll()
	o.SetSender("", nil)
	gomidi.CloseDriver()
	return nil
}
