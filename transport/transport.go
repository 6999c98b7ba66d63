package transport

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Callback is invoked with the transport time it was scheduled for
type Callback func(t float64)

// Handle identifies a scheduled callback (0 is never a valid handle)
type Handle uint64

// entry is one scheduled callback
type entry struct {
	at       float64
	seq      uint64 // insertion order, breaks ties between equal times
	handle   Handle
	interval float64 // > 0 for repeating callbacks
	cb       Callback
	index    int
}

// timeline implements a time-ordered heap of entries,
// with the earliest callback in timeline[0].
type timeline []*entry

func (q timeline) Len() int { return len(q) }

func (q timeline) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}
	return q[i].at < q[j].at
}

func (q timeline) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timeline) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *timeline) Pop() any {
	old := *q
	e := old[len(old)-1]
	old[len(old)-1] = nil
	e.index = -1
	*q = old[:len(old)-1]
	return e
}

// Transport is the shared clock all voices schedule against.
// Time is measured in seconds from the moment Start is called and only
// moves forward while callbacks are being dispatched, either in real time
// by Run or manually by Advance.
type Transport struct {
	mu      sync.Mutex
	queue   timeline
	handles map[Handle]*entry
	nextSeq uint64
	nextID  Handle

	now     float64
	started bool
	t0      time.Time

	wake chan struct{} // nudges Run when the queue head changes
}

// New creates a stopped transport at time 0
func New() *Transport {
	return &Transport{
		handles: make(map[Handle]*entry),
		wake:    make(chan struct{}, 1),
	}
}

// Now returns the logical transport time: the time of the callback
// currently (or most recently) being dispatched.
func (t *Transport) Now() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

// Start lets time run. Calling it twice is a no-op.
func (t *Transport) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.t0 = time.Now().Add(-secondsToDuration(t.now))
	t.mu.Unlock()
	t.interrupt()
}

// Started reports whether Start has been called
func (t *Transport) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Position returns the wall-clock derived transport position.
// Before Start it equals Now.
func (t *Transport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return t.now
	}
	return time.Since(t.t0).Seconds()
}

// WallTime converts a transport time to the wall-clock instant it will be
// reached. Before Start the conversion assumes time starts now.
func (t *Transport) WallTime(at float64) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return time.Now().Add(secondsToDuration(at - t.now))
	}
	return t.t0.Add(secondsToDuration(at))
}

// ScheduleOnce runs cb once, delay seconds after Now
func (t *Transport) ScheduleOnce(cb Callback, delay float64) Handle {
	t.mu.Lock()
	at := t.now + delay
	t.mu.Unlock()
	return t.ScheduleAt(cb, at)
}

// ScheduleAt runs cb once at the absolute transport time at.
// Times in the past fire on the next dispatch.
func (t *Transport) ScheduleAt(cb Callback, at float64) Handle {
	return t.schedule(cb, at, 0)
}

// ScheduleRepeat runs cb every interval seconds starting at Now.
// A non-positive interval schedules nothing and returns 0.
func (t *Transport) ScheduleRepeat(cb Callback, interval float64) Handle {
	if interval <= 0 {
		return 0
	}
	t.mu.Lock()
	at := t.now
	t.mu.Unlock()
	return t.schedule(cb, at, interval)
}

func (t *Transport) schedule(cb Callback, at, interval float64) Handle {
	t.mu.Lock()
	t.nextID++
	t.nextSeq++
	e := &entry{
		at:       at,
		seq:      t.nextSeq,
		handle:   t.nextID,
		interval: interval,
		cb:       cb,
	}
	heap.Push(&t.queue, e)
	t.handles[e.handle] = e
	t.mu.Unlock()

	t.interrupt()
	return e.handle
}

// Cancel removes a pending callback. Cancelling a repeat stops all further
// repetitions. Returns false if the handle is unknown or already spent.
func (t *Transport) Cancel(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.handles[h]
	if !ok {
		return false
	}
	delete(t.handles, h)
	if e.index >= 0 {
		heap.Remove(&t.queue, e.index)
	}
	return true
}

// Pending returns the number of scheduled callbacks
func (t *Transport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handles)
}

// Next returns the time of the earliest pending callback
func (t *Transport) Next() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		return 0, false
	}
	return t.queue[0].at, true
}

// Advance dispatches every callback due at or before `to`, in time order,
// on the calling goroutine, then moves Now to `to`. It does nothing until
// the transport has been started. Returns the number of callbacks fired.
func (t *Transport) Advance(to float64) int {
	fired := 0
	for {
		t.mu.Lock()
		if !t.started {
			t.mu.Unlock()
			return fired
		}
		if len(t.queue) == 0 || t.queue[0].at > to {
			if to > t.now {
				t.now = to
			}
			t.mu.Unlock()
			return fired
		}

		e := t.queue[0]
		if e.at > t.now {
			t.now = e.at
		}
		if e.interval > 0 {
			// re-arm before firing so the callback may cancel itself
			t.nextSeq++
			e.at += e.interval
			e.seq = t.nextSeq
			heap.Fix(&t.queue, 0)
		} else {
			heap.Pop(&t.queue)
			delete(t.handles, e.handle)
		}
		now := t.now
		t.mu.Unlock()

		e.cb(now)
		fired++
	}
}

// Run dispatches callbacks in real time until ctx is done.
// Only one goroutine should call Run.
func (t *Transport) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		var wait time.Duration = time.Hour

		t.mu.Lock()
		if t.started && len(t.queue) > 0 {
			wait = t.t0.Add(secondsToDuration(t.queue[0].at)).Sub(time.Now())
		}
		t.mu.Unlock()

		if wait <= 0 {
			t.Advance(t.Position())
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
			return ctx.Err()
		case <-t.wake:
			// queue head or start state changed, recalculate
		case <-timer.C:
		}
	}
}

// interrupt signals Run to recalculate its wait
func (t *Transport) interrupt() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
