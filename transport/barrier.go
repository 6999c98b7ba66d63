package transport

import "sync"

// Barrier counts pending resources and releases a start signal once all
// of them have reported in. A resource that never reports keeps the
// barrier closed forever.
type Barrier struct {
	mu       sync.Mutex
	pending  int
	release  func()
	released bool
	ready    chan struct{}
}

// NewBarrier waits for n Done calls before running release.
// With n <= 0 it releases immediately.
func NewBarrier(n int, release func()) *Barrier {
	b := &Barrier{
		pending: n,
		release: release,
		ready:   make(chan struct{}),
	}
	if n <= 0 {
		b.pending = 0
		b.open()
	}
	return b
}

// Done marks one resource as ready
func (b *Barrier) Done() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.pending--
	if b.pending > 0 {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	b.open()
}

func (b *Barrier) open() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.released = true
	fn := b.release
	b.mu.Unlock()

	// release runs before Ready unblocks so waiters see its effects
	if fn != nil {
		fn()
	}
	close(b.ready)
}

// Ready is closed once the barrier has released
func (b *Barrier) Ready() <-chan struct{} {
	return b.ready
}

// Pending returns how many resources are still outstanding
func (b *Barrier) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}
