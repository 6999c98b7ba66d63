package transport

import (
	"sort"
	"sync"
)

type rampKind int

const (
	rampSet rampKind = iota
	rampLinear
)

// point is one automation event on a Param timeline
type point struct {
	time  float64
	value float64
	kind  rampKind
}

// Param is a continuous value (gain, pan, ...) automated against transport
// time. Points are kept sorted; a set point holds its value until the next
// point, a linear point ramps from the previous point's value.
//
// Param is safe for concurrent use: voices write automation on the
// transport goroutine while outputs sample it on their own.
type Param struct {
	Name string

	mu      sync.RWMutex
	initial float64
	points  []point
}

// NewParam creates a parameter holding value until automated
func NewParam(name string, value float64) *Param {
	return &Param{Name: name, initial: value}
}

// SetValueAtTime jumps to value at time t
func (p *Param) SetValueAtTime(value, t float64) {
	p.insert(point{time: t, value: value, kind: rampSet})
}

// LinearRampToValueAtTime ramps linearly from the previous point so that
// the parameter reaches value at time t
func (p *Param) LinearRampToValueAtTime(value, t float64) {
	p.insert(point{time: t, value: value, kind: rampLinear})
}

func (p *Param) insert(pt point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// after any existing point at the same time
	i := sort.Search(len(p.points), func(i int) bool {
		return p.points[i].time > pt.time
	})
	p.points = append(p.points, point{})
	copy(p.points[i+1:], p.points[i:])
	p.points[i] = pt
}

// ValueAt evaluates the automation at time t
func (p *Param) ValueAt(t float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	// first point strictly after t
	next := sort.Search(len(p.points), func(i int) bool {
		return p.points[i].time > t
	})

	prevTime, prevValue := 0.0, p.initial
	hasPrev := next > 0
	if hasPrev {
		prevTime, prevValue = p.points[next-1].time, p.points[next-1].value
	}

	if next < len(p.points) && p.points[next].kind == rampLinear {
		n := p.points[next]
		if !hasPrev || n.time <= prevTime {
			return prevValue
		}
		frac := (t - prevTime) / (n.time - prevTime)
		return prevValue + (n.value-prevValue)*frac
	}
	return prevValue
}

// Prune drops points that can no longer affect values at or after t,
// keeping the last point before t as the new starting value.
func (p *Param) Prune(before float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := sort.Search(len(p.points), func(i int) bool {
		return p.points[i].time >= before
	})
	if i <= 1 {
		return
	}
	// keep points[i-1]: it anchors any ramp that ends after `before`
	p.initial = p.points[i-2].value
	p.points = append(p.points[:0], p.points[i-1:]...)
}

// Len returns the number of automation points
func (p *Param) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.points)
}
