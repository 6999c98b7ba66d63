package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-drift/debug"
)

// DeviceEvent is emitted when the watched output port appears or vanishes
type DeviceEvent struct {
	Type DeviceEventType
	Port string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of the output port: it polls
// the port list and reconnects the Output when the port comes back
type DeviceManager struct {
	output   *Output
	want     string
	mu       sync.RWMutex
	current  string
	events   chan DeviceEvent
	pollRate time.Duration

	list func() ([]string, error) // port enumeration, swappable for tests
	open func(name string) error
}

// NewDeviceManager watches for a port matching name (see FindPort) and
// attaches it to output
func NewDeviceManager(output *Output, name string) *DeviceManager {
	return &DeviceManager{
		output:   output,
		want:     name,
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
		list:     ListPorts,
		open:     output.Open,
	}
}

// Events returns a channel of connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Connected returns the attached port name, empty if none
func (dm *DeviceManager) Connected() string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.current
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	names, err := dm.list()
	if err != nil {
		// Port enumeration hung - skip this scan
		debug.Log("ports", "scan: %v", err)
		return
	}

	match := dm.match(names)

	dm.mu.RLock()
	current := dm.current
	dm.mu.RUnlock()

	if current != "" && current != match {
		dm.output.SetSender("", nil)
		dm.setCurrent("")
		debug.Log("ports", "disconnected %s", current)
		dm.emit(DeviceEvent{Type: DeviceDisconnected, Port: current})
		current = ""
	}

	if current == "" && match != "" {
		if err := dm.open(match); err != nil {
			debug.Log("ports", "open %s: %v", match, err)
			return
		}
		dm.setCurrent(match)
		dm.emit(DeviceEvent{Type: DeviceConnected, Port: match})
	}
}

// match picks the wanted port out of names, same rules as FindPort
func (dm *DeviceManager) match(names []string) string {
	if len(names) == 0 {
		return ""
	}
	if dm.want == "" {
		return names[0]
	}
	for _, n := range names {
		if n == dm.want {
			return n
		}
	}
	lower := strings.ToLower(dm.want)
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), lower) {
			return n
		}
	}
	return ""
}

func (dm *DeviceManager) setCurrent(name string) {
	dm.mu.Lock()
	dm.current = name
	dm.mu.Unlock()
}

// emit never blocks the scan; a full channel drops the event
func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
	}
}
