package midi

// noteCounter tracks overlapping notes per channel and key so a release
// belonging to an earlier trigger does not cut a later one short
type noteCounter struct {
	active [16][128]int
}

// filter reports whether ev should reach the wire
func (c *noteCounter) filter(ev Event) bool {
	switch ev.Type {
	case NoteOn:
		c.active[ev.Channel&0x0F][ev.Note&0x7F]++
		return true
	case NoteOff:
		n := &c.active[ev.Channel&0x0F][ev.Note&0x7F]
		if *n == 0 {
			return false
		}
		*n--
		return *n == 0
	}
	return true
}

// sounding returns channel/key pairs that are still on
func (c *noteCounter) sounding() []Event {
	var out []Event
	for ch := range c.active {
		for key, n := range c.active[ch] {
			if n > 0 {
				out = append(out, Event{Type: NoteOff, Channel: uint8(ch), Note: uint8(key)})
			}
		}
	}
	return out
}

func (c *noteCounter) reset() {
	c.active = [16][128]int{}
}
