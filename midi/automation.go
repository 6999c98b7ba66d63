package midi

// Sampler is anything that can be evaluated at a transport time,
// typically a *transport.Param
type Sampler interface {
	ValueAt(t float64) float64
}

// Binding streams a continuous parameter to a MIDI controller
type Binding struct {
	Name       string
	Param      Sampler
	Channel    int   // 1-16
	Controller uint8 // CC number
	Map        func(v float64) uint8
}

// PanBinding maps a -1..1 pan to CC10
func PanBinding(name string, p Sampler, channel int) Binding {
	return Binding{
		Name:       name,
		Param:      p,
		Channel:    channel,
		Controller: CCPan,
		Map:        Bipolar,
	}
}

// GainBinding maps a 0..1 gain to CC11 expression
func GainBinding(name string, p Sampler, channel int) Binding {
	return Binding{
		Name:       name,
		Param:      p,
		Channel:    channel,
		Controller: CCExpression,
		Map:        Unipolar,
	}
}

// Unipolar maps 0..1 to 0..127
func Unipolar(v float64) uint8 {
	return clamp7(v * 127)
}

// Bipolar maps -1..1 to 0..127 with 0 at 64
func Bipolar(v float64) uint8 {
	return clamp7((v + 1) / 2 * 127)
}

func clamp7(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 127 {
		return 127
	}
	return uint8(v + 0.5)
}

// sample evaluates the binding at t as a CC event
func (b Binding) sample(t float64) Event {
	m := b.Map
	if m == nil {
		m = Unipolar
	}
	ch := b.Channel
	if ch < 1 {
		ch = 1
	}
	return Event{
		Time:     t,
		Type:     CC,
		Channel:  uint8((ch - 1) & 0x0F),
		Note:     b.Controller,
		Velocity: m(b.Param.ValueAt(t)),
	}
}

// ccState remembers the last value sent per channel/controller so
// unchanged values are not resent
type ccState map[[2]uint8]uint8

func (s ccState) changed(ev Event) bool {
	key := [2]uint8{ev.Channel, ev.Note}
	if prev, ok := s[key]; ok && prev == ev.Velocity {
		return false
	}
	s[key] = ev.Velocity
	return true
}
