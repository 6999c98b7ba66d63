package midi

import (
	"bytes"
	"slices"
	"testing"
)

func TestSortEventsIgnoresScheduleOrder(t *testing.T) {
	events := []Event{
		{Time: 1, Type: NoteOn, Channel: 9, Note: 42, Velocity: 13},
		{Time: 1, Type: NoteOn, Channel: 9, Note: 36, Velocity: 32},
		{Time: 1, Type: NoteOff, Channel: 9, Note: 42},
		{Time: 1, Type: CC, Channel: 2, Note: CCPan, Velocity: 64},
		{Time: 1, Type: NoteOn, Channel: 0, Note: 60, Velocity: 127},
		{Time: 0.5, Type: NoteOn, Channel: 9, Note: 38, Velocity: 32},
	}
	want := []Event{
		{Time: 0.5, Type: NoteOn, Channel: 9, Note: 38, Velocity: 32},
		{Time: 1, Type: NoteOff, Channel: 9, Note: 42},
		{Time: 1, Type: NoteOn, Channel: 0, Note: 60, Velocity: 127},
		{Time: 1, Type: NoteOn, Channel: 9, Note: 36, Velocity: 32},
		{Time: 1, Type: NoteOn, Channel: 9, Note: 42, Velocity: 13},
		{Time: 1, Type: CC, Channel: 2, Note: CCPan, Velocity: 64},
	}

	forward := slices.Clone(events)
	SortEvents(forward)
	if !slices.Equal(forward, want) {
		t.Errorf("sorted:\n%v\nwant:\n%v", forward, want)
	}

	backward := slices.Clone(events)
	slices.Reverse(backward)
	SortEvents(backward)
	if !slices.Equal(backward, want) {
		t.Errorf("reversed input sorted:\n%v\nwant:\n%v", backward, want)
	}
}

func TestRecordingIndependentOfScheduleOrder(t *testing.T) {
	write := func(order []string) []byte {
		rec := NewRecorder(120)
		drums := NewChannelPlayer(rec, 10, 0.1)
		for _, note := range order {
			drums.TriggerAttack(note, 2, 0.5)
		}
		var buf bytes.Buffer
		if _, err := rec.WriteTo(&buf); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}

	a := write([]string{"C2", "F#2", "D2"})
	b := write([]string{"D2", "C2", "F#2"})
	if !bytes.Equal(a, b) {
		t.Error("same notes scheduled in a different order wrote different files")
	}
}
