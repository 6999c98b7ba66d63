package transport

import (
	"context"
	"testing"
	"time"
)

func TestAdvanceFiresInTimeOrder(t *testing.T) {
	tr := New()
	var got []float64
	record := func(at float64) { got = append(got, at) }

	tr.ScheduleAt(record, 3)
	tr.ScheduleAt(record, 1)
	tr.ScheduleAt(record, 2)

	if n := tr.Advance(10); n != 0 {
		t.Fatalf("fired %d callbacks before Start", n)
	}

	tr.Start()
	if n := tr.Advance(2.5); n != 2 {
		t.Fatalf("fired %d callbacks, want 2", n)
	}
	if tr.Now() != 2.5 {
		t.Errorf("Now() = %v, want 2.5", tr.Now())
	}
	tr.Advance(10)

	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("callback %d fired at %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScheduleOnceIsRelativeToCallbackTime(t *testing.T) {
	tr := New()
	tr.Start()

	var second float64
	tr.ScheduleAt(func(at float64) {
		tr.ScheduleOnce(func(at float64) { second = at }, 4)
	}, 5)

	tr.Advance(20)
	if second != 9 {
		t.Errorf("chained callback fired at %v, want 9", second)
	}
	if tr.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", tr.Pending())
	}
}

func TestScheduleRepeat(t *testing.T) {
	tr := New()
	var ticks []float64
	h := tr.ScheduleRepeat(func(at float64) { ticks = append(ticks, at) }, 0.25)
	tr.Start()

	tr.Advance(1)
	if len(ticks) != 5 {
		t.Fatalf("got %d ticks %v, want 5", len(ticks), ticks)
	}
	for i, at := range ticks {
		if want := float64(i) * 0.25; at != want {
			t.Errorf("tick %d at %v, want %v", i, at, want)
		}
	}

	if !tr.Cancel(h) {
		t.Fatal("Cancel returned false for a live repeat")
	}
	tr.Advance(5)
	if len(ticks) != 5 {
		t.Errorf("repeat kept firing after Cancel: %v", ticks)
	}
	if tr.Cancel(h) {
		t.Error("second Cancel should report false")
	}

	if h := tr.ScheduleRepeat(func(float64) {}, 0); h != 0 {
		t.Error("zero interval should not schedule")
	}
}

func TestRepeatCanCancelItself(t *testing.T) {
	tr := New()
	tr.Start()

	count := 0
	var h Handle
	h = tr.ScheduleRepeat(func(float64) {
		count++
		if count == 3 {
			tr.Cancel(h)
		}
	}, 1)

	tr.Advance(100)
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestCancelOnce(t *testing.T) {
	tr := New()
	tr.Start()

	fired := false
	h := tr.ScheduleOnce(func(float64) { fired = true }, 1)
	tr.Cancel(h)
	tr.Advance(2)

	if fired {
		t.Error("cancelled callback fired")
	}
	if _, ok := tr.Next(); ok {
		t.Error("queue should be empty")
	}
}

func TestRunDispatchesInRealTime(t *testing.T) {
	tr := New()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan float64, 1)
	tr.ScheduleAt(func(at float64) { done <- at }, 0.05)

	go tr.Run(ctx)
	tr.Start()

	select {
	case at := <-done:
		if at != 0.05 {
			t.Errorf("fired with time %v, want 0.05", at)
		}
	case <-ctx.Done():
		t.Fatal("callback never fired")
	}
}

func TestWallTime(t *testing.T) {
	tr := New()
	tr.Start()
	start := tr.WallTime(0)
	later := tr.WallTime(1.5)
	if d := later.Sub(start); d != 1500*time.Millisecond {
		t.Errorf("WallTime delta = %v, want 1.5s", d)
	}
}
