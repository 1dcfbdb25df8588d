package hold

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func countKinds(events []Event) (adds, removes int) {
	for _, ev := range events {
		switch ev.Kind {
		case EventAdd:
			adds++
		case EventRemove:
			removes++
		}
	}
	return adds, removes
}

// drive presses at 0, ticks every step ms until releaseMs and releases.
func drive(e *Engine, count, step, releaseMs int) []Event {
	var events []Event
	events = append(events, e.Press(at(0), count)...)
	for ms := step; ms < releaseMs; ms += step {
		events = append(events, e.Tick(at(ms))...)
	}
	return append(events, e.Release(at(releaseMs))...)
}

func TestLongHoldRemovesOncePerCycle(t *testing.T) {
	for _, step := range []int{16, 50, 250} {
		e := NewEngine("fruits", DefaultConfig())
		events := drive(e, 5, step, 1000+2*2000+700)

		adds, removes := countKinds(events)
		if adds != 0 || removes != 2 {
			t.Errorf("step %dms: got %d adds, %d removes; want 0 adds, 2 removes", step, adds, removes)
		}
		if e.State() != Idle || e.Pressed() {
			t.Errorf("step %dms: engine not idle after release: %v", step, e.State())
		}
	}
}

func TestQuickTapAddsOnce(t *testing.T) {
	e := NewEngine("fruits", DefaultConfig())
	events := drive(e, 3, 50, 500)

	adds, removes := countKinds(events)
	if adds != 1 || removes != 0 {
		t.Fatalf("got %d adds, %d removes; want 1 add, 0 removes", adds, removes)
	}
	if events[0].Category != "fruits" {
		t.Errorf("add targeted %q", events[0].Category)
	}
}

func TestZeroCountPressIsClick(t *testing.T) {
	e := NewEngine("happy", DefaultConfig())
	e.Press(at(0), 0)
	if e.State() != Idle {
		t.Fatalf("press on zero count entered %v", e.State())
	}
	if !e.Pressed() {
		t.Fatal("press not recorded")
	}
	if got := e.Tick(at(3000)); len(got) != 0 {
		t.Fatalf("tick on zero count produced %v", got)
	}
	adds, removes := countKinds(e.Release(at(3500)))
	if adds != 1 || removes != 0 {
		t.Errorf("got %d adds, %d removes; want 1 add", adds, removes)
	}
}

func TestReleaseAfterArmDelayIsConsumed(t *testing.T) {
	tests := []struct {
		name    string
		release int
		removes int
	}{
		{"exactly at arm delay", 1000, 0},
		{"mid first cycle", 2500, 0},
		{"after one cycle", 3200, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine("sweet", DefaultConfig())
			e.Press(at(0), 4)
			adds, removes := countKinds(e.Release(at(tt.release)))
			if adds != 0 {
				t.Errorf("release after arm delay fired %d adds", adds)
			}
			if removes != tt.removes {
				t.Errorf("got %d removes, want %d", removes, tt.removes)
			}
		})
	}
}

func TestStateTransitions(t *testing.T) {
	e := NewEngine("carbs", DefaultConfig())
	e.Press(at(0), 2)
	if e.State() != Armed {
		t.Fatalf("after press: %v", e.State())
	}
	e.Tick(at(999))
	if e.State() != Armed {
		t.Fatalf("before arm delay: %v", e.State())
	}
	e.Tick(at(1000))
	if e.State() != Repeating {
		t.Fatalf("at arm delay: %v", e.State())
	}
	if got := e.Progress(at(2000)); got != 0.5 {
		t.Errorf("progress halfway = %v", got)
	}
	if _, r := countKinds(e.Tick(at(3000))); r != 1 {
		t.Fatalf("first cycle removes = %d", r)
	}
	if e.Tracked() != 1 || e.State() != Repeating {
		t.Fatalf("after first cycle: tracked %d, %v", e.Tracked(), e.State())
	}
	if _, r := countKinds(e.Tick(at(5000))); r != 1 {
		t.Fatalf("second cycle removes = %d", r)
	}
	if e.State() != Idle || e.Pressed() {
		t.Fatalf("engine should stop at zero, got %v", e.State())
	}
	if got := e.Tick(at(9000)); len(got) != 0 {
		t.Errorf("ticks after reaching zero produced %v", got)
	}
}

func TestLateTickCoversEveryBoundary(t *testing.T) {
	e := NewEngine("meat", DefaultConfig())
	e.Press(at(0), 10)
	_, removes := countKinds(e.Tick(at(1000 + 3*2000 + 10)))
	if removes != 3 {
		t.Fatalf("late tick removes = %d, want 3", removes)
	}
	if e.Tracked() != 7 {
		t.Errorf("tracked = %d, want 7", e.Tracked())
	}
}

func TestLateTickStopsAtZero(t *testing.T) {
	e := NewEngine("meat", DefaultConfig())
	e.Press(at(0), 2)
	_, removes := countKinds(e.Tick(at(60_000)))
	if removes != 2 {
		t.Fatalf("removes = %d, want 2", removes)
	}
}

func TestStaleGenerationIgnored(t *testing.T) {
	e := NewEngine("dance", DefaultConfig())
	e.Press(at(0), 3)
	stale := e.Generation()
	e.Cancel()

	e.Press(at(100), 3)
	if got := e.TickFor(stale, at(5000)); got != nil {
		t.Fatalf("stale tick produced %v", got)
	}
	if e.State() != Armed {
		t.Fatalf("stale tick moved engine to %v", e.State())
	}
	if _, r := countKinds(e.TickFor(e.Generation(), at(3100))); r != 1 {
		t.Errorf("current tick removes = %d, want 1", r)
	}
}

func TestCancelIsSynchronous(t *testing.T) {
	e := NewEngine("dance", DefaultConfig())
	e.Press(at(0), 3)
	gen := e.Generation()
	e.Tick(at(1500))
	e.Cancel()
	if e.State() != Idle || e.Pressed() {
		t.Fatalf("cancel left %v", e.State())
	}
	if got := e.TickFor(gen, at(10_000)); got != nil {
		t.Errorf("tick after cancel produced %v", got)
	}
	if got := e.Release(at(10_000)); got != nil {
		t.Errorf("release after cancel produced %v", got)
	}
}

func TestLeaveNeverAdds(t *testing.T) {
	e := NewEngine("toys", DefaultConfig())
	e.Press(at(0), 2)
	if got := e.Leave(at(300)); len(got) != 0 {
		t.Fatalf("leave during arm produced %v", got)
	}
	e.Press(at(1000), 0)
	if got := e.Leave(at(1100)); len(got) != 0 {
		t.Fatalf("leave on zero count produced %v", got)
	}
}

func TestObserveOnlyLowers(t *testing.T) {
	t.Run("higher external count ignored", func(t *testing.T) {
		e := NewEngine("fruits", DefaultConfig())
		e.Press(at(0), 3)
		e.Tick(at(3000)) // tracked 2
		e.Observe(3)     // stale read from before the remove landed
		if e.Tracked() != 2 {
			t.Fatalf("tracked = %d, want 2", e.Tracked())
		}
	})

	t.Run("lower external count tightens", func(t *testing.T) {
		e := NewEngine("fruits", DefaultConfig())
		e.Press(at(0), 5)
		e.Tick(at(1000))
		e.Observe(1)
		if e.Tracked() != 1 {
			t.Fatalf("tracked = %d, want 1", e.Tracked())
		}
		_, r := countKinds(e.Tick(at(20_000)))
		if r != 1 {
			t.Errorf("removes after tightening = %d, want 1", r)
		}
	})

	t.Run("external zero stops repeating", func(t *testing.T) {
		e := NewEngine("fruits", DefaultConfig())
		e.Press(at(0), 5)
		e.Tick(at(1000))
		e.Observe(0)
		if e.State() != Idle {
			t.Fatalf("state = %v, want idle", e.State())
		}
		if got := e.Tick(at(9000)); len(got) != 0 {
			t.Errorf("ticks after external zero produced %v", got)
		}
	})

	t.Run("external zero while armed", func(t *testing.T) {
		e := NewEngine("fruits", DefaultConfig())
		e.Press(at(0), 1)
		e.Observe(0)
		if e.State() != Idle {
			t.Fatalf("state = %v, want idle", e.State())
		}
		adds, _ := countKinds(e.Release(at(400)))
		if adds != 1 {
			t.Errorf("tap after external zero adds = %d, want 1", adds)
		}
	})
}

func TestFailResets(t *testing.T) {
	e := NewEngine("anxious", DefaultConfig())
	e.Press(at(0), 4)
	e.Tick(at(3000))
	e.Fail()
	if e.State() != Idle || e.Tracked() != 0 {
		t.Fatalf("fail left %v tracked=%d", e.State(), e.Tracked())
	}
}

func TestCustomTimings(t *testing.T) {
	e := NewEngine("calm", Config{ArmDelay: 200 * time.Millisecond, RepeatInterval: 100 * time.Millisecond})
	e.Press(at(0), 10)
	_, r := countKinds(e.Tick(at(550)))
	if r != 3 {
		t.Errorf("removes = %d, want 3", r)
	}
}

func TestZeroConfigUsesDefaults(t *testing.T) {
	cfg := NewEngine("calm", Config{}).Config()
	if cfg != DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestSecondPressIgnoredWhilePressed(t *testing.T) {
	e := NewEngine("bored", DefaultConfig())
	e.Press(at(0), 3)
	gen := e.Generation()
	e.Press(at(500), 3)
	if e.Generation() != gen {
		t.Error("second press restarted the gesture")
	}
}
