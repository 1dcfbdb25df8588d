// Package hold implements the press-and-hold gesture used by the entry
// form: a quick tap adds one item, a long press removes items one at a
// time on a fixed cadence.
//
// The engine is a pure state machine. Every transition takes the current
// time from the caller and returns the events the caller must execute, so
// it never touches a store or a timer itself. It is not safe for
// concurrent use; the TUI drives it from its update loop.
package hold

import (
	"time"

	"github.com/julianstephens/foodmood/internal/constants"
)

// State is the engine's position in the gesture.
type State int

const (
	Idle State = iota
	Armed
	Repeating
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Repeating:
		return "repeating"
	default:
		return "idle"
	}
}

// EventKind says which editor call the caller owes.
type EventKind int

const (
	EventAdd EventKind = iota
	EventRemove
)

func (k EventKind) String() string {
	if k == EventRemove {
		return "remove"
	}
	return "add"
}

// Event is one add or remove the caller must perform.
type Event struct {
	Kind     EventKind
	Category string
}

// Config holds the gesture timings.
type Config struct {
	ArmDelay       time.Duration
	RepeatInterval time.Duration
}

// DefaultConfig returns the 1s arm delay and 2s repeat cycle.
func DefaultConfig() Config {
	return Config{
		ArmDelay:       constants.HoldArmDelay,
		RepeatInterval: constants.HoldRepeatInterval,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ArmDelay <= 0 {
		c.ArmDelay = d.ArmDelay
	}
	if c.RepeatInterval <= 0 {
		c.RepeatInterval = d.RepeatInterval
	}
	return c
}

// Engine tracks the gesture for a single control.
type Engine struct {
	cfg      Config
	category string

	state      State
	down       bool // pointer is pressed on this control
	tap        bool // a release now would count as a click
	armedAt    time.Time
	cycleStart time.Time
	tracked    int
	generation uint64
}

// NewEngine returns an idle engine for category. Zero timings fall back
// to the defaults.
func NewEngine(category string, cfg Config) *Engine {
	return &Engine{category: category, cfg: cfg.withDefaults()}
}

func (e *Engine) Category() string   { return e.category }
func (e *Engine) State() State       { return e.state }
func (e *Engine) Tracked() int       { return e.tracked }
func (e *Engine) Generation() uint64 { return e.generation }
func (e *Engine) Config() Config     { return e.cfg }

// Pressed reports whether a press is in progress, including a press on a
// zero count that never left Idle.
func (e *Engine) Pressed() bool { return e.down }

// Holding reports whether the engine is armed or repeating.
func (e *Engine) Holding() bool { return e.state != Idle }

// Press starts a gesture with the externally known count. A press while
// one is already in progress is ignored.
func (e *Engine) Press(now time.Time, count int) []Event {
	if e.down {
		return nil
	}
	e.generation++
	e.down = true
	e.tap = true
	e.armedAt = now
	e.tracked = count
	if count > 0 {
		e.state = Armed
	}
	return nil
}

// Release ends the gesture. Boundaries already passed are settled first;
// if the arm delay had not elapsed the release is a click and yields one
// add.
func (e *Engine) Release(now time.Time) []Event {
	if !e.down {
		return nil
	}
	events := e.advance(now)
	if e.tap {
		events = append(events, Event{Kind: EventAdd, Category: e.category})
	}
	e.reset()
	return events
}

// Leave ends the gesture without a click. Pointer leave, secondary
// button and focus loss all map here.
func (e *Engine) Leave(now time.Time) []Event {
	if !e.down {
		return nil
	}
	events := e.advance(now)
	e.reset()
	return events
}

// Cancel drops the gesture immediately. Ticks scheduled before the
// cancel become no-ops.
func (e *Engine) Cancel() {
	if e.down || e.state != Idle {
		e.reset()
	}
}

// Fail resets the engine after a remove call reported an error.
func (e *Engine) Fail() { e.Cancel() }

// Tick advances timers to now and returns the removes that came due.
func (e *Engine) Tick(now time.Time) []Event {
	return e.advance(now)
}

// TickFor is Tick guarded by the generation the tick was scheduled for.
func (e *Engine) TickFor(gen uint64, now time.Time) []Event {
	if gen != e.generation {
		return nil
	}
	return e.advance(now)
}

// Observe reconciles with the externally stored count. The tracked count
// only moves down; a higher external value is ignored.
func (e *Engine) Observe(count int) {
	if e.state == Idle || count >= e.tracked {
		return
	}
	if count < 0 {
		count = 0
	}
	e.tracked = count
	if e.tracked > 0 {
		return
	}
	if e.state == Armed {
		// Nothing left to remove; a release still counts as a click.
		e.state = Idle
		return
	}
	e.reset()
}

// Progress is the fraction of the current repeat cycle elapsed, 0 when
// not repeating.
func (e *Engine) Progress(now time.Time) float64 {
	if e.state != Repeating {
		return 0
	}
	p := float64(now.Sub(e.cycleStart)) / float64(e.cfg.RepeatInterval)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// ArmProgress is the fraction of the arm delay elapsed while Armed.
func (e *Engine) ArmProgress(now time.Time) float64 {
	if e.state != Armed {
		return 0
	}
	p := float64(now.Sub(e.armedAt)) / float64(e.cfg.ArmDelay)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

func (e *Engine) advance(now time.Time) []Event {
	if e.state == Armed {
		armAt := e.armedAt.Add(e.cfg.ArmDelay)
		if now.Before(armAt) {
			return nil
		}
		e.tap = false
		if e.tracked <= 0 {
			e.state = Idle
			return nil
		}
		e.state = Repeating
		e.cycleStart = armAt
	}

	var events []Event
	for e.state == Repeating && !now.Before(e.cycleStart.Add(e.cfg.RepeatInterval)) {
		e.tracked--
		events = append(events, Event{Kind: EventRemove, Category: e.category})
		if e.tracked <= 0 {
			e.reset()
			break
		}
		e.cycleStart = e.cycleStart.Add(e.cfg.RepeatInterval)
	}
	return events
}

func (e *Engine) reset() {
	e.state = Idle
	e.down = false
	e.tap = false
	e.tracked = 0
	e.armedAt = time.Time{}
	e.cycleStart = time.Time{}
	e.generation++
}
