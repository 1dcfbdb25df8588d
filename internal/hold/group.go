package hold

import "time"

// Group owns one engine per category. A single pointer can only press one
// control, so pressing a new control leaves the previous one first.
type Group struct {
	cfg     Config
	engines map[string]*Engine
	active  string
}

func NewGroup(cfg Config) *Group {
	return &Group{cfg: cfg.withDefaults(), engines: make(map[string]*Engine)}
}

// Engine returns the engine for category, creating it on first use.
func (g *Group) Engine(category string) *Engine {
	e, ok := g.engines[category]
	if !ok {
		e = NewEngine(category, g.cfg)
		g.engines[category] = e
	}
	return e
}

// Active returns the category currently pressed, if any.
func (g *Group) Active() (string, bool) {
	if g.active == "" {
		return "", false
	}
	if !g.engines[g.active].Pressed() {
		g.active = ""
		return "", false
	}
	return g.active, true
}

func (g *Group) Press(category string, now time.Time, count int) []Event {
	var events []Event
	if cur, ok := g.Active(); ok && cur != category {
		events = g.engines[cur].Leave(now)
	}
	g.active = category
	return append(events, g.Engine(category).Press(now, count)...)
}

func (g *Group) Release(now time.Time) []Event {
	cur, ok := g.Active()
	if !ok {
		return nil
	}
	g.active = ""
	return g.engines[cur].Release(now)
}

func (g *Group) Leave(now time.Time) []Event {
	cur, ok := g.Active()
	if !ok {
		return nil
	}
	g.active = ""
	return g.engines[cur].Leave(now)
}

func (g *Group) Cancel() {
	for _, e := range g.engines {
		e.Cancel()
	}
	g.active = ""
}

// Fail resets whichever engine is pressed after a failed remove.
func (g *Group) Fail() { g.Cancel() }

func (g *Group) Tick(now time.Time) []Event {
	cur, ok := g.Active()
	if !ok {
		return nil
	}
	return g.engines[cur].Tick(now)
}

// TickFor forwards to the active engine only if gen is still its
// generation.
func (g *Group) TickFor(gen uint64, now time.Time) []Event {
	cur, ok := g.Active()
	if !ok {
		return nil
	}
	return g.engines[cur].TickFor(gen, now)
}

// Generation returns the active engine's generation, or 0.
func (g *Group) Generation() uint64 {
	cur, ok := g.Active()
	if !ok {
		return 0
	}
	return g.engines[cur].Generation()
}

func (g *Group) Observe(category string, count int) {
	if e, ok := g.engines[category]; ok {
		e.Observe(count)
	}
}

// Progress returns the repeat progress of category's engine.
func (g *Group) Progress(category string, now time.Time) float64 {
	e, ok := g.engines[category]
	if !ok {
		return 0
	}
	return e.Progress(now)
}
