package storage

import "sync"

type ChangeOp string

const (
	ChangeSave   ChangeOp = "save"
	ChangeDelete ChangeOp = "delete"
	ChangeClear  ChangeOp = "clear"
	ChangeImport ChangeOp = "import"
)

// Change describes a committed mutation.
type Change struct {
	Op   ChangeOp
	Date string
	ID   int64
}

// Notifier fans change events out to subscribers. Backends embed it and
// call Publish after a successful commit.
type Notifier struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Change)
}

func (n *Notifier) Subscribe(fn func(Change)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(Change))
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *Notifier) Publish(c Change) {
	n.mu.RLock()
	fns := make([]func(Change), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
