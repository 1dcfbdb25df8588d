// Package editor applies single-item edits to a day's entry. It owns the
// delete-when-empty policy, rejects future dates, and serializes all
// mutations for one date so concurrent edits never lose an update.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/foodmood/internal/clock"
	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/logger"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/storage"
)

type Editor struct {
	store storage.Provider
	clock clock.Clock
	ids   clock.IDGenerator
	loc   *time.Location

	mu    sync.Mutex
	locks map[string]*dateLock
}

type dateLock struct {
	mu   sync.Mutex
	refs int
}

type Option func(*Editor)

func WithClock(c clock.Clock) Option {
	return func(e *Editor) { e.clock = c }
}

func WithIDGenerator(g clock.IDGenerator) Option {
	return func(e *Editor) { e.ids = g }
}

// WithLocation sets the time zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Editor) { e.loc = loc }
}

func New(store storage.Provider, opts ...Option) *Editor {
	e := &Editor{
		store: store,
		clock: clock.RealClock{},
		ids:   clock.UUIDGenerator{},
		loc:   time.Local,
		locks: make(map[string]*dateLock),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying entry store.
func (e *Editor) Store() storage.Provider { return e.store }

// Today is the current date in the editor's time zone.
func (e *Editor) Today() string {
	return clock.Today(e.clock, e.loc)
}

// IsFuture reports whether date is strictly after today.
func (e *Editor) IsFuture(date string) bool {
	return date > e.Today()
}

// Add increments category on date.
func (e *Editor) Add(ctx context.Context, date string, kind models.Kind, category string) (models.DailyEntry, error) {
	return e.mutate(ctx, "add", date, kind, category, func(entry *models.DailyEntry) bool {
		entry.Add(kind, category)
		return true
	})
}

// Remove decrements category on date. Removing an absent category is a
// no-op that returns the current state.
func (e *Editor) Remove(ctx context.Context, date string, kind models.Kind, category string) (models.DailyEntry, error) {
	return e.mutate(ctx, "remove", date, kind, category, func(entry *models.DailyEntry) bool {
		return entry.Remove(kind, category)
	})
}

// Load returns the entry for date, or a fresh empty one. It never writes.
func (e *Editor) Load(ctx context.Context, date string) (models.DailyEntry, error) {
	if err := models.ValidateDate(date); err != nil {
		return models.DailyEntry{}, err
	}
	return e.store.GetOrCreateEntry(ctx, date)
}

// DeleteDate removes the whole entry for date. A date with no entry is
// left alone.
func (e *Editor) DeleteDate(ctx context.Context, date string) error {
	if err := e.checkDate(date); err != nil {
		return err
	}

	unlock := e.lock(date)
	defer unlock()

	entry, ok, err := e.store.GetEntryByDate(ctx, date)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := e.store.DeleteEntry(ctx, entry.ID); err != nil {
		return err
	}

	logger.Info("Deleted entry", "op", e.ids.New(), "date", date, "id", entry.ID)
	return nil
}

func (e *Editor) checkDate(date string) error {
	if err := models.ValidateDate(date); err != nil {
		return err
	}
	if e.IsFuture(date) {
		return errors.ErrFutureDate
	}
	return nil
}

func (e *Editor) mutate(ctx context.Context, op, date string, kind models.Kind, category string, apply func(*models.DailyEntry) bool) (models.DailyEntry, error) {
	if err := models.ValidateDate(date); err != nil {
		return models.DailyEntry{}, err
	}
	if !kind.Valid(category) {
		return models.DailyEntry{}, errors.Invalid("category", "%q is not one of the %s", category, kind)
	}
	if e.IsFuture(date) {
		return models.DailyEntry{}, errors.ErrFutureDate
	}

	unlock := e.lock(date)
	defer unlock()

	opID := e.ids.New()
	entry, err := e.store.GetOrCreateEntry(ctx, date)
	if err != nil {
		logger.Error("Failed to read entry", "op", opID, "date", date, "error", err)
		return models.DailyEntry{}, err
	}
	if !apply(&entry) {
		logger.Debug("Edit changed nothing", "op", opID, "action", op, "date", date, "category", category)
		return entry, nil
	}

	switch {
	case entry.IsEmpty() && entry.Persisted():
		if err := e.store.DeleteEntry(ctx, entry.ID); err != nil {
			logger.Error("Failed to delete empty entry", "op", opID, "date", date, "error", err)
			return models.DailyEntry{}, err
		}
		entry = models.NewEntry(date)
	case entry.IsEmpty():
		// Never persist an empty day.
	default:
		if _, err := e.store.SaveEntry(ctx, &entry); err != nil {
			logger.Error("Failed to save entry", "op", opID, "date", date, "error", err)
			return models.DailyEntry{}, err
		}
	}

	logger.Debug("Edited entry", "op", opID, "action", op, "date", date,
		"kind", kind, "category", category, "count", entry.Count(kind, category))
	return entry, nil
}

// lock takes the per-date mutex and returns its release func. Entries are
// dropped from the map once nobody holds or waits on them.
func (e *Editor) lock(date string) func() {
	e.mu.Lock()
	l, ok := e.locks[date]
	if !ok {
		l = &dateLock{}
		e.locks[date] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, date)
		}
		e.mu.Unlock()
	}
}

// FormatDate renders t as an entry date in the editor's time zone.
func (e *Editor) FormatDate(t time.Time) string {
	return t.In(e.loc).Format(constants.DateFormat)
}
