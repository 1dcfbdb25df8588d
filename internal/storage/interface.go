package storage

import (
	"context"

	"github.com/julianstephens/foodmood/internal/models"
)

// Provider is the Entry Store. Every backend keeps at most one entry per
// date and never persists a tuple with count < 1.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// GetEntryByDate returns the entry stored for date. The bool is false
	// when no entry exists.
	GetEntryByDate(ctx context.Context, date string) (models.DailyEntry, bool, error)
	// GetOrCreateEntry returns the stored entry, or a fresh unpersisted one.
	// It never writes.
	GetOrCreateEntry(ctx context.Context, date string) (models.DailyEntry, error)
	// SaveEntry updates in place when entry has an id and inserts otherwise,
	// assigning the new id. Timestamp is refreshed to the store clock.
	SaveEntry(ctx context.Context, entry *models.DailyEntry) (int64, error)
	// DeleteEntry removes the entry with id. A missing id is not an error.
	DeleteEntry(ctx context.Context, id int64) error
	// GetAllEntries returns every entry, date descending.
	GetAllEntries(ctx context.Context) ([]models.DailyEntry, error)
	// GetEntriesInRange returns entries with start <= date <= end, ascending.
	GetEntriesInRange(ctx context.Context, start, end string) ([]models.DailyEntry, error)
	ClearAllEntries(ctx context.Context) error
	// ImportEntries replaces the whole store with entries in one atomic
	// step. Incoming ids are discarded; timestamps are kept.
	ImportEntries(ctx context.Context, entries []models.DailyEntry) error

	// Subscribe registers fn for change events and returns a func that
	// removes it.
	Subscribe(fn func(Change)) func()

	// Utils
	GetConfigPath() string
}
