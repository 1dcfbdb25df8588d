// Package diskv stores one JSON document per date in a directory tree.
package diskv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"github.com/julianstephens/foodmood/internal/clock"
	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/logger"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/storage"
)

const (
	seqKey     = "sequence"
	fileSuffix = ".json"
)

type Store struct {
	storage.Notifier

	// mu serializes every read-modify-write so date uniqueness and the id
	// sequence stay consistent.
	mu       sync.Mutex
	basePath string
	clock    clock.Clock
	d        *diskv.Diskv
}

var _ storage.Provider = (*Store)(nil)

// IsPath reports whether path selects this backend.
func IsPath(path string) bool {
	return strings.HasSuffix(path, "/") || strings.HasSuffix(path, ".d")
}

func New(path string, opts ...storage.Option) *Store {
	o := storage.BuildOptions(opts...)
	return &Store{
		basePath: filepath.Clean(strings.TrimSuffix(path, "/")),
		clock:    o.Clock,
	}
}

func open(basePath string) *diskv.Diskv {
	return diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})
}

// keyToPathTransform files "2024-01-05" under 2024/01/2024-01-05.json.
func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, "-")
	if len(parts) == 3 {
		return &diskv.PathKey{
			Path:     parts[:2],
			FileName: key + fileSuffix,
		}
	}
	return &diskv.PathKey{FileName: key}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.TrimSuffix(pathKey.FileName, fileSuffix)
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.basePath, 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	s.d = open(s.basePath)
	if !s.d.Has(seqKey) {
		if err := s.writeSeq(s.d, 0); err != nil {
			return fmt.Errorf("failed to initialize sequence: %w", err)
		}
	}
	return nil
}

func (s *Store) Load() error {
	if s.d != nil {
		return nil
	}
	if _, err := os.Stat(s.basePath); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'foodmood init' first")
	}
	s.d = open(s.basePath)
	return nil
}

func (s *Store) Close() error {
	s.d = nil
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.basePath
}

func (s *Store) ready() error {
	if s.d == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *Store) readSeq(d *diskv.Diskv) (int64, error) {
	if !d.Has(seqKey) {
		return 0, nil
	}
	raw, err := d.Read(seqKey)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
}

func (s *Store) writeSeq(d *diskv.Diskv, seq int64) error {
	return d.Write(seqKey, []byte(strconv.FormatInt(seq, 10)))
}

func (s *Store) read(key string) (models.DailyEntry, error) {
	raw, err := s.d.Read(key)
	if err != nil {
		return models.DailyEntry{}, err
	}
	var entry models.DailyEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return models.DailyEntry{}, fmt.Errorf("%s: %w", key, err)
	}
	entry.Normalize()
	return entry, nil
}

func write(d *diskv.Diskv, entry models.DailyEntry) error {
	entry.Normalize()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return d.Write(entry.Date, data)
}

// all reads every entry. The first unreadable document fails the whole read.
func (s *Store) all(ctx context.Context, op string) ([]models.DailyEntry, error) {
	var out []models.DailyEntry
	for key := range s.d.Keys(ctx.Done()) {
		if key == seqKey || models.ValidateDate(key) != nil {
			continue
		}
		entry, err := s.read(key)
		if err != nil {
			return nil, errors.Storage(op, err)
		}
		out = append(out, entry)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Storage(op, err)
	}
	return out, nil
}

func (s *Store) findByID(ctx context.Context, op string, id int64) (models.DailyEntry, bool, error) {
	entries, err := s.all(ctx, op)
	if err != nil {
		return models.DailyEntry{}, false, err
	}
	for _, entry := range entries {
		if entry.ID == id {
			return entry, true, nil
		}
	}
	return models.DailyEntry{}, false, nil
}

func (s *Store) GetEntryByDate(ctx context.Context, date string) (models.DailyEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return models.DailyEntry{}, false, errors.Storage("get", err)
	}
	if models.ValidateDate(date) != nil || !s.d.Has(date) {
		return models.DailyEntry{}, false, nil
	}
	entry, err := s.read(date)
	if err != nil {
		return models.DailyEntry{}, false, errors.Storage("get", err)
	}
	return entry, true, nil
}

func (s *Store) GetOrCreateEntry(ctx context.Context, date string) (models.DailyEntry, error) {
	entry, ok, err := s.GetEntryByDate(ctx, date)
	if err != nil {
		return models.DailyEntry{}, err
	}
	if !ok {
		return models.NewEntry(date), nil
	}
	return entry, nil
}

func (s *Store) SaveEntry(ctx context.Context, entry *models.DailyEntry) (int64, error) {
	if err := storage.ValidateEntry(entry); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return 0, errors.Storage("save", err)
	}

	id := entry.ID
	if id != 0 {
		existing, ok, err := s.findByID(ctx, "save", id)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, errors.Storage("save", fmt.Errorf("entry %d: %w", id, errors.ErrNotFound))
		}
		if existing.Date != entry.Date {
			return 0, errors.Invalid("date", "entry %d belongs to %s and cannot move to %s", id, existing.Date, entry.Date)
		}
	} else {
		if s.d.Has(entry.Date) {
			return 0, errors.Storage("save", fmt.Errorf("an entry for %s already exists", entry.Date))
		}
		seq, err := s.readSeq(s.d)
		if err != nil {
			return 0, errors.Storage("save", err)
		}
		id = seq + 1
		if err := s.writeSeq(s.d, id); err != nil {
			return 0, errors.Storage("save", err)
		}
	}

	saved := entry.Clone()
	saved.ID = id
	saved.Timestamp = s.clock.Now().UnixMilli()
	if err := write(s.d, saved); err != nil {
		return 0, errors.Storage("save", err)
	}

	entry.ID = saved.ID
	entry.Timestamp = saved.Timestamp
	s.Publish(storage.Change{Op: storage.ChangeSave, Date: entry.Date, ID: id})
	return id, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return errors.Storage("delete", err)
	}

	existing, ok, err := s.findByID(ctx, "delete", id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := s.d.Erase(existing.Date); err != nil {
		return errors.Storage("delete", err)
	}
	s.Publish(storage.Change{Op: storage.ChangeDelete, Date: existing.Date, ID: id})
	return nil
}

func (s *Store) GetAllEntries(ctx context.Context) ([]models.DailyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, errors.Storage("list", err)
	}
	entries, err := s.all(ctx, "list")
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	return entries, nil
}

func (s *Store) GetEntriesInRange(ctx context.Context, start, end string) ([]models.DailyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, errors.Storage("range", err)
	}
	stored, err := s.all(ctx, "range")
	if err != nil {
		return nil, err
	}
	var entries []models.DailyEntry
	for _, entry := range stored {
		if entry.Date >= start && entry.Date <= end {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

func (s *Store) ClearAllEntries(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return errors.Storage("clear", err)
	}
	entries, err := s.all(ctx, "clear")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.d.Erase(entry.Date); err != nil {
			return errors.Storage("clear", err)
		}
	}
	s.Publish(storage.Change{Op: storage.ChangeClear})
	return nil
}

// ImportEntries writes the new data set into a staging directory and swaps
// it in with renames, so a failure leaves the current directory untouched.
func (s *Store) ImportEntries(ctx context.Context, entries []models.DailyEntry) error {
	for i := range entries {
		if err := storage.ValidateEntry(&entries[i]); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return errors.Storage("import", err)
	}

	stagingPath := s.basePath + ".staging"
	oldPath := s.basePath + ".old"
	_ = os.RemoveAll(stagingPath)
	_ = os.RemoveAll(oldPath)

	staging := open(stagingPath)
	seq, err := s.readSeq(s.d)
	if err != nil {
		return errors.Storage("import", err)
	}
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if seen[entry.Date] {
			_ = os.RemoveAll(stagingPath)
			return errors.Storage("import", fmt.Errorf("duplicate entry for %s", entry.Date))
		}
		seen[entry.Date] = true
		seq++
		imported := entry.Clone()
		imported.ID = seq
		if err := write(staging, imported); err != nil {
			_ = os.RemoveAll(stagingPath)
			return errors.Storage("import", err)
		}
	}
	if err := s.writeSeq(staging, seq); err != nil {
		_ = os.RemoveAll(stagingPath)
		return errors.Storage("import", err)
	}

	if err := os.Rename(s.basePath, oldPath); err != nil {
		_ = os.RemoveAll(stagingPath)
		return errors.Storage("import", err)
	}
	if err := os.Rename(stagingPath, s.basePath); err != nil {
		// Put the previous data back
		_ = os.Rename(oldPath, s.basePath)
		_ = os.RemoveAll(stagingPath)
		return errors.Storage("import", err)
	}
	if err := os.RemoveAll(oldPath); err != nil {
		logger.Warn("Failed to remove previous data directory", "path", oldPath, "error", err)
	}
	s.d = open(s.basePath)

	logger.Info("Imported entries", "count", len(entries))
	s.Publish(storage.Change{Op: storage.ChangeImport})
	return nil
}
