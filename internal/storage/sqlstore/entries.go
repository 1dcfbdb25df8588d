// Package sqlstore holds the entry queries shared by the SQL backends.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/foodmood/internal/clock"
	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/logger"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/storage"
)

// Dialect picks the placeholder style.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Entries implements the entry operations of storage.Provider on a *sql.DB.
// The owning backend sets DB once the connection is open.
type Entries struct {
	storage.Notifier

	DB      *sql.DB
	Dialect Dialect
	Clock   clock.Clock
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (e *Entries) rebind(query string) string {
	if e.Dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (e *Entries) ready() error {
	if e.DB == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (e *Entries) GetEntryByDate(ctx context.Context, date string) (models.DailyEntry, bool, error) {
	if err := e.ready(); err != nil {
		return models.DailyEntry{}, false, errors.Storage("get", err)
	}
	entries, err := e.selectEntries(ctx, e.DB, "WHERE date = ?", "", date)
	if err != nil {
		return models.DailyEntry{}, false, errors.Storage("get", err)
	}
	if len(entries) == 0 {
		return models.DailyEntry{}, false, nil
	}
	return entries[0], true, nil
}

func (e *Entries) GetOrCreateEntry(ctx context.Context, date string) (models.DailyEntry, error) {
	entry, ok, err := e.GetEntryByDate(ctx, date)
	if err != nil {
		return models.DailyEntry{}, err
	}
	if !ok {
		return models.NewEntry(date), nil
	}
	return entry, nil
}

func (e *Entries) SaveEntry(ctx context.Context, entry *models.DailyEntry) (int64, error) {
	if err := e.ready(); err != nil {
		return 0, errors.Storage("save", err)
	}
	if err := storage.ValidateEntry(entry); err != nil {
		return 0, err
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Storage("save", err)
	}
	defer tx.Rollback()

	ts := e.Clock.Now().UnixMilli()
	id := entry.ID
	if id != 0 {
		var stored string
		err := tx.QueryRowContext(ctx, e.rebind("SELECT date FROM entries WHERE id = ?"), id).Scan(&stored)
		if err == sql.ErrNoRows {
			return 0, errors.Storage("save", fmt.Errorf("entry %d: %w", id, errors.ErrNotFound))
		}
		if err != nil {
			return 0, errors.Storage("save", err)
		}
		if stored != entry.Date {
			return 0, errors.Invalid("date", "entry %d belongs to %s and cannot move to %s", id, stored, entry.Date)
		}
		if _, err := tx.ExecContext(ctx, e.rebind("UPDATE entries SET timestamp = ? WHERE id = ?"), ts, id); err != nil {
			return 0, errors.Storage("save", err)
		}
		if _, err := tx.ExecContext(ctx, e.rebind("DELETE FROM entry_items WHERE entry_id = ?"), id); err != nil {
			return 0, errors.Storage("save", err)
		}
	} else {
		id, err = e.insertEntry(ctx, tx, entry.Date, ts)
		if err != nil {
			return 0, errors.Storage("save", err)
		}
	}

	if err := e.insertItems(ctx, tx, id, entry); err != nil {
		return 0, errors.Storage("save", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Storage("save", err)
	}

	entry.ID = id
	entry.Timestamp = ts
	logger.Debug("Saved entry", "id", id, "date", entry.Date)
	e.Publish(storage.Change{Op: storage.ChangeSave, Date: entry.Date, ID: id})
	return id, nil
}

func (e *Entries) DeleteEntry(ctx context.Context, id int64) error {
	if err := e.ready(); err != nil {
		return errors.Storage("delete", err)
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("delete", err)
	}
	defer tx.Rollback()

	var date string
	err = tx.QueryRowContext(ctx, e.rebind("SELECT date FROM entries WHERE id = ?"), id).Scan(&date)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Storage("delete", err)
	}

	if _, err := tx.ExecContext(ctx, e.rebind("DELETE FROM entry_items WHERE entry_id = ?"), id); err != nil {
		return errors.Storage("delete", err)
	}
	if _, err := tx.ExecContext(ctx, e.rebind("DELETE FROM entries WHERE id = ?"), id); err != nil {
		return errors.Storage("delete", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.Storage("delete", err)
	}

	logger.Debug("Deleted entry", "id", id, "date", date)
	e.Publish(storage.Change{Op: storage.ChangeDelete, Date: date, ID: id})
	return nil
}

func (e *Entries) GetAllEntries(ctx context.Context) ([]models.DailyEntry, error) {
	if err := e.ready(); err != nil {
		return nil, errors.Storage("list", err)
	}
	entries, err := e.selectEntries(ctx, e.DB, "", "DESC")
	if err != nil {
		return nil, errors.Storage("list", err)
	}
	return entries, nil
}

func (e *Entries) GetEntriesInRange(ctx context.Context, start, end string) ([]models.DailyEntry, error) {
	if err := e.ready(); err != nil {
		return nil, errors.Storage("range", err)
	}
	entries, err := e.selectEntries(ctx, e.DB, "WHERE date >= ? AND date <= ?", "ASC", start, end)
	if err != nil {
		return nil, errors.Storage("range", err)
	}
	return entries, nil
}

func (e *Entries) ClearAllEntries(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return errors.Storage("clear", err)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("clear", err)
	}
	defer tx.Rollback()

	if err := deleteAll(ctx, tx); err != nil {
		return errors.Storage("clear", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.Storage("clear", err)
	}
	e.Publish(storage.Change{Op: storage.ChangeClear})
	return nil
}

func (e *Entries) ImportEntries(ctx context.Context, entries []models.DailyEntry) error {
	if err := e.ready(); err != nil {
		return errors.Storage("import", err)
	}
	for i := range entries {
		if err := storage.ValidateEntry(&entries[i]); err != nil {
			return err
		}
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("import", err)
	}
	defer tx.Rollback()

	if err := deleteAll(ctx, tx); err != nil {
		return errors.Storage("import", err)
	}
	for i := range entries {
		entry := &entries[i]
		id, err := e.insertEntry(ctx, tx, entry.Date, entry.Timestamp)
		if err != nil {
			return errors.Storage("import", fmt.Errorf("entry %s: %w", entry.Date, err))
		}
		if err := e.insertItems(ctx, tx, id, entry); err != nil {
			return errors.Storage("import", fmt.Errorf("entry %s: %w", entry.Date, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Storage("import", err)
	}

	logger.Info("Imported entries", "count", len(entries))
	e.Publish(storage.Change{Op: storage.ChangeImport})
	return nil
}

func deleteAll(ctx context.Context, q queryer) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM entry_items"); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, "DELETE FROM entries")
	return err
}

func (e *Entries) insertEntry(ctx context.Context, q queryer, date string, ts int64) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, e.rebind("INSERT INTO entries (date, timestamp) VALUES (?, ?) RETURNING id"), date, ts).Scan(&id)
	return id, err
}

func (e *Entries) insertItems(ctx context.Context, q queryer, id int64, entry *models.DailyEntry) error {
	query := e.rebind("INSERT INTO entry_items (entry_id, kind, category, count, emoji, position) VALUES (?, ?, ?, ?, ?, ?)")
	for _, kind := range models.Kinds() {
		for pos, it := range entry.Items(kind) {
			if _, err := q.ExecContext(ctx, query, id, string(kind), it.Category, it.Count, it.Emoji, pos); err != nil {
				return err
			}
		}
	}
	return nil
}

// selectEntries loads entries matching where plus their items. order is
// "ASC", "DESC" or "" for unordered.
func (e *Entries) selectEntries(ctx context.Context, q queryer, where, order string, args ...any) ([]models.DailyEntry, error) {
	query := "SELECT id, date, timestamp FROM entries " + where
	if order != "" {
		query += " ORDER BY date " + order
	}
	rows, err := q.QueryContext(ctx, e.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DailyEntry
	index := make(map[int64]int)
	for rows.Next() {
		entry := models.NewEntry("")
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.Timestamp); err != nil {
			return nil, err
		}
		index[entry.ID] = len(entries)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	itemQuery := `SELECT entry_id, kind, category, count, emoji FROM entry_items
		WHERE entry_id IN (SELECT id FROM entries ` + where + `)
		ORDER BY entry_id, kind, position`
	itemRows, err := q.QueryContext(ctx, e.rebind(itemQuery), args...)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	items := make(map[int64]map[models.Kind][]models.Item)
	for itemRows.Next() {
		var id int64
		var kind string
		var it models.Item
		if err := itemRows.Scan(&id, &kind, &it.Category, &it.Count, &it.Emoji); err != nil {
			return nil, err
		}
		if items[id] == nil {
			items[id] = make(map[models.Kind][]models.Item)
		}
		items[id][models.Kind(kind)] = append(items[id][models.Kind(kind)], it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for id, byKind := range items {
		i, ok := index[id]
		if !ok {
			continue
		}
		for kind, list := range byKind {
			entries[i].SetItems(kind, list)
		}
	}
	return entries, nil
}
