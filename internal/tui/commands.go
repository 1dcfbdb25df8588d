package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/foodmood/internal/aggregate"
	"github.com/julianstephens/foodmood/internal/calendar"
	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/hold"
	"github.com/julianstephens/foodmood/internal/logger"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/notice"
	"github.com/julianstephens/foodmood/internal/storage"
	"github.com/julianstephens/foodmood/internal/transfer"
)

// tick is swapped out in tests so timers never sleep.
var tick = tea.Tick

type holdTickMsg struct {
	gen uint64
}

type editResultMsg struct {
	date    string
	event   hold.Event
	entry   models.DailyEntry
	applied int
	err     error
}

type toastExpiredMsg struct {
	seq int
}

type storeChangedMsg struct {
	change storage.Change
}

type dayCheckMsg struct{}

type deletedMsg struct {
	date string
	err  error
}

type exportedMsg struct {
	path  string
	count int
	err   error
}

type importedMsg struct {
	result transfer.Result
	err    error
}

type backedUpMsg struct {
	path string
	err  error
}

func (m Model) now() time.Time {
	return m.clock.Now()
}

func (m Model) emptyEntry(date string) models.DailyEntry {
	return models.NewEntry(date)
}

// editBatch is one dispatch of engine events against a date.
type editBatch struct {
	date   string
	events []hold.Event
}

// editQueue runs batches one at a time in dispatch order. The next batch
// starts when the running one reports back.
type editQueue struct {
	pending []editBatch
	running bool
}

// apply queues events against the date currently in the form.
func (m Model) apply(events []hold.Event) tea.Cmd {
	if len(events) == 0 {
		return nil
	}
	b := editBatch{date: m.entryForm.Date(), events: events}
	if m.edits.running {
		m.edits.pending = append(m.edits.pending, b)
		return nil
	}
	m.edits.running = true
	return m.run(b)
}

// advance starts the next queued batch. A failed batch drops the rest of
// the queue.
func (m Model) advance(failed bool) tea.Cmd {
	if failed {
		m.edits.pending = nil
	}
	if len(m.edits.pending) == 0 {
		m.edits.running = false
		return nil
	}
	b := m.edits.pending[0]
	m.edits.pending = m.edits.pending[1:]
	return m.run(b)
}

// run applies b's events in order, stopping at the first failure.
func (m Model) run(b editBatch) tea.Cmd {
	ed := m.editor
	return func() tea.Msg {
		ctx := context.Background()
		res := editResultMsg{date: b.date}
		for _, ev := range b.events {
			kind, _ := models.KindOf(ev.Category)
			res.event = ev
			var (
				entry models.DailyEntry
				err   error
			)
			if ev.Kind == hold.EventRemove {
				entry, err = ed.Remove(ctx, b.date, kind, ev.Category)
			} else {
				entry, err = ed.Add(ctx, b.date, kind, ev.Category)
			}
			if err != nil {
				res.err = err
				return res
			}
			res.entry = entry
			res.applied++
		}
		return res
	}
}

// holdTick schedules the next engine tick while a press is in progress.
func (m Model) holdTick() tea.Cmd {
	if _, ok := m.holds.Active(); !ok {
		return nil
	}
	gen := m.holds.Generation()
	return tick(constants.HoldTickInterval, func(time.Time) tea.Msg {
		return holdTickMsg{gen: gen}
	})
}

func (m Model) dayCheck() tea.Cmd {
	return tick(time.Minute, func(time.Time) tea.Msg {
		return dayCheckMsg{}
	})
}

// notify shows n as a toast until its duration passes or a newer toast
// replaces it.
func (m *Model) notify(n notice.Notice) tea.Cmd {
	m.toast = &n
	m.toastSeq++
	seq := m.toastSeq
	return tick(n.Duration(), func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// waitForChange blocks until the store reports a change and collapses any
// backlog into one message.
func waitForChange(ch <-chan storage.Change) tea.Cmd {
	return func() tea.Msg {
		c := <-ch
		for {
			select {
			case next := <-ch:
				c = next
			default:
				return storeChangedMsg{change: c}
			}
		}
	}
}

func (m *Model) loadEntry(date string) error {
	entry, err := m.editor.Load(context.Background(), date)
	if err != nil {
		return err
	}
	m.entryForm.SetEntry(entry, m.editor.IsFuture(date))
	return nil
}

func (m *Model) loadMonth(month time.Time) error {
	view, err := calendar.Month(context.Background(), m.editor.Store(), month, m.editor.Today())
	if err != nil {
		return err
	}
	m.month.SetView(view)
	return nil
}

func (m *Model) loadSummary() error {
	s, err := aggregate.LoadSummary(context.Background(), m.editor.Store(), m.window, m.editor.Today())
	if err != nil {
		return err
	}
	m.charts.SetSummary(s)
	return nil
}

func (m *Model) loadHistory() error {
	entries, err := m.editor.Store().GetAllEntries(context.Background())
	if err != nil {
		return err
	}
	m.history.SetEntries(entries)
	return nil
}

// refreshViews reloads everything derived from the store except the form.
func (m *Model) refreshViews() error {
	if !m.month.Month().IsZero() {
		if err := m.loadMonth(m.month.Month()); err != nil {
			return err
		}
	}
	if err := m.loadSummary(); err != nil {
		return err
	}
	return m.loadHistory()
}

// refresh reloads the form too and reconciles a running hold with the
// stored count.
func (m *Model) refresh() error {
	if err := m.loadEntry(m.entryForm.Date()); err != nil {
		return err
	}
	if cat, ok := m.holds.Active(); ok {
		kind, _ := models.KindOf(cat)
		entry := m.entryForm.Entry()
		m.holds.Observe(cat, entry.Count(kind, cat))
	}
	return m.refreshViews()
}

func (m Model) deleteCmd(date string) tea.Cmd {
	ed := m.editor
	return func() tea.Msg {
		return deletedMsg{date: date, err: calendar.Delete(context.Background(), ed, date)}
	}
}

func (m Model) exportCmd() tea.Cmd {
	store, clk := m.editor.Store(), m.clock
	path := filepath.Join(m.opts.ExportDir, transfer.FileName(m.editor.Today()))
	return func() tea.Msg {
		var buf bytes.Buffer
		n, err := transfer.Export(context.Background(), store, &buf, transfer.ExportOptions{Clock: clk})
		if err != nil {
			return exportedMsg{err: err}
		}
		if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
			return exportedMsg{err: fmt.Errorf("failed to write %s: %w", path, err)}
		}
		return exportedMsg{path: path, count: n}
	}
}

func (m Model) importCmd(path string) tea.Cmd {
	store, opts := m.editor.Store(), m.opts
	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err != nil {
			return importedMsg{err: fmt.Errorf("failed to read %s: %w", path, err)}
		}
		if !transfer.IsEncrypted(raw) {
			if _, _, err := transfer.Parse(raw); err != nil {
				return importedMsg{err: err}
			}
		}
		if opts.BeforeImport != nil {
			opts.BeforeImport()
		}
		res, err := transfer.Import(context.Background(), store, bytes.NewReader(raw), transfer.ImportOptions{
			PassphraseFunc: opts.Passphrase,
		})
		if err != nil {
			logger.Warn("Import failed", "file", path, "error", err)
		}
		return importedMsg{result: res, err: err}
	}
}

func (m Model) backupCmd() tea.Cmd {
	backup := m.opts.Backup
	return func() tea.Msg {
		path, err := backup()
		return backedUpMsg{path: path, err: err}
	}
}
