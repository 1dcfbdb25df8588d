package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/foodmood/internal/aggregate"
	"github.com/julianstephens/foodmood/internal/calendar"
	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/hold"
	"github.com/julianstephens/foodmood/internal/logger"
	"github.com/julianstephens/foodmood/internal/notice"
	"github.com/julianstephens/foodmood/internal/tui/components/history"
)

// chromeHeight is the space taken by tabs, padding, heading, toast and
// help around the active component.
const chromeHeight = 7

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.charts.SetSize(msg.Width-4, msg.Height-chromeHeight)
		m.history.SetSize(msg.Width-4, msg.Height-chromeHeight)
		return m, nil

	case holdTickMsg:
		return m.handleHoldTick(msg)

	case editResultMsg:
		return m.handleEditResult(msg)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case storeChangedMsg:
		cmds := []tea.Cmd{waitForChange(m.changes)}
		if err := m.refresh(); err != nil {
			logger.Warn("Failed to refresh after store change", "op", msg.change.Op, "error", err)
			cmds = append(cmds, m.notify(notice.FromError(err)))
		}
		return m, tea.Batch(cmds...)

	case dayCheckMsg:
		return m.handleDayCheck()

	case deletedMsg:
		if msg.err != nil {
			return m, m.notify(notice.FromError(msg.err))
		}
		cmd := m.notify(notice.Success("Deleted entry for %s", msg.date))
		if err := m.refresh(); err != nil {
			cmd = m.notify(notice.FromError(err))
		}
		return m, cmd

	case exportedMsg:
		if msg.err != nil {
			logger.Warn("Export failed", "error", msg.err)
			return m, m.notify(notice.Error("Export failed"))
		}
		return m, m.notify(notice.Success("Exported %d entries to %s", msg.count, filepath.Base(msg.path)))

	case importedMsg:
		if msg.err != nil {
			return m, m.notify(notice.FromError(msg.err))
		}
		cmd := m.notify(notice.Success("Imported %d entries", msg.result.Imported))
		if err := m.refresh(); err != nil {
			cmd = m.notify(notice.FromError(err))
		}
		return m, cmd

	case backedUpMsg:
		if msg.err != nil {
			return m, m.notify(notice.Error("Backup failed: %v", msg.err))
		}
		return m, m.notify(notice.Success("Backup created: %s", filepath.Base(msg.path)))

	case tea.BlurMsg:
		return m, m.leave(m.now())

	case tea.MouseMsg:
		if m.state == StateToday {
			return m.handleMouse(msg)
		}
		return m, nil
	}

	switch m.state {
	case StateConfirm:
		return m.updateConfirm(msg)
	case StateImportPath:
		return m.updateImportPath(msg)
	}

	switch msg := msg.(type) {
	case history.OpenDateMsg:
		return m.editDate(msg.Date)
	case history.DeleteDateMsg:
		return m.askDelete(msg.Date, msg.Total)
	case history.ExportMsg:
		return m, m.exportCmd()
	case history.ImportMsg:
		m.previousState = m.state
		m.state = StateImportPath
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		return m, nil
	case history.BackupMsg:
		if m.opts.Backup == nil {
			return m, m.notify(notice.Info("Backups are only available for SQLite databases"))
		}
		return m, m.backupCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			cmd := m.leave(m.now())
			m.quitting = true
			m.Close()
			return m, tea.Sequence(cmd, tea.Quit)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			return m.switchTab((m.state + 1) % tabCount)
		case key.Matches(msg, m.keys.ShiftTab):
			return m.switchTab((m.state - 1 + tabCount) % tabCount)
		}

		switch m.state {
		case StateToday:
			return m.updateToday(msg)
		case StateCalendar:
			return m.updateCalendar(msg)
		case StateCharts:
			return m.updateCharts(msg)
		case StateData:
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) switchTab(state SessionState) (tea.Model, tea.Cmd) {
	cmd := m.leave(m.now())
	m.state = state
	return m, cmd
}

func (m Model) updateToday(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Hold) {
		return m.holdKey()
	}

	// Any other key ends a keyboard hold
	var cmds []tea.Cmd
	if m.keyHeld {
		cmds = append(cmds, m.release(m.now()))
	}

	switch {
	case key.Matches(msg, m.keys.Enter):
		now := m.now()
		c := m.entryForm.Selected()
		if m.entryForm.Disabled() {
			return m, m.notify(notice.FromError(errors.ErrFutureDate))
		}
		events := m.holds.Press(c.Category, now, m.entryForm.Count(c))
		events = append(events, m.holds.Release(now)...)
		cmds = append(cmds, m.apply(events))
	case key.Matches(msg, m.keys.Remove):
		c := m.entryForm.Selected()
		if m.entryForm.Disabled() {
			return m, m.notify(notice.FromError(errors.ErrFutureDate))
		}
		if m.entryForm.Count(c) > 0 {
			cmds = append(cmds, m.apply([]hold.Event{{Kind: hold.EventRemove, Category: c.Category}}))
		}
	case key.Matches(msg, m.keys.Up):
		m.entryForm.Move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.entryForm.Move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.entryForm.Move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.entryForm.Move(1, 0)
	case key.Matches(msg, m.keys.Today):
		return m.editDate(m.editor.Today())
	}
	return m, tea.Batch(cmds...)
}

// editDate points the form at date and switches to it.
func (m Model) editDate(date string) (tea.Model, tea.Cmd) {
	cmd := m.leave(m.now())
	if err := m.loadEntry(date); err != nil {
		return m, m.notify(notice.FromError(err))
	}
	m.following = date == m.editor.Today()
	m.state = StateToday
	return m, cmd
}

func (m Model) handleDayCheck() (tea.Model, tea.Cmd) {
	today := m.editor.Today()
	cmds := []tea.Cmd{m.dayCheck()}
	if m.following && m.entryForm.Date() != today {
		cmds = append(cmds, m.leave(m.now()))
		if err := m.loadEntry(today); err != nil {
			cmds = append(cmds, m.notify(notice.FromError(err)))
		}
		if err := m.refreshViews(); err != nil {
			logger.Warn("Failed to refresh after date change", "error", err)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		return m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		return m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-7)
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(7)
	case key.Matches(msg, m.keys.PrevMonth):
		return m.showMonth(calendar.Prev(m.month.Month()))
	case key.Matches(msg, m.keys.NextMonth):
		next, ok := calendar.Next(m.month.Month(), m.editor.Today())
		if !ok {
			return m, nil
		}
		return m.showMonth(next)
	case key.Matches(msg, m.keys.Today):
		today := m.editor.Today()
		m.month.SetCursor(today)
		start, err := calendar.StartOfMonth(today)
		if err != nil {
			return m, nil
		}
		return m.showMonth(start)
	case key.Matches(msg, m.keys.Enter):
		day, ok := m.month.Selected()
		if !ok {
			return m, nil
		}
		if !calendar.CanEdit(day.Date, m.editor.Today()) {
			return m, m.notify(notice.FromError(errors.ErrFutureDate))
		}
		return m.editDate(day.Date)
	case key.Matches(msg, m.keys.Delete):
		day, ok := m.month.Selected()
		if !ok || !day.HasEntry() {
			return m, nil
		}
		return m.askDelete(day.Date, day.Entry.Total())
	}
	return m, nil
}

func (m Model) moveCursor(days int) (tea.Model, tea.Cmd) {
	target := m.month.Shift(days)
	start, err := calendar.StartOfMonth(target)
	if err != nil {
		return m, nil
	}
	if start.Equal(m.month.Month()) {
		m.month.SetCursor(target)
		return m, nil
	}
	current, err := calendar.StartOfMonth(m.editor.Today())
	if err != nil || start.After(current) {
		return m, nil
	}
	m.month.SetCursor(target)
	return m.showMonth(start)
}

func (m Model) showMonth(month time.Time) (tea.Model, tea.Cmd) {
	if err := m.loadMonth(month); err != nil {
		return m, m.notify(notice.FromError(err))
	}
	return m, nil
}

func (m Model) updateCharts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Window) {
		windows := aggregate.Windows()
		for i, w := range windows {
			if w == m.window {
				m.window = windows[(i+1)%len(windows)]
				break
			}
		}
		if err := m.loadSummary(); err != nil {
			return m, m.notify(notice.FromError(err))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.charts, cmd = m.charts.Update(msg)
	return m, cmd
}

func (m Model) askDelete(date string, total int) (tea.Model, tea.Cmd) {
	cmd := m.askConfirm(
		fmt.Sprintf("Delete the entry for %s?", date),
		fmt.Sprintf("%d items will be removed. This cannot be undone.", total),
		func() tea.Cmd { return m.deleteCmd(date) },
	)
	return m, cmd
}

// askConfirm shows a yes/no form and runs action when it is accepted.
func (m *Model) askConfirm(title, description string, action func() tea.Cmd) tea.Cmd {
	c := &confirmation{action: action}
	m.confirm = c
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&c.confirmed),
		),
	).WithTheme(huh.ThemeDracula())
	if m.state != StateConfirm && m.state != StateImportPath {
		m.previousState = m.state
	}
	m.state = StateConfirm
	return m.form.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		m.closeConfirm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds := []tea.Cmd{cmd}

	switch m.form.State {
	case huh.StateCompleted:
		if m.confirm.confirmed && m.confirm.action != nil {
			cmds = append(cmds, m.confirm.action())
		}
		m.closeConfirm()
	case huh.StateAborted:
		m.closeConfirm()
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) closeConfirm() {
	m.confirm = nil
	m.form = nil
	m.state = m.previousState
}

func (m Model) updateImportPath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.pathInput.Blur()
			m.state = m.previousState
			return m, nil
		case msg.Type == tea.KeyEnter:
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				return m, nil
			}
			if _, err := os.Stat(path); err != nil {
				return m, m.notify(notice.Error("File not found: %s", path))
			}
			m.pathInput.Blur()
			if m.history.Len() == 0 {
				m.state = m.previousState
				return m, m.importCmd(path)
			}
			cmd := m.askConfirm(
				"Replace all entries?",
				fmt.Sprintf("Importing deletes the %d entries currently stored.", m.history.Len()),
				func() tea.Cmd { return m.importCmd(path) },
			)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}
