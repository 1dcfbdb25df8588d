package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/hold"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/notice"
	"github.com/julianstephens/foodmood/internal/tui/components/entryform"
)

// Screen offset of the entry grid: tab bar, top padding, date heading,
// banner and a spacer line above it; left padding beside it.
const (
	formOriginX = 2
	formOriginY = 5
)

// pressCell starts a gesture on c. Future dates are refused up front.
func (m Model) pressCell(c entryform.Cell) (Model, tea.Cmd) {
	if m.entryForm.Disabled() {
		return m, m.notify(notice.FromError(errors.ErrFutureDate))
	}
	now := m.now()
	events := m.holds.Press(c.Category, now, m.entryForm.Count(c))
	m.syncHold(now)
	return m, tea.Batch(m.apply(events), m.holdTick())
}

func (m *Model) release(now time.Time) tea.Cmd {
	m.keyHeld = false
	events := m.holds.Release(now)
	m.entryForm.ClearHold()
	return m.apply(events)
}

func (m *Model) leave(now time.Time) tea.Cmd {
	m.keyHeld = false
	events := m.holds.Leave(now)
	m.entryForm.ClearHold()
	return m.apply(events)
}

// syncHold copies the engine's progress into the grid.
func (m *Model) syncHold(now time.Time) {
	cat, ok := m.holds.Active()
	if !ok {
		m.entryForm.ClearHold()
		return
	}
	e := m.holds.Engine(cat)
	arm := e.ArmProgress(now)
	if e.State() == hold.Repeating {
		arm = 1
	}
	m.entryForm.SetHold(cat, arm, e.Progress(now))
}

// holdKey emulates press-and-hold with the space bar. Terminals report
// no key release, so auto-repeat events keep the press alive and the
// tick loop releases it once they stop arriving.
func (m Model) holdKey() (tea.Model, tea.Cmd) {
	now := m.now()
	if m.keyHeld {
		m.lastRepeat = now
		return m, nil
	}
	m, cmd := m.pressCell(m.entryForm.Selected())
	if _, ok := m.holds.Active(); ok {
		m.keyHeld = true
		m.lastRepeat = now
	}
	return m, cmd
}

// keyDeadline is the latest instant a silent key still counts as held.
func (m Model) keyDeadline() time.Time {
	return m.lastRepeat.Add(constants.HoldReleaseGap)
}

func (m Model) handleHoldTick(msg holdTickMsg) (tea.Model, tea.Cmd) {
	if _, ok := m.holds.Active(); !ok || m.holds.Generation() != msg.gen {
		return m, nil
	}
	now := m.now()
	if m.keyHeld {
		if deadline := m.keyDeadline(); !now.Before(deadline) {
			return m, m.release(deadline)
		}
	}
	events := m.holds.TickFor(msg.gen, now)
	m.syncHold(now)
	return m, tea.Batch(m.apply(events), m.holdTick())
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if tea.MouseEvent(msg).IsWheel() {
		return m, nil
	}
	now := m.now()
	cell, hit := m.entryForm.HitTest(msg.X-formOriginX, msg.Y-formOriginY)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, m.leave(now)
		}
		if !hit {
			return m, nil
		}
		m.keyHeld = false
		m.entryForm.Select(cell.Category)
		return m.pressCell(cell)
	case tea.MouseActionRelease:
		if m.keyHeld {
			return m, nil
		}
		return m, m.release(now)
	case tea.MouseActionMotion:
		if m.keyHeld {
			return m, nil
		}
		if cat, ok := m.holds.Active(); ok && (!hit || cell.Category != cat) {
			return m, m.leave(now)
		}
	}
	return m, nil
}

func (m Model) handleEditResult(msg editResultMsg) (tea.Model, tea.Cmd) {
	next := m.advance(msg.err != nil)
	current := msg.date == m.entryForm.Date()
	if msg.applied > 0 && current {
		m.entryForm.SetEntry(msg.entry, m.editor.IsFuture(msg.date))
	}

	if msg.err != nil {
		m.holds.Fail()
		m.keyHeld = false
		m.entryForm.ClearHold()
		cmd := m.notify(notice.FromError(msg.err))
		return m, tea.Batch(next, cmd)
	}

	if current {
		kind, _ := models.KindOf(msg.event.Category)
		m.holds.Observe(msg.event.Category, msg.entry.Count(kind, msg.event.Category))
		m.syncHold(m.now())
	}
	if err := m.refreshViews(); err != nil {
		cmd := m.notify(notice.FromError(err))
		return m, tea.Batch(next, cmd)
	}
	return m, next
}
