// Package entryform renders the emoji grid of one day's entry and maps
// screen coordinates back to the category under the pointer.
package entryform

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodmood/internal/models"
)

const (
	// Columns is how many category cells share a row.
	Columns = 3
	// CellWidth is the fixed printed width of one cell.
	CellWidth = 26
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Width(CellWidth).
			MaxWidth(CellWidth)

	selectedStyle = cellStyle.
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Bold(true)

	holdingStyle = cellStyle.
			Foreground(lipgloss.Color("232")).
			Background(lipgloss.Color("214")).
			Bold(true)

	disabledStyle = cellStyle.
			Foreground(lipgloss.Color("240"))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

// Cell identifies one button of the grid.
type Cell struct {
	Kind     models.Kind
	Category string
}

// Model is the grid for a single date.
type Model struct {
	date     string
	entry    models.DailyEntry
	disabled bool
	cells    []Cell
	cursor   int

	holding  string
	arm      float64
	progress float64
}

func New() Model {
	var cells []Cell
	for _, kind := range models.Kinds() {
		for _, cat := range kind.Categories() {
			cells = append(cells, Cell{Kind: kind, Category: cat})
		}
	}
	return Model{cells: cells}
}

// SetEntry swaps in the entry being edited. disabled greys the grid out.
func (m *Model) SetEntry(entry models.DailyEntry, disabled bool) {
	if entry.Date != m.date {
		m.ClearHold()
	}
	m.date = entry.Date
	m.entry = entry
	m.disabled = disabled
}

func (m Model) Date() string             { return m.date }
func (m Model) Entry() models.DailyEntry { return m.entry }
func (m Model) Disabled() bool           { return m.disabled }

// Count is the stored tally for category on the current date.
func (m Model) Count(c Cell) int {
	return m.entry.Count(c.Kind, c.Category)
}

// Selected returns the cell under the keyboard cursor.
func (m Model) Selected() Cell {
	return m.cells[m.cursor]
}

// Select moves the cursor to category. Unknown categories are ignored.
func (m *Model) Select(category string) {
	for i, c := range m.cells {
		if c.Category == category {
			m.cursor = i
			return
		}
	}
}

// Move shifts the cursor by dx columns and dy rows, staying inside the
// current section's rows when moving sideways.
func (m *Model) Move(dx, dy int) {
	kind, row, col := m.position(m.cursor)
	if dx != 0 {
		col += dx
		n := len(kind.Categories())
		idx := row*Columns + col
		if col < 0 || col >= Columns || idx < 0 || idx >= n {
			return
		}
		m.cursor = m.index(kind, idx)
		return
	}

	// Vertical moves walk the flattened rows of all sections.
	type rowRef struct {
		kind models.Kind
		row  int
	}
	var rows []rowRef
	cur := 0
	for _, k := range models.Kinds() {
		for r := 0; r < rowCount(k); r++ {
			if k == kind && r == row {
				cur = len(rows)
			}
			rows = append(rows, rowRef{k, r})
		}
	}
	next := cur + dy
	if next < 0 || next >= len(rows) {
		return
	}
	target := rows[next]
	n := len(target.kind.Categories())
	idx := target.row*Columns + col
	if idx >= n {
		idx = n - 1
	}
	m.cursor = m.index(target.kind, idx)
}

// SetHold marks category as pressed. arm and progress are the fractions
// of the arm delay and of the current repeat cycle.
func (m *Model) SetHold(category string, arm, progress float64) {
	m.holding = category
	m.arm = arm
	m.progress = progress
}

func (m *Model) ClearHold() {
	m.holding = ""
	m.arm = 0
	m.progress = 0
}

// HitTest maps a position relative to the grid's top-left corner to a
// cell. Title and spacer lines never hit.
func (m Model) HitTest(x, y int) (Cell, bool) {
	if x < 0 || y < 0 {
		return Cell{}, false
	}
	col := x / CellWidth
	if col >= Columns {
		return Cell{}, false
	}
	line := 0
	for i, kind := range models.Kinds() {
		if i > 0 {
			line++ // spacer
		}
		line++ // title
		rows := rowCount(kind)
		if y >= line && y < line+rows {
			idx := (y-line)*Columns + col
			cats := kind.Categories()
			if idx >= len(cats) {
				return Cell{}, false
			}
			return Cell{Kind: kind, Category: cats[idx]}, true
		}
		line += rows
	}
	return Cell{}, false
}

func (m Model) View() string {
	var b strings.Builder
	for i, kind := range models.Kinds() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(kind.Title()))
		b.WriteString("\n")
		cats := kind.Categories()
		for r := 0; r < rowCount(kind); r++ {
			var row []string
			for c := 0; c < Columns; c++ {
				idx := r*Columns + c
				if idx >= len(cats) {
					break
				}
				row = append(row, m.renderCell(Cell{Kind: kind, Category: cats[idx]}))
			}
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
			if !(i == len(models.Kinds())-1 && r == rowCount(kind)-1) {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func (m Model) renderCell(c Cell) string {
	count := m.Count(c)
	text := fmt.Sprintf(" %s %s", c.Kind.Emoji(c.Category), c.Kind.Label(c.Category))

	badge := ""
	if count > 0 {
		badge = fmt.Sprintf(" ×%d", count)
	}
	held := m.holding == c.Category
	if held && m.progress > 0 {
		badge = " " + gauge(m.progress) + badge
	}

	switch {
	case m.disabled:
		return disabledStyle.Render(text + badge)
	case held && (m.arm >= 1 || m.progress > 0):
		return holdingStyle.Render(text + badge)
	case m.cells[m.cursor] == c:
		return selectedStyle.Render(text + badge)
	}
	if badge != "" {
		badge = badgeStyle.Render(badge)
	}
	return cellStyle.Render(text + badge)
}

const gaugeWidth = 4

// gauge draws the repeat progress as a short fill bar.
func gauge(p float64) string {
	filled := int(p * gaugeWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > gaugeWidth {
		filled = gaugeWidth
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", gaugeWidth-filled)
}

func rowCount(kind models.Kind) int {
	return (len(kind.Categories()) + Columns - 1) / Columns
}

// Height is the number of lines View renders.
func Height() int {
	h := 0
	for i, kind := range models.Kinds() {
		if i > 0 {
			h++
		}
		h += 1 + rowCount(kind)
	}
	return h
}

func (m Model) position(i int) (models.Kind, int, int) {
	c := m.cells[i]
	for j, cat := range c.Kind.Categories() {
		if cat == c.Category {
			return c.Kind, j / Columns, j % Columns
		}
	}
	return c.Kind, 0, 0
}

func (m Model) index(kind models.Kind, idx int) int {
	cat := kind.Categories()[idx]
	for i, c := range m.cells {
		if c.Kind == kind && c.Category == cat {
			return i
		}
	}
	return m.cursor
}
