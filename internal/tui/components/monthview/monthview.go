// Package monthview draws a calendar.MonthView with a day cursor.
package monthview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodmood/internal/calendar"
	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	dayStyle = lipgloss.NewStyle().
			Width(4).
			Align(lipgloss.Center)

	loggedStyle = dayStyle.
			Foreground(lipgloss.Color("42")).
			Bold(true)

	todayStyle = dayStyle.
			Underline(true).
			Bold(true)

	futureStyle = dayStyle.
			Foreground(lipgloss.Color("238"))

	cursorStyle = dayStyle.
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

type Model struct {
	view   calendar.MonthView
	cursor string
}

func New() Model {
	return Model{}
}

// SetView replaces the grid. The cursor is kept when it falls inside the
// new month and moved to the first of the month otherwise.
func (m *Model) SetView(v calendar.MonthView) {
	m.view = v
	if _, ok := v.Find(m.cursor); !ok {
		m.cursor = v.Month.Format(constants.DateFormat)
	}
}

func (m Model) Month() time.Time               { return m.view.Month }
func (m Model) MonthView() calendar.MonthView { return m.view }
func (m Model) Cursor() string                { return m.cursor }

func (m *Model) SetCursor(date string) {
	m.cursor = date
}

// Selected returns the cell under the cursor.
func (m Model) Selected() (calendar.Day, bool) {
	return m.view.Find(m.cursor)
}

// Shift returns the date days away from the cursor without moving it.
func (m Model) Shift(days int) string {
	t, err := time.Parse(constants.DateFormat, m.cursor)
	if err != nil {
		return m.cursor
	}
	return t.AddDate(0, 0, days).Format(constants.DateFormat)
}

func (m Model) View() string {
	if len(m.view.Weeks) == 0 {
		return "Loading calendar..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.view.Title()))
	b.WriteString("\n")
	var header []string
	for _, d := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		header = append(header, headerStyle.Inherit(dayStyle).Render(d))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	for _, week := range m.view.Weeks {
		var cells []string
		for _, d := range week {
			cells = append(cells, m.renderDay(d))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewDetail())
	return b.String()
}

func (m Model) renderDay(d calendar.Day) string {
	if !d.InMonth {
		return dayStyle.Render("")
	}
	label := fmt.Sprintf("%d", d.Day)
	if d.HasEntry() {
		label += "•"
	}
	switch {
	case d.Date == m.cursor:
		return cursorStyle.Render(label)
	case d.IsToday:
		return todayStyle.Render(label)
	case d.HasEntry():
		return loggedStyle.Render(label)
	case d.IsFuture:
		return futureStyle.Render(label)
	}
	return dayStyle.Render(label)
}

func (m Model) viewDetail() string {
	d, ok := m.Selected()
	if !ok {
		return ""
	}
	t, _ := time.Parse(constants.DateFormat, d.Date)
	heading := titleStyle.Render(t.Format("Monday, January 2"))
	switch {
	case d.IsFuture:
		return heading + "\n" + detailStyle.Render("Future dates cannot be edited")
	case !d.HasEntry():
		return heading + "\n" + detailStyle.Render("Nothing logged")
	}

	var lines []string
	for _, kind := range models.Kinds() {
		var parts []string
		for _, it := range d.Entry.Items(kind) {
			part := kind.Emoji(it.Category)
			if it.Count > 1 {
				part += fmt.Sprintf("×%d", it.Count)
			}
			parts = append(parts, part)
		}
		if len(parts) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-14s %s", kind.Title()+":", strings.Join(parts, " ")))
	}
	return heading + "\n" + strings.Join(lines, "\n")
}
