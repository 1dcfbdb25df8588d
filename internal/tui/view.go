package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/notice"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateToday:
		content = m.viewToday()
	case StateCalendar:
		content = docStyle.Render(m.month.View())
	case StateCharts:
		content = docStyle.Render(m.charts.View())
	case StateData:
		content = m.viewData()
	case StateConfirm:
		content = m.viewConfirm()
	case StateImportPath:
		content = m.viewImportPath()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewToast(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active >= tabCount {
		active = m.previousState
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// viewToday must keep the grid at formOriginX/formOriginY so mouse hits
// line up.
func (m Model) viewToday() string {
	date := m.entryForm.Date()
	heading := date
	if t, err := time.Parse(constants.DateFormat, date); err == nil {
		heading = t.Format("Monday, January 2, 2006")
	}
	heading = headingStyle.Render(heading)
	if date != m.editor.Today() {
		heading += warningStyle.Render("  (t: back to today)")
	}

	banner := ""
	if m.entryForm.Disabled() {
		banner = dangerStyle.Render("Future dates cannot be edited")
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		heading,
		banner,
		"",
		m.entryForm.View(),
	))
}

func (m Model) viewData() string {
	heading := headingStyle.Render(fmt.Sprintf("%d days logged", m.history.Len()))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, m.history.View()))
}

func (m Model) viewConfirm() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.Place(m.width, m.height-chromeHeight,
		lipgloss.Center, lipgloss.Center,
		m.form.View(),
	)
}

func (m Model) viewImportPath() string {
	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		headingStyle.Render("Import entries"),
		warningStyle.Render("Importing replaces every stored entry. A backup is taken first."),
		"",
		m.pathInput.View(),
	))
}

func (m Model) viewToast() string {
	if m.toast == nil {
		return ""
	}
	switch m.toast.Level {
	case notice.LevelError:
		return errorToastStyle.Render(m.toast.String())
	case notice.LevelInfo:
		return infoToastStyle.Render(m.toast.String())
	}
	return successToastStyle.Render(m.toast.String())
}
