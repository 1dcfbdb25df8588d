package charts

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodmood/internal/aggregate"
	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/models"
)

const maxBarWidth = 30

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Width(20)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	barColors = map[models.Kind]lipgloss.Color{
		models.KindFood:     lipgloss.Color("42"),
		models.KindActivity: lipgloss.Color("39"),
		models.KindMood:     lipgloss.Color("214"),
	}
)

type Model struct {
	viewport viewport.Model
	Summary  *aggregate.Summary
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Summary == nil {
		return "Loading charts..."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetSummary(s aggregate.Summary) {
	m.Summary = &s
	m.Render()
}

func (m *Model) Render() {
	if m.Summary == nil {
		m.viewport.SetContent("No data loaded.")
		return
	}
	s := m.Summary

	var b strings.Builder
	b.WriteString(headingStyle.Render(fmt.Sprintf("%s · %d entries", s.Window.Label(), s.Entries)))
	b.WriteString("\n")

	for _, kind := range models.Kinds() {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(kind.Title()))
		b.WriteString("\n")
		totals := aggregate.NonZero(s.Totals(kind))
		if len(totals) == 0 {
			b.WriteString(emptyStyle.Render("  No data for this period"))
			b.WriteString("\n")
			continue
		}
		max := 0
		for _, t := range totals {
			if t.Count > max {
				max = t.Count
			}
		}
		bar := lipgloss.NewStyle().Foreground(barColors[kind])
		for _, t := range totals {
			b.WriteString(fmt.Sprintf("  %s %s %s %d\n",
				t.Emoji,
				labelStyle.Render(t.Label),
				bar.Render(strings.Repeat("█", barLength(t.Count, max, m.barWidth()))),
				t.Count,
			))
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Moods Over Time"))
	b.WriteString("\n")
	if len(s.MoodSeries) == 0 {
		b.WriteString(emptyStyle.Render("  No data for this period"))
		b.WriteString("\n")
	}
	for _, p := range s.MoodSeries {
		label := p.Date
		if t, err := time.Parse(constants.DateFormat, p.Date); err == nil {
			label = t.Format("Jan 2")
		}
		var parts []string
		for _, cat := range models.KindMood.Categories() {
			if n := p.Counts[cat]; n > 0 {
				parts = append(parts, strings.Repeat(models.KindMood.Emoji(cat), n))
			}
		}
		b.WriteString(fmt.Sprintf("  %-7s %s\n", label, strings.Join(parts, " ")))
	}

	m.viewport.SetContent(b.String())
}

func (m Model) barWidth() int {
	// emoji, label, count and padding take roughly 32 cells
	w := m.width - 32
	if w > maxBarWidth || w <= 0 {
		return maxBarWidth
	}
	return w
}

func barLength(count, max, width int) int {
	if max <= 0 || count <= 0 {
		return 0
	}
	n := count * width / max
	if n < 1 {
		n = 1
	}
	return n
}
