package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/foodmood/internal/models"
)

type OpenDateMsg struct {
	Date string
}

type DeleteDateMsg struct {
	Date  string
	Total int
}

type ExportMsg struct{}

type ImportMsg struct{}

type BackupMsg struct{}

type Item struct {
	Entry models.DailyEntry
}

func (i Item) Title() string { return i.Entry.Date }
func (i Item) Description() string {
	var sections []string
	for _, kind := range models.Kinds() {
		var parts []string
		for _, it := range i.Entry.Items(kind) {
			part := kind.Emoji(it.Category)
			if it.Count > 1 {
				part += fmt.Sprintf("×%d", it.Count)
			}
			parts = append(parts, part)
		}
		if len(parts) > 0 {
			sections = append(sections, strings.Join(parts, " "))
		}
	}
	return strings.Join(sections, " | ")
}
func (i Item) FilterValue() string { return i.Entry.Date }

type KeyMap struct {
	Open   key.Binding
	Delete key.Binding
	Export key.Binding
	Import key.Binding
	Backup key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit day"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import"),
		),
		Backup: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "backup"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(entries []models.DailyEntry, width, height int) Model {
	l := list.New(toItems(entries), list.NewDefaultDelegate(), width, height)
	l.Title = "History"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Delete, keys.Export, keys.Import, keys.Backup}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Delete, keys.Export, keys.Import, keys.Backup}
	}

	return Model{list: l, keys: keys}
}

func toItems(entries []models.DailyEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e}
	}
	return items
}

func (m *Model) SetEntries(entries []models.DailyEntry) {
	m.list.SetItems(toItems(entries))
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Export):
			return m, func() tea.Msg { return ExportMsg{} }
		case key.Matches(msg, m.keys.Import):
			return m, func() tea.Msg { return ImportMsg{} }
		case key.Matches(msg, m.keys.Backup):
			return m, func() tea.Msg { return BackupMsg{} }
		case key.Matches(msg, m.keys.Open):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return OpenDateMsg{Date: i.Entry.Date} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteDateMsg{Date: i.Entry.Date, Total: i.Entry.Total()} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Nothing logged yet.\n  Press 'i' to import an export file."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
