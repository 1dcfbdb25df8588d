package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/foodmood/internal/aggregate"
	"github.com/julianstephens/foodmood/internal/calendar"
	"github.com/julianstephens/foodmood/internal/clock"
	"github.com/julianstephens/foodmood/internal/editor"
	"github.com/julianstephens/foodmood/internal/hold"
	"github.com/julianstephens/foodmood/internal/logger"
	"github.com/julianstephens/foodmood/internal/notice"
	"github.com/julianstephens/foodmood/internal/storage"
	"github.com/julianstephens/foodmood/internal/tui/components/charts"
	"github.com/julianstephens/foodmood/internal/tui/components/entryform"
	"github.com/julianstephens/foodmood/internal/tui/components/history"
	"github.com/julianstephens/foodmood/internal/tui/components/monthview"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateCalendar
	StateCharts
	StateData
	StateConfirm
	StateImportPath
)

const tabCount = 4

var tabTitles = [tabCount]string{"Today", "Calendar", "Charts", "Data"}

// Options wires the model to the rest of the app. Only Editor is
// required.
type Options struct {
	Editor *editor.Editor
	Hold   hold.Config
	Clock  clock.Clock
	// Passphrase supplies the key for encrypted imports.
	Passphrase func() (string, error)
	// BeforeImport runs right before an import replaces every entry.
	BeforeImport func()
	// Backup snapshots the database and returns the file it wrote.
	Backup func() (string, error)
	// ExportDir is where exports are written. Empty means the working
	// directory.
	ExportDir string
}

type confirmation struct {
	confirmed bool
	action    func() tea.Cmd
}

type Model struct {
	opts   Options
	editor *editor.Editor
	clock  clock.Clock
	holds  *hold.Group
	edits  *editQueue

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model

	entryForm entryform.Model
	month     monthview.Model
	charts    charts.Model
	history   history.Model
	window    aggregate.Window
	following bool // the form tracks today across midnight

	form      *huh.Form
	confirm   *confirmation
	pathInput textinput.Model

	toast    *notice.Notice
	toastSeq int

	keyHeld    bool
	lastRepeat time.Time

	changes     chan storage.Change
	unsubscribe func()

	quitting bool
	width    int
	height   int
}

func NewModel(opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}

	input := textinput.New()
	input.Prompt = "File: "
	input.Placeholder = "path to an export file"
	input.CharLimit = 1024
	input.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		opts:      opts,
		editor:    opts.Editor,
		clock:     opts.Clock,
		holds:     hold.NewGroup(opts.Hold),
		edits:     &editQueue{},
		state:     StateToday,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		entryForm: entryform.New(),
		month:     monthview.New(),
		charts:    charts.New(0, 0),
		history:   history.New(nil, 0, 0),
		window:    aggregate.WindowMonth,
		following: true,
		pathInput: input,
		changes:   make(chan storage.Change, 16),
	}

	ch := m.changes
	m.unsubscribe = m.editor.Store().Subscribe(func(c storage.Change) {
		select {
		case ch <- c:
		default:
		}
	})

	today := m.editor.Today()
	if err := m.loadEntry(today); err != nil {
		logger.Error("Failed to load entry", "date", today, "error", err)
		m.entryForm.SetEntry(m.emptyEntry(today), false)
	}
	m.month.SetCursor(today)
	if start, err := calendar.StartOfMonth(today); err == nil {
		if err := m.loadMonth(start); err != nil {
			logger.Error("Failed to load calendar", "error", err)
		}
	}
	if err := m.loadSummary(); err != nil {
		logger.Error("Failed to load charts", "error", err)
	}
	if err := m.loadHistory(); err != nil {
		logger.Error("Failed to load history", "error", err)
	}
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		keys = append(keys, m.keys.Enter, m.keys.Hold, m.keys.Remove)
	case StateCalendar:
		keys = append(keys, m.keys.Enter, m.keys.PrevMonth, m.keys.NextMonth, m.keys.Delete)
	case StateCharts:
		keys = append(keys, m.keys.Window)
	case StateData:
		hk := m.history.Keys()
		keys = append(keys, hk.Export, hk.Import, hk.Backup)
	case StateConfirm, StateImportPath:
		keys = []key.Binding{m.keys.Back}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Enter}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		actions = []key.Binding{m.keys.Hold, m.keys.Remove, m.keys.Today}
	case StateCalendar:
		actions = []key.Binding{m.keys.PrevMonth, m.keys.NextMonth, m.keys.Today, m.keys.Delete}
	case StateCharts:
		actions = []key.Binding{m.keys.Window}
	case StateData:
		hk := m.history.Keys()
		actions = []key.Binding{hk.Open, hk.Delete, hk.Export, hk.Import, hk.Backup}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.changes), m.dayCheck())
}

// Close detaches the model from store change events.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}
