// Package tui is the interactive bubbletea front end: today's grid, history and settings.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/errors"
	"github.com/julianstephens/droptime/internal/logger"
	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/notifier"
	"github.com/julianstephens/droptime/internal/timer"
	"github.com/julianstephens/droptime/internal/tracker"
)

// doseRef points at one cell of today's grid.
type doseRef struct {
	DropID string
	Slot   models.TimeSlot
}

type Model struct {
	tracker   *tracker.Tracker
	notifier  *notifier.Notifier
	countdown *timer.Countdown
	state     constants.SessionState
	keys      KeyMap
	help      help.Model
	progress  progress.Model

	today     tracker.TodayView
	history   []tracker.HistoryEntry
	row, col  int
	histIndex int
	expanded  map[string]bool
	remaining time.Duration

	form         *huh.Form
	settingsForm *SettingsFormModel
	formError    string
	pending      doseRef
	notice       string
	beforeReset  func()

	width    int
	height   int
	quitting bool
}

func NewModel(t *tracker.Tracker, timerDuration time.Duration, n *notifier.Notifier) Model {
	if n == nil {
		n = notifier.New(false)
	}
	m := Model{
		tracker:   t,
		notifier:  n,
		countdown: timer.NewCountdown(timerDuration),
		state:     constants.StateToday,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		expanded:  map[string]bool{},
	}
	m.refresh()
	return m
}

// WithBeforeReset registers a hook run before settings are reset, such as a backup.
func (m Model) WithBeforeReset(fn func()) Model {
	m.beforeReset = fn
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh reloads the today grid and history from the tracker. A persistence failure is
// reported on the notice line; the in-memory view is still shown.
func (m *Model) refresh() {
	view, err := m.tracker.TodayView()
	if err != nil {
		m.setError(err)
		if !errors.IsPersistence(err) {
			return
		}
	}
	m.today = view
	m.history = m.tracker.History()
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.row >= len(m.today.Rows) {
		m.row = len(m.today.Rows) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	if m.col >= len(models.AllSlots) {
		m.col = len(models.AllSlots) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	if m.histIndex >= len(m.history) {
		m.histIndex = len(m.history) - 1
	}
	if m.histIndex < 0 {
		m.histIndex = 0
	}
}

func (m *Model) setError(err error) {
	if errors.IsNotFound(err) {
		// the dose or drop went away underneath the view; refresh is enough
		logger.Debug("Ignoring action on missing dose", "error", err)
		return
	}
	if errors.IsPersistence(err) {
		logger.Warn("Change kept in memory but not saved", "error", err)
		m.notice = "Not saved: " + err.Error()
		return
	}
	m.notice = errors.Format(err)
}

// selected returns the cell under the cursor.
func (m Model) selected() (tracker.Row, tracker.Cell, bool) {
	if m.row < 0 || m.row >= len(m.today.Rows) {
		return tracker.Row{}, tracker.Cell{}, false
	}
	row := m.today.Rows[m.row]
	if m.col < 0 || m.col >= len(row.Cells) {
		return row, tracker.Cell{}, false
	}
	return row, row.Cells[m.col], true
}
