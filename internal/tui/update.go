package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/errors"
	"github.com/julianstephens/droptime/internal/notifier"
)

// tickMsg advances the countdown started with the given generation.
type tickMsg struct {
	generation int
	at         time.Time
}

type timerDoneMsg struct{}

func tickCmd(generation int) tea.Cmd {
	return tea.Tick(constants.TimerTick, func(t time.Time) tea.Msg {
		return tickMsg{generation: generation, at: t}
	})
}

func notifyCmd(n *notifier.Notifier) tea.Cmd {
	return func() tea.Msg {
		n.TimerDone(context.Background())
		return timerDoneMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == constants.StateEditSettings {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(msg.Width-8, 60)
		return m, nil

	case tickMsg:
		return m.handleTick(msg)

	case timerDoneMsg:
		m.notice = constants.TimerDoneMessage
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case constants.StateConfirmUndo:
			return m.handleConfirmUndo(msg)
		case constants.StateConfirmReset:
			return m.handleConfirmReset(msg)
		}
		if handled, cmd := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}
		switch m.state {
		case constants.StateToday:
			return m.handleTodayKeys(msg)
		case constants.StateHistory:
			return m.handleHistoryKeys(msg)
		case constants.StateSettings:
			return m.handleSettingsKeys(msg)
		}
	}
	return m, nil
}

func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.countdown.Stop()
		return true, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	case key.Matches(msg, m.keys.Tab):
		switch m.state {
		case constants.StateToday:
			m.state = constants.StateHistory
		case constants.StateHistory:
			m.state = constants.StateSettings
		case constants.StateSettings:
			m.state = constants.StateToday
		}
		m.refresh()
		return true, nil
	case key.Matches(msg, m.keys.ShiftTab):
		switch m.state {
		case constants.StateToday:
			m.state = constants.StateSettings
		case constants.StateHistory:
			m.state = constants.StateToday
		case constants.StateSettings:
			m.state = constants.StateHistory
		}
		m.refresh()
		return true, nil
	}
	return false, nil
}

func (m Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.generation != m.countdown.Generation() {
		return m, nil
	}
	remaining, expired := m.countdown.Tick(msg.at)
	m.remaining = remaining
	if expired {
		return m, notifyCmd(m.notifier)
	}
	if !m.countdown.Running() {
		return m, nil
	}
	return m, tickCmd(msg.generation)
}

func (m Model) startCountdown() (Model, tea.Cmd) {
	gen := m.countdown.Start(time.Now())
	m.remaining = m.countdown.Duration()
	return m, tickCmd(gen)
}

func (m Model) handleTodayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < len(m.today.Rows)-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < len(m.today.Slots)-1 {
			m.col++
		}
	case key.Matches(msg, m.keys.StopTimer):
		m.countdown.Stop()
		m.remaining = 0
	case key.Matches(msg, m.keys.Enter):
		return m.toggleSelected()
	}
	return m, nil
}

// toggleSelected marks the selected dose taken, or asks before undoing a taken one.
func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	row, cell, ok := m.selected()
	if !ok || !cell.Scheduled {
		return m, nil
	}
	if cell.Taken() {
		m.pending = doseRef{DropID: row.DropID, Slot: cell.Slot}
		m.state = constants.StateConfirmUndo
		return m, nil
	}

	m.notice = ""
	_, err := m.tracker.MarkTaken(row.DropID, cell.Slot)
	if err != nil {
		m.setError(err)
		if !errors.IsPersistence(err) {
			m.refresh()
			return m, nil
		}
	}
	m.refresh()
	return m.startCountdown()
}

func (m Model) handleConfirmUndo(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.notice = ""
		if err := m.tracker.Undo(m.pending.DropID, m.pending.Slot); err != nil {
			m.setError(err)
		}
		m.pending = doseRef{}
		m.state = constants.StateToday
		m.refresh()
	case key.Matches(msg, m.keys.Cancel):
		m.pending = doseRef{}
		m.state = constants.StateToday
	}
	return m, nil
}

func (m Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.histIndex > 0 {
			m.histIndex--
		}
	case key.Matches(msg, m.keys.Down):
		if m.histIndex < len(m.history)-1 {
			m.histIndex++
		}
	case key.Matches(msg, m.keys.Enter):
		if m.histIndex < len(m.history) {
			date := m.history[m.histIndex].Date
			m.expanded[date] = !m.expanded[date]
		}
	}
	return m, nil
}

func (m Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Edit):
		m.settingsForm = newSettingsFormModel(m.tracker.Settings())
		m.form = NewSettingsForm(m.settingsForm, m.tracker.Locale())
		m.formError = ""
		m.state = constants.StateEditSettings
		return m, m.form.Init()
	case key.Matches(msg, m.keys.Reset):
		m.state = constants.StateConfirmReset
	}
	return m, nil
}

func (m Model) handleConfirmReset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.notice = ""
		if m.beforeReset != nil {
			m.beforeReset()
		}
		if _, err := m.tracker.ResetSettings(); err != nil {
			m.setError(err)
		}
		m.state = constants.StateSettings
		m.refresh()
	case key.Matches(msg, m.keys.Cancel):
		m.state = constants.StateSettings
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.formError = ""
		m.state = constants.StateSettings
		return m, nil
	}
	if msg, ok := msg.(tickMsg); ok {
		// keep the countdown running while the form is open
		return m.handleTick(msg)
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		return m.saveSettingsForm(cmds)
	case huh.StateAborted:
		m.formError = ""
		m.state = constants.StateSettings
	}
	return m, tea.Batch(cmds...)
}

func (m Model) saveSettingsForm(cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	_, err := m.tracker.SaveSettingsDraft(m.settingsForm.Draft())
	if errors.IsValidation(err) {
		// stay in the form so the user can fix the input
		m.formError = "Failed to update settings: " + err.Error()
		m.form.State = huh.StateNormal
		return m, tea.Batch(cmds...)
	}
	m.notice = ""
	if err != nil {
		m.setError(err)
	}
	m.formError = ""
	m.state = constants.StateSettings
	m.refresh()
	return m, tea.Batch(cmds...)
}
