package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/timer"
	"github.com/julianstephens/droptime/internal/tracker"
	"github.com/julianstephens/droptime/internal/utils"
)

var tabTitles = []string{"Today", "History", "Settings"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateToday:
		content = m.viewToday()
	case constants.StateHistory:
		content = m.viewHistory()
	case constants.StateSettings:
		content = m.viewSettings()
	case constants.StateEditSettings:
		content = m.viewForm()
	case constants.StateConfirmUndo:
		content = m.viewConfirm(fmt.Sprintf("Undo %s?", m.pendingLabel()))
	case constants.StateConfirmReset:
		content = m.viewConfirm("Reset all settings to defaults?")
	}

	var notice string
	if m.notice != "" {
		notice = warningStyle.Render(m.notice)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		notice,
		m.help.View(m.keys),
	)
}

func (m Model) viewTabs() string {
	active := 0
	switch m.state {
	case constants.StateHistory:
		active = 1
	case constants.StateSettings, constants.StateEditSettings, constants.StateConfirmReset:
		active = 2
	}
	var tabs []string
	for i, title := range tabTitles {
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewToday() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.today.DisplayDate))
	b.WriteString("\n\n")

	if len(m.today.Rows) == 0 {
		b.WriteString(mutedStyle.Render("No eye drops configured. Add one in Settings."))
		return docStyle.Render(b.String())
	}
	b.WriteString(renderGrid(m.today.Slots, m.today.Rows, m.row, m.col, true))
	b.WriteString("\n\n")

	p := m.today.Progress
	b.WriteString(fmt.Sprintf("%s %d/%d (%d%%)", m.progress.ViewAs(float64(p.Percentage)/100), p.Completed, p.Total, p.Percentage))

	if m.countdown.Running() {
		b.WriteString("\n\n")
		b.WriteString(timerStyle.Render("Next drop in " + timer.Format(m.remaining)))
	}
	return docStyle.Render(b.String())
}

// renderGrid draws drops as rows and slots as columns. The cursor is drawn only when
// withCursor is set.
func renderGrid(slots []tracker.SlotHeader, rows []tracker.Row, cursorRow, cursorCol int, withCursor bool) string {
	var lines []string

	header := []string{nameStyle.Render("")}
	for _, h := range slots {
		label := h.Label
		if h.Time != "" {
			label += " " + h.Time
		}
		header = append(header, slotHeaderStyle.Render(label))
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for i, row := range rows {
		name := row.Name
		if !row.Known {
			name += " (removed)"
		}
		cells := []string{dropStyle(row.Color).Render(name)}
		for j, cell := range row.Cells {
			style := cellStyle
			if withCursor && i == cursorRow && j == cursorCol {
				style = cursorStyle
			}
			cells = append(cells, style.Render(cellMark(cell)))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}

func cellMark(c tracker.Cell) string {
	switch {
	case !c.Scheduled:
		return mutedStyle.Render("-")
	case c.Taken():
		return takenStyle.Render("✓ " + utils.CurrentTime(*c.TakenAt))
	default:
		return "○"
	}
}

func (m Model) viewHistory() string {
	if len(m.history) == 0 {
		return docStyle.Render(mutedStyle.Render("No history yet."))
	}
	var b strings.Builder
	for i, entry := range m.history {
		marker := "  "
		if i == m.histIndex {
			marker = "> "
		}
		p := entry.Progress
		line := fmt.Sprintf("%s%s  %d/%d (%d%%)", marker, entry.DisplayDate, p.Completed, p.Total, p.Percentage)
		if i == m.histIndex {
			line = headerStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if m.expanded[entry.Date] {
			b.WriteString(renderGrid(m.slotHeadersNoTime(), entry.Rows, 0, 0, false))
			b.WriteString("\n\n")
		}
	}
	return docStyle.Render(b.String())
}

// slotHeadersNoTime labels history columns without today's slot times, which may have
// changed since.
func (m Model) slotHeadersNoTime() []tracker.SlotHeader {
	headers := make([]tracker.SlotHeader, len(models.AllSlots))
	for i, slot := range models.AllSlots {
		headers[i] = tracker.SlotHeader{Slot: slot, Label: slot.Label(m.tracker.Locale())}
	}
	return headers
}

func (m Model) viewSettings() string {
	s := m.tracker.Settings()
	locale := m.tracker.Locale()

	var b strings.Builder
	b.WriteString(headerStyle.Render("Slot times"))
	b.WriteString("\n")
	for _, slot := range models.AllSlots {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", slot.Label(locale), s.SlotTime(slot)))
	}
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Eye drops"))
	b.WriteString("\n")
	if len(s.EyeDrops) == 0 {
		b.WriteString(mutedStyle.Render("  none"))
		b.WriteString("\n")
	}
	for _, drop := range s.EyeDrops {
		var labels []string
		for _, slot := range drop.Slots {
			labels = append(labels, slot.Label(locale))
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			dropStyle(drop.Color).Render(drop.Name),
			mutedStyle.Render(drop.Color),
			strings.Join(labels, ", ")))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("[e] edit  [r] reset to defaults"))
	return docStyle.Render(b.String())
}

func (m Model) viewForm() string {
	view := m.form.View()
	if m.formError != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, dangerStyle.Render(m.formError), view)
	}
	return docStyle.Render(view)
}

func (m Model) viewConfirm(question string) string {
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(question),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) pendingLabel() string {
	name := m.pending.DropID
	for _, row := range m.today.Rows {
		if row.DropID == m.pending.DropID {
			name = row.Name
			break
		}
	}
	return fmt.Sprintf("%s (%s)", name, m.pending.Slot.Label(m.tracker.Locale()))
}
