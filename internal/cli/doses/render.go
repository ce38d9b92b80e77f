package doses

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/tracker"
	"github.com/julianstephens/droptime/internal/utils"
)

const (
	nameWidth = 14
	cellWidth = 10
)

var (
	nameCol = lipgloss.NewStyle().Width(nameWidth)
	cellCol = lipgloss.NewStyle().Width(cellWidth)
)

func progressLine(p models.Progress) string {
	return fmt.Sprintf("%d/%d (%d%%)", p.Completed, p.Total, p.Percentage)
}

// cellText renders one grid cell: the taken time, a pending marker, or nothing when the
// drop is not scheduled in that slot.
func cellText(c tracker.Cell, loc *time.Location, taken, pending string) string {
	switch {
	case !c.Scheduled:
		return "-"
	case c.Taken():
		return taken + utils.CurrentTime(c.TakenAt.In(loc))
	default:
		return pending
	}
}

func writeGrid(b *strings.Builder, slots []tracker.SlotHeader, rows []tracker.Row, loc *time.Location, taken, pending string) {
	b.WriteString(nameCol.Render(""))
	for _, h := range slots {
		b.WriteString(cellCol.Render(h.Label))
	}
	b.WriteString("\n")
	if slots[0].Time != "" {
		b.WriteString(nameCol.Render(""))
		for _, h := range slots {
			b.WriteString(cellCol.Render(h.Time))
		}
		b.WriteString("\n")
	}
	for _, row := range rows {
		b.WriteString(nameCol.Render(row.Name))
		for _, c := range row.Cells {
			b.WriteString(cellCol.Render(cellText(c, loc, taken, pending)))
		}
		b.WriteString("\n")
	}
}

// renderToday formats the today view as a drop by slot grid.
func renderToday(view tracker.TodayView, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", view.DisplayDate)
	fmt.Fprintf(&b, "Progress: %s\n\n", progressLine(view.Progress))
	if len(view.Rows) == 0 {
		b.WriteString("No eye drops configured. Add one with 'droptime settings add'.\n")
		return b.String()
	}
	writeGrid(&b, view.Slots, view.Rows, loc, "✓ ", "·")
	return b.String()
}

// renderHistory lists days newest first. days limits the output when positive.
func renderHistory(entries []tracker.HistoryEntry, locale string, days int, detail bool, loc *time.Location) string {
	if len(entries) == 0 {
		return "No history yet.\n"
	}
	if days > 0 && days < len(entries) {
		entries = entries[:days]
	}

	headers := make([]tracker.SlotHeader, len(models.AllSlots))
	for i, slot := range models.AllSlots {
		headers[i] = tracker.SlotHeader{Slot: slot, Label: slot.Label(locale)}
	}

	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%s  %-32s %s\n", e.Date, e.DisplayDate, progressLine(e.Progress))
		if !detail || len(e.Rows) == 0 {
			continue
		}
		b.WriteString("\n")
		writeGrid(&b, headers, e.Rows, loc, "", "pending")
		if i < len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
