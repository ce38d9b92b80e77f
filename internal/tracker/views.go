package tracker

import (
	"time"

	"github.com/julianstephens/droptime/internal/errors"
	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/utils"
)

// SlotHeader describes one grid column.
type SlotHeader struct {
	Slot  models.TimeSlot
	Label string
	Time  string
}

// Cell is one (drop, slot) intersection of the grid.
type Cell struct {
	Slot      models.TimeSlot
	Scheduled bool
	TakenAt   *time.Time
}

func (c Cell) Taken() bool { return c.TakenAt != nil }

// Row is one drop's line in the grid. Known is false for ids no longer in settings.
type Row struct {
	DropID string
	Name   string
	Color  string
	Known  bool
	Cells  []Cell
}

// TodayView is everything the today screen renders.
type TodayView struct {
	Date        string
	DisplayDate string
	Slots       []SlotHeader
	Rows        []Row
	Progress    models.Progress
}

// HistoryEntry summarizes one past day.
type HistoryEntry struct {
	Date        string
	DisplayDate string
	Progress    models.Progress
	Rows        []Row
}

func (t *Tracker) displayDate(date string) string {
	if s, err := utils.FormatForDisplay(date, t.locale); err == nil {
		return s
	}
	return date
}

func (t *Tracker) slotHeaders(s models.Settings) []SlotHeader {
	headers := make([]SlotHeader, len(models.AllSlots))
	for i, slot := range models.AllSlots {
		headers[i] = SlotHeader{Slot: slot, Label: slot.Label(t.locale), Time: s.SlotTime(slot)}
	}
	return headers
}

// TodayView builds the grid for today, creating today's log if needed. A persistence
// error is returned alongside a usable view.
func (t *Tracker) TodayView() (TodayView, error) {
	s := t.settings.Current()
	date := t.Today()
	log, err := t.logs.GetOrCreate(date, s)
	if err != nil && !errors.IsPersistence(err) {
		return TodayView{}, err
	}

	view := TodayView{
		Date:        date,
		DisplayDate: t.displayDate(date),
		Slots:       t.slotHeaders(s),
		Progress:    models.ComputeProgress(log),
	}
	for _, drop := range s.EyeDrops {
		row := Row{DropID: drop.ID, Name: drop.Name, Color: drop.Color, Known: true}
		for _, slot := range models.AllSlots {
			cell := Cell{Slot: slot}
			if i := log.FindDose(drop.ID, slot); i >= 0 {
				cell.Scheduled = true
				cell.TakenAt = inZone(log.Doses[i].TakenAt, t.loc)
			}
			row.Cells = append(row.Cells, cell)
		}
		view.Rows = append(view.Rows, row)
	}
	return view, err
}

// History returns every stored day, newest first, with drop names resolved through the
// current settings.
func (t *Tracker) History() []HistoryEntry {
	s := t.settings.Current()
	var out []HistoryEntry
	for _, log := range t.logs.History() {
		out = append(out, HistoryEntry{
			Date:        log.Date,
			DisplayDate: t.displayDate(log.Date),
			Progress:    models.ComputeProgress(log),
			Rows:        historyRows(log, s, t.loc),
		})
	}
	return out
}

// inZone returns ts converted to loc. Stored times keep whatever offset they were written
// with, so cells are normalised before they are formatted.
func inZone(ts *time.Time, loc *time.Location) *time.Time {
	if ts == nil {
		return nil
	}
	local := ts.In(loc)
	return &local
}

// historyRows groups a log's doses by drop, in first-appearance order.
func historyRows(log models.DayLog, s models.Settings, loc *time.Location) []Row {
	var rows []Row
	index := map[string]int{}
	for _, d := range log.Doses {
		i, ok := index[d.DropID]
		if !ok {
			row := Row{DropID: d.DropID, Name: d.DropID}
			if drop, found := s.EyeDropByID(d.DropID); found {
				row.Name, row.Color, row.Known = drop.Name, drop.Color, true
			}
			for _, slot := range models.AllSlots {
				row.Cells = append(row.Cells, Cell{Slot: slot})
			}
			rows = append(rows, row)
			i = len(rows) - 1
			index[d.DropID] = i
		}
		if j := d.Slot.Index(); j >= 0 {
			rows[i].Cells[j] = Cell{Slot: d.Slot, Scheduled: true, TakenAt: inZone(d.TakenAt, loc)}
		}
	}
	return rows
}
