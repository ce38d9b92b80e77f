package models

import (
	"math"
	"time"
)

// DayLog records the doses expected and taken on one calendar day.
type DayLog struct {
	Date  string `json:"date"` // YYYY-MM-DD, local calendar day
	Doses []Dose `json:"doses"`
}

// Dose is one expected application of a drop in a slot.
type Dose struct {
	DropID      string     `json:"dropId"`
	Slot        TimeSlot   `json:"slot"`
	PlannedTime string     `json:"plannedTime"`
	TakenAt     *time.Time `json:"takenAt"`
}

// Progress summarizes how many doses of a day have been taken.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// NewDayLog expands settings into one untaken dose per (drop, slot) pairing.
// Doses follow drop order, then canonical slot order within each drop.
func NewDayLog(date string, s Settings) DayLog {
	log := DayLog{Date: date, Doses: []Dose{}}
	for _, drop := range s.EyeDrops {
		for _, slot := range AllSlots {
			if !drop.HasSlot(slot) {
				continue
			}
			log.Doses = append(log.Doses, Dose{
				DropID:      drop.ID,
				Slot:        slot,
				PlannedTime: s.SlotTime(slot),
			})
		}
	}
	return log
}

// FindDose returns the index of the dose for (dropID, slot), or -1.
func (l DayLog) FindDose(dropID string, slot TimeSlot) int {
	for i, d := range l.Doses {
		if d.DropID == dropID && d.Slot == slot {
			return i
		}
	}
	return -1
}

// Regenerate re-derives the log's doses from settings. Pairings that survive keep their
// taken timestamp, removed pairings are dropped and new ones start untaken.
func (l DayLog) Regenerate(s Settings) DayLog {
	fresh := NewDayLog(l.Date, s)
	for i, d := range fresh.Doses {
		if j := l.FindDose(d.DropID, d.Slot); j >= 0 && l.Doses[j].TakenAt != nil {
			t := *l.Doses[j].TakenAt
			fresh.Doses[i].TakenAt = &t
		}
	}
	return fresh
}

// Clone returns a deep copy of the log.
func (l DayLog) Clone() DayLog {
	out := DayLog{Date: l.Date}
	if l.Doses != nil {
		out.Doses = make([]Dose, len(l.Doses))
		for i, d := range l.Doses {
			if d.TakenAt != nil {
				t := *d.TakenAt
				d.TakenAt = &t
			}
			out.Doses[i] = d
		}
	}
	return out
}

// Taken reports whether the dose has been recorded.
func (d Dose) Taken() bool {
	return d.TakenAt != nil
}

// ComputeProgress counts taken doses. Percentage is rounded and 0 for an empty log.
func ComputeProgress(l DayLog) Progress {
	p := Progress{Total: len(l.Doses)}
	for _, d := range l.Doses {
		if d.Taken() {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
	}
	return p
}
