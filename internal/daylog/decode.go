package daylog

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/utils"
)

type rawLog struct {
	Date  string            `json:"date"`
	Doses []json.RawMessage `json:"doses"`
}

type rawDose struct {
	DropID      string          `json:"dropId"`
	Slot        models.TimeSlot `json:"slot"`
	PlannedTime string          `json:"plannedTime"`
	TakenAt     json.RawMessage `json:"takenAt"`
}

// DecodeLogs parses a stored logs record one entry at a time. A log without a usable date
// or a dose without a drop id and known slot is dropped; an unreadable takenAt is cleared.
// Every repair is described in the returned problems. An error is returned only when
// data is not a JSON array.
func DecodeLogs(data []byte) ([]models.DayLog, []string, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil, fmt.Errorf("logs record is not a list: %w", err)
	}

	var (
		logs     []models.DayLog
		problems []string
	)
	for i, entry := range entries {
		var raw rawLog
		if err := json.Unmarshal(entry, &raw); err != nil {
			problems = append(problems, fmt.Sprintf("log #%d dropped: %v", i, err))
			continue
		}
		if !utils.ValidateDateFormat(raw.Date) {
			problems = append(problems, fmt.Sprintf("log #%d dropped: bad date %q", i, raw.Date))
			continue
		}

		log := models.DayLog{Date: raw.Date, Doses: make([]models.Dose, 0, len(raw.Doses))}
		for j, d := range raw.Doses {
			dose, problem, ok := decodeDose(d)
			if problem != "" {
				problems = append(problems, fmt.Sprintf("%s dose #%d: %s", raw.Date, j, problem))
			}
			if ok {
				log.Doses = append(log.Doses, dose)
			}
		}
		logs = append(logs, log)
	}
	return logs, problems, nil
}

func decodeDose(data json.RawMessage) (models.Dose, string, bool) {
	var raw rawDose
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Dose{}, fmt.Sprintf("dropped: %v", err), false
	}
	if raw.DropID == "" {
		return models.Dose{}, "dropped: missing drop id", false
	}
	if !raw.Slot.IsValid() {
		return models.Dose{}, fmt.Sprintf("dropped: unknown slot %q", raw.Slot), false
	}

	dose := models.Dose{DropID: raw.DropID, Slot: raw.Slot, PlannedTime: raw.PlannedTime}
	if len(raw.TakenAt) == 0 || string(raw.TakenAt) == "null" {
		return dose, "", true
	}
	var s string
	if err := json.Unmarshal(raw.TakenAt, &s); err != nil {
		return dose, fmt.Sprintf("takenAt %s cleared", raw.TakenAt), true
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return dose, fmt.Sprintf("takenAt %q cleared", s), true
	}
	dose.TakenAt = &ts
	return dose, "", true
}
