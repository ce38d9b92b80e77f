package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/utils"
)

// ConflictType identifies what kind of integrity problem was found
type ConflictType string

const (
	ConflictInvalidSlotTime ConflictType = "invalid_slot_time"
	ConflictMissingSlotTime ConflictType = "missing_slot_time"
	ConflictMissingDropID   ConflictType = "missing_drop_id"
	ConflictDuplicateDropID ConflictType = "duplicate_drop_id"
	ConflictInvalidSlot     ConflictType = "invalid_slot"
	ConflictInvalidDate     ConflictType = "invalid_date"
	ConflictDuplicateDate   ConflictType = "duplicate_date"
	ConflictDuplicateDose   ConflictType = "duplicate_dose"
	ConflictDanglingDrop    ConflictType = "dangling_drop"
)

// Severity separates hard integrity errors from tolerated oddities.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Conflict is one problem found in persisted settings or logs
type Conflict struct {
	Type        ConflictType
	Severity    Severity
	Description string
	Date        string // YYYY-MM-DD, when the problem is inside a day log
}

// ValidationResult collects the conflicts of one validation pass
type ValidationResult struct {
	Conflicts []Conflict
}

func (vr *ValidationResult) add(c Conflict) {
	if c.Severity == "" {
		c.Severity = SeverityError
	}
	vr.Conflicts = append(vr.Conflicts, c)
}

// HasErrors reports whether any conflict has error severity.
func (vr *ValidationResult) HasErrors() bool {
	for _, c := range vr.Conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Merge appends the conflicts of other.
func (vr *ValidationResult) Merge(other ValidationResult) {
	vr.Conflicts = append(vr.Conflicts, other.Conflicts...)
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if len(vr.Conflicts) == 0 {
		return "No problems detected."
	}
	var b strings.Builder
	b.WriteString("Problems detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- [%s] %s\n", c.Severity, c.Description)
	}
	return b.String()
}

// Validator checks persisted settings and day logs for integrity problems
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateSettings checks slot times and eye-drop identity.
func (v *Validator) ValidateSettings(s models.Settings) ValidationResult {
	result := ValidationResult{}

	for _, slot := range models.AllSlots {
		t, ok := s.SlotTimes[slot]
		switch {
		case !ok:
			result.add(Conflict{Type: ConflictMissingSlotTime, Description: fmt.Sprintf("No time set for slot %s", slot)})
		case !utils.ValidateTimeFormat(t):
			result.add(Conflict{Type: ConflictInvalidSlotTime, Description: fmt.Sprintf("Slot %s has invalid time %q (expected HH:MM)", slot, t)})
		}
	}
	for slot := range s.SlotTimes {
		if !slot.IsValid() {
			result.add(Conflict{Type: ConflictInvalidSlot, Severity: SeverityWarning, Description: fmt.Sprintf("Unknown slot %q in slot times", slot)})
		}
	}

	seen := map[string]int{}
	for _, d := range s.EyeDrops {
		if d.ID == "" {
			result.add(Conflict{Type: ConflictMissingDropID, Description: fmt.Sprintf("Eye drop %q has no id", d.Name)})
			continue
		}
		seen[d.ID]++
		for _, slot := range d.Slots {
			if !slot.IsValid() {
				result.add(Conflict{Type: ConflictInvalidSlot, Description: fmt.Sprintf("Eye drop %q has unknown slot %q", d.Name, slot)})
			}
		}
	}
	for _, id := range sortedKeys(seen) {
		if seen[id] > 1 {
			result.add(Conflict{Type: ConflictDuplicateDropID, Description: fmt.Sprintf("Eye drop id %q is used %d times", id, seen[id])})
		}
	}
	return result
}

// ValidateLogs checks day-log dates and doses. Doses referring to drops missing from s
// are reported as warnings since removed drops leave them behind.
func (v *Validator) ValidateLogs(logs []models.DayLog, s models.Settings) ValidationResult {
	result := ValidationResult{}
	dates := map[string]int{}
	dangling := map[string]bool{}

	for _, log := range logs {
		if !utils.ValidateDateFormat(log.Date) {
			result.add(Conflict{Type: ConflictInvalidDate, Date: log.Date, Description: fmt.Sprintf("Day log has invalid date %q", log.Date)})
		}
		dates[log.Date]++

		doses := map[string]bool{}
		for _, d := range log.Doses {
			if !d.Slot.IsValid() {
				result.add(Conflict{Type: ConflictInvalidSlot, Date: log.Date, Description: fmt.Sprintf("%s: dose for %q has unknown slot %q", log.Date, d.DropID, d.Slot)})
			}
			key := d.DropID + "/" + string(d.Slot)
			if doses[key] {
				result.add(Conflict{Type: ConflictDuplicateDose, Date: log.Date, Description: fmt.Sprintf("%s: dose %s appears more than once", log.Date, key)})
			}
			doses[key] = true
			if s.FindEyeDrop(d.DropID) < 0 {
				dangling[d.DropID] = true
			}
		}
	}

	for _, date := range sortedKeys(dates) {
		if dates[date] > 1 {
			result.add(Conflict{Type: ConflictDuplicateDate, Date: date, Description: fmt.Sprintf("Date %s has %d day logs", date, dates[date])})
		}
	}
	for _, id := range sortedKeys(dangling) {
		result.add(Conflict{
			Type:        ConflictDanglingDrop,
			Severity:    SeverityWarning,
			Description: fmt.Sprintf("History refers to eye drop %q which is no longer configured", id),
		})
	}
	return result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
