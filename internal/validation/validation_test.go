package validation

import (
	"testing"
	"time"

	"github.com/julianstephens/droptime/internal/errors"
	"github.com/julianstephens/droptime/internal/models"
)

func hasConflict(result ValidationResult, ct ConflictType) bool {
	for _, c := range result.Conflicts {
		if c.Type == ct {
			return true
		}
	}
	return false
}

func TestValidateSettings(t *testing.T) {
	validator := New()

	t.Run("defaults are clean", func(t *testing.T) {
		result := validator.ValidateSettings(models.DefaultSettings())
		if len(result.Conflicts) != 0 {
			t.Errorf("unexpected conflicts: %s", result.FormatReport())
		}
	})

	t.Run("bad and missing slot times", func(t *testing.T) {
		s := models.DefaultSettings()
		s.SlotTimes[models.SlotNoon] = "25:00"
		delete(s.SlotTimes, models.SlotBedtime)
		result := validator.ValidateSettings(s)
		if !hasConflict(result, ConflictInvalidSlotTime) || !hasConflict(result, ConflictMissingSlotTime) {
			t.Errorf("expected slot time conflicts, got: %s", result.FormatReport())
		}
	})

	t.Run("duplicate and missing ids", func(t *testing.T) {
		s := models.DefaultSettings()
		s.EyeDrops[1].ID = "A"
		s.EyeDrops = append(s.EyeDrops, models.EyeDrop{Name: "nameless"})
		result := validator.ValidateSettings(s)
		if !hasConflict(result, ConflictDuplicateDropID) || !hasConflict(result, ConflictMissingDropID) {
			t.Errorf("expected id conflicts, got: %s", result.FormatReport())
		}
		if !result.HasErrors() {
			t.Error("HasErrors() = false")
		}
	})
}

func TestValidateLogs(t *testing.T) {
	validator := New()
	s := models.DefaultSettings()
	now := time.Now()

	good := models.NewDayLog("2024-01-01", s)
	good.Doses[0].TakenAt = &now

	dup := models.NewDayLog("2024-01-02", s)
	dup.Doses = append(dup.Doses, dup.Doses[0], models.Dose{DropID: "gone", Slot: models.SlotNoon})

	logs := []models.DayLog{good, dup, models.NewDayLog("2024-01-02", s), {Date: "01/03/2024"}}
	result := validator.ValidateLogs(logs, s)

	for _, ct := range []ConflictType{ConflictDuplicateDose, ConflictDuplicateDate, ConflictInvalidDate, ConflictDanglingDrop} {
		if !hasConflict(result, ct) {
			t.Errorf("missing %s conflict in: %s", ct, result.FormatReport())
		}
	}

	clean := validator.ValidateLogs([]models.DayLog{good}, s)
	if len(clean.Conflicts) != 0 {
		t.Errorf("unexpected conflicts: %s", clean.FormatReport())
	}
}

func TestDanglingDropIsWarningOnly(t *testing.T) {
	s := models.DefaultSettings()
	log := models.DayLog{Date: "2024-01-01", Doses: []models.Dose{{DropID: "removed", Slot: models.SlotMorning}}}
	result := New().ValidateLogs([]models.DayLog{log}, s)
	if result.HasErrors() {
		t.Errorf("dangling reference reported as error: %s", result.FormatReport())
	}
	if len(result.Conflicts) != 1 {
		t.Errorf("conflicts = %d, want 1", len(result.Conflicts))
	}
}

func TestSlotTime(t *testing.T) {
	tests := []struct {
		slot    models.TimeSlot
		value   string
		wantErr bool
	}{
		{models.SlotMorning, "06:45", false},
		{models.SlotBedtime, "23:59", false},
		{models.SlotNoon, "12:5", true},
		{models.SlotNoon, "24:00", true},
		{models.SlotNoon, "", true},
		{models.TimeSlot("brunch"), "10:00", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.slot)+"_"+tt.value, func(t *testing.T) {
			err := SlotTime(tt.slot, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SlotTime(%s, %q) error = %v, wantErr %v", tt.slot, tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.IsValidation(err) {
				t.Errorf("error %v does not wrap ErrValidation", err)
			}
		})
	}
}

func TestEyeDropFields(t *testing.T) {
	if err := EyeDropFields("Hyalein", "#4CAF50"); err != nil {
		t.Errorf("valid drop rejected: %v", err)
	}
	if err := EyeDropFields("Hyalein", ""); err != nil {
		t.Errorf("empty color rejected: %v", err)
	}
	if err := EyeDropFields("  ", "#4CAF50"); err == nil {
		t.Error("blank name accepted")
	}
	if err := EyeDropFields("A", "green"); err == nil {
		t.Error("invalid color accepted")
	}
}

func TestDraft(t *testing.T) {
	name := "Cravit"
	badColor := "#12"
	tests := []struct {
		name    string
		draft   models.SettingsDraft
		wantErr bool
	}{
		{
			name:  "valid",
			draft: models.SettingsDraft{SlotTimes: map[models.TimeSlot]string{models.SlotNoon: "13:00"}, EyeDrops: map[string]models.EyeDropEdit{"A": {Name: &name}}},
		},
		{
			name:    "bad time",
			draft:   models.SettingsDraft{SlotTimes: map[models.TimeSlot]string{models.SlotNoon: "1pm"}},
			wantErr: true,
		},
		{
			name:    "bad color",
			draft:   models.SettingsDraft{EyeDrops: map[string]models.EyeDropEdit{"A": {Color: &badColor}}},
			wantErr: true,
		},
		{
			name:    "unknown slot",
			draft:   models.SettingsDraft{EyeDrops: map[string]models.EyeDropEdit{"A": {Slots: map[models.TimeSlot]bool{"lunch": true}}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Draft(tt.draft)
			if (err != nil) != tt.wantErr {
				t.Errorf("Draft() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
