package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/validation"
)

type DropFormModel struct {
	ID    string
	Name  string
	Color string
	Slots []models.TimeSlot
}

// SettingsFormModel holds the values bound to the settings form fields.
type SettingsFormModel struct {
	SlotTimes [4]string
	Drops     []DropFormModel
}

func newSettingsFormModel(s models.Settings) *SettingsFormModel {
	fm := &SettingsFormModel{Drops: make([]DropFormModel, len(s.EyeDrops))}
	for i, slot := range models.AllSlots {
		fm.SlotTimes[i] = s.SlotTime(slot)
	}
	for i, drop := range s.EyeDrops {
		fm.Drops[i] = DropFormModel{
			ID:    drop.ID,
			Name:  drop.Name,
			Color: drop.Color,
			Slots: append([]models.TimeSlot(nil), drop.Slots...),
		}
	}
	return fm
}

// Draft converts the form values into a settings draft. Every slot's membership is set
// explicitly so unchecked slots are removed.
func (fm *SettingsFormModel) Draft() models.SettingsDraft {
	draft := models.SettingsDraft{
		SlotTimes: map[models.TimeSlot]string{},
		EyeDrops:  map[string]models.EyeDropEdit{},
	}
	for i, slot := range models.AllSlots {
		draft.SlotTimes[slot] = fm.SlotTimes[i]
	}
	for _, d := range fm.Drops {
		name, color := d.Name, d.Color
		membership := map[models.TimeSlot]bool{}
		for _, slot := range models.AllSlots {
			membership[slot] = false
		}
		for _, slot := range d.Slots {
			membership[slot] = true
		}
		draft.EyeDrops[d.ID] = models.EyeDropEdit{Name: &name, Color: &color, Slots: membership}
	}
	return draft
}

func NewSettingsForm(fm *SettingsFormModel, locale string) *huh.Form {
	var timeFields []huh.Field
	for i, slot := range models.AllSlots {
		slot := slot
		timeFields = append(timeFields, huh.NewInput().
			Title(fmt.Sprintf("%s (HH:MM)", slot.Label(locale))).
			Value(&fm.SlotTimes[i]).
			Validate(func(s string) error {
				return validation.SlotTime(slot, s)
			}))
	}
	groups := []*huh.Group{huh.NewGroup(timeFields...).Title("Slot times")}

	var options []huh.Option[models.TimeSlot]
	for _, slot := range models.AllSlots {
		options = append(options, huh.NewOption(slot.Label(locale), slot))
	}
	for i := range fm.Drops {
		d := &fm.Drops[i]
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&d.Name).
				Validate(func(s string) error {
					return validation.EyeDropFields(s, "")
				}),
			huh.NewInput().
				Title("Color (#RRGGBB)").
				Value(&d.Color).
				Validate(validation.Color),
			huh.NewMultiSelect[models.TimeSlot]().
				Title("Slots").
				Options(options...).
				Value(&d.Slots),
		).Title(d.Name))
	}
	return huh.NewForm(groups...)
}
