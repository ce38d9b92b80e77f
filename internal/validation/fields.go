package validation

import (
	"fmt"
	"strings"

	"github.com/gookit/validate"

	"github.com/julianstephens/droptime/internal/errors"
	"github.com/julianstephens/droptime/internal/models"
)

const (
	timePattern  = `^([01][0-9]|2[0-3]):[0-5][0-9]$`
	colorPattern = `^#[0-9a-fA-F]{6}$`
	maxNameLen   = 40
)

var messages = map[string]string{
	"required": "{field} is required",
	"regexp":   "{field} has an invalid format",
	"maxLen":   "{field} is too long",
}

func check(data map[string]any, rules func(v *validate.Validation)) error {
	v := validate.Map(data)
	v.AddMessages(messages)
	rules(v)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", errors.ErrValidation, v.Errors.One())
	}
	return nil
}

// SlotTime validates one HH:MM slot time.
func SlotTime(slot models.TimeSlot, value string) error {
	if !slot.IsValid() {
		return fmt.Errorf("%w: unknown slot %q", errors.ErrValidation, slot)
	}
	err := check(map[string]any{"time": value}, func(v *validate.Validation) {
		v.AddRule("time", "required")
		v.AddRule("time", "regexp", timePattern)
	})
	if err != nil {
		return fmt.Errorf("slot %s: %w", slot, err)
	}
	return nil
}

// EyeDropFields validates a drop name and, when non-empty, its color.
func EyeDropFields(name, color string) error {
	data := map[string]any{"name": strings.TrimSpace(name), "color": color}
	return check(data, func(v *validate.Validation) {
		v.AddRule("name", "required")
		v.AddRule("name", "maxLen", maxNameLen)
		if color != "" {
			v.AddRule("color", "regexp", colorPattern)
		}
	})
}

// Color validates a required #RRGGBB color.
func Color(value string) error {
	return check(map[string]any{"color": value}, func(v *validate.Validation) {
		v.AddRule("color", "required")
		v.AddRule("color", "regexp", colorPattern)
	})
}

// Draft validates every edit in a settings draft without applying it.
func Draft(d models.SettingsDraft) error {
	for slot, t := range d.SlotTimes {
		if err := SlotTime(slot, t); err != nil {
			return err
		}
	}
	for id, edit := range d.EyeDrops {
		if edit.Name != nil {
			if err := EyeDropFields(*edit.Name, ""); err != nil {
				return fmt.Errorf("eye drop %q: %w", id, err)
			}
		}
		if edit.Color != nil {
			if err := Color(*edit.Color); err != nil {
				return fmt.Errorf("eye drop %q: %w", id, err)
			}
		}
		for slot := range edit.Slots {
			if !slot.IsValid() {
				return fmt.Errorf("%w: eye drop %q: unknown slot %q", errors.ErrValidation, id, slot)
			}
		}
	}
	return nil
}
