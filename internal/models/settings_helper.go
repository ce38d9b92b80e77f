package models

import (
	"sort"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/utils"
)

// ApplyDefaults fills gaps in settings read from storage using the default locale.
func ApplyDefaults(s *Settings) []string {
	return ApplyDefaultsFor(s, constants.DefaultLocale)
}

// ApplyDefaultsFor fills gaps in settings read from storage. Unknown slot keys are
// removed, missing or unparseable slot times are taken from the defaults, and a nil
// eye-drop list is replaced by the default list for locale. Individual eye drops are kept
// as stored.
// It returns the names of the fields that were repaired.
func ApplyDefaultsFor(s *Settings, locale string) []string {
	var repaired []string

	defaults := DefaultSlotTimes()
	if s.SlotTimes == nil {
		s.SlotTimes = defaults
		repaired = append(repaired, "slotTimes")
	} else {
		var unknown []string
		for slot := range s.SlotTimes {
			if !slot.IsValid() {
				delete(s.SlotTimes, slot)
				unknown = append(unknown, "slotTimes."+string(slot))
			}
		}
		sort.Strings(unknown)
		repaired = append(repaired, unknown...)

		for _, slot := range AllSlots {
			if t, ok := s.SlotTimes[slot]; !ok || !utils.ValidateTimeFormat(t) {
				s.SlotTimes[slot] = defaults[slot]
				repaired = append(repaired, "slotTimes."+string(slot))
			}
		}
	}

	if s.EyeDrops == nil {
		s.EyeDrops = DefaultEyeDropsFor(locale)
		repaired = append(repaired, "eyeDrops")
	}
	return repaired
}
