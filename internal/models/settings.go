package models

import "github.com/julianstephens/droptime/internal/constants"

// Settings is the user's eye-drop regimen.
type Settings struct {
	SlotTimes map[TimeSlot]string `json:"slotTimes"` // HH:MM per slot, always all four keys after load
	EyeDrops  []EyeDrop           `json:"eyeDrops"`  // display order
}

// EyeDrop is one product in the regimen. An empty Slots list means the drop is inactive.
type EyeDrop struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Slots []TimeSlot `json:"slots"`
	Color string     `json:"color"`
}

// DefaultSettings returns a fresh copy of the compiled-in regimen.
func DefaultSettings() Settings {
	return DefaultSettingsFor(constants.DefaultLocale)
}

// DefaultSettingsFor returns the compiled-in regimen with drop names for locale.
func DefaultSettingsFor(locale string) Settings {
	return Settings{
		SlotTimes: DefaultSlotTimes(),
		EyeDrops:  DefaultEyeDropsFor(locale),
	}
}

// DefaultSlotTimes returns a fresh map of the default slot times.
func DefaultSlotTimes() map[TimeSlot]string {
	return map[TimeSlot]string{
		SlotMorning: constants.DefaultMorningTime,
		SlotNoon:    constants.DefaultNoonTime,
		SlotEvening: constants.DefaultEveningTime,
		SlotBedtime: constants.DefaultBedtimeTime,
	}
}

// DefaultEyeDrops returns a fresh slice of the default eye drops.
func DefaultEyeDrops() []EyeDrop {
	return DefaultEyeDropsFor(constants.DefaultLocale)
}

// DefaultEyeDropsFor returns the default eye drops. Ids are the same in every locale;
// Japanese names carry the 目薬 prefix.
func DefaultEyeDropsFor(locale string) []EyeDrop {
	prefix := ""
	if locale == constants.LocaleJapanese {
		prefix = "目薬"
	}
	return []EyeDrop{
		{ID: "A", Name: prefix + "A", Slots: []TimeSlot{SlotMorning, SlotNoon, SlotEvening, SlotBedtime}, Color: constants.DefaultColorGreen},
		{ID: "B", Name: prefix + "B", Slots: []TimeSlot{SlotMorning, SlotNoon, SlotEvening, SlotBedtime}, Color: constants.DefaultColorBlue},
		{ID: "C", Name: prefix + "C", Slots: []TimeSlot{SlotMorning, SlotEvening}, Color: constants.DefaultColorOrange},
	}
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	out := Settings{}
	if s.SlotTimes != nil {
		out.SlotTimes = make(map[TimeSlot]string, len(s.SlotTimes))
		for k, v := range s.SlotTimes {
			out.SlotTimes[k] = v
		}
	}
	if s.EyeDrops != nil {
		out.EyeDrops = make([]EyeDrop, len(s.EyeDrops))
		for i, d := range s.EyeDrops {
			out.EyeDrops[i] = d.Clone()
		}
	}
	return out
}

// FindEyeDrop returns the index of the drop with id, or -1.
func (s Settings) FindEyeDrop(id string) int {
	for i, d := range s.EyeDrops {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// EyeDropByID returns the drop with id.
func (s Settings) EyeDropByID(id string) (EyeDrop, bool) {
	if i := s.FindEyeDrop(id); i >= 0 {
		return s.EyeDrops[i], true
	}
	return EyeDrop{}, false
}

// SlotTime returns the configured HH:MM for slot, falling back to the default.
func (s Settings) SlotTime(slot TimeSlot) string {
	if t, ok := s.SlotTimes[slot]; ok && t != "" {
		return t
	}
	return DefaultSlotTimes()[slot]
}

func (d EyeDrop) Clone() EyeDrop {
	if d.Slots != nil {
		d.Slots = append([]TimeSlot(nil), d.Slots...)
	}
	return d
}

// HasSlot reports whether the drop is scheduled in slot.
func (d EyeDrop) HasSlot(slot TimeSlot) bool {
	for _, s := range d.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Active reports whether the drop has any scheduled slot.
func (d EyeDrop) Active() bool {
	return len(d.Slots) > 0
}
