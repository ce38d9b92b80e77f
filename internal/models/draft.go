package models

import "strings"

// SettingsDraft carries the edits from a settings form. Drops are keyed by id and
// anything not mentioned is left as it is.
type SettingsDraft struct {
	SlotTimes map[TimeSlot]string
	EyeDrops  map[string]EyeDropEdit
}

// EyeDropEdit holds per-field edits for one drop. Nil fields are unchanged; Slots sets
// membership only for the slots it contains.
type EyeDropEdit struct {
	Name  *string
	Color *string
	Slots map[TimeSlot]bool
}

// Apply returns a copy of s with the draft's edits applied. Ids that match no drop are
// ignored. The draft is assumed to be validated.
func (d SettingsDraft) Apply(s Settings) Settings {
	out := s.Clone()
	if out.SlotTimes == nil {
		out.SlotTimes = DefaultSlotTimes()
	}
	for slot, t := range d.SlotTimes {
		out.SlotTimes[slot] = t
	}

	for id, edit := range d.EyeDrops {
		i := out.FindEyeDrop(id)
		if i < 0 {
			continue
		}
		drop := &out.EyeDrops[i]
		if edit.Name != nil {
			drop.Name = strings.TrimSpace(*edit.Name)
		}
		if edit.Color != nil {
			drop.Color = *edit.Color
		}
		if edit.Slots != nil {
			var slots []TimeSlot
			for _, slot := range AllSlots {
				on, set := edit.Slots[slot]
				if (set && on) || (!set && drop.HasSlot(slot)) {
					slots = append(slots, slot)
				}
			}
			if slots == nil {
				slots = []TimeSlot{}
			}
			drop.Slots = slots
		}
	}
	return out
}
