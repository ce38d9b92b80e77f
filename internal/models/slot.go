package models

import (
	"fmt"
	"strings"
)

// TimeSlot is one of the four fixed daily dosing windows.
type TimeSlot string

const (
	SlotMorning TimeSlot = "morning"
	SlotNoon    TimeSlot = "noon"
	SlotEvening TimeSlot = "evening"
	SlotBedtime TimeSlot = "bedtime"
)

// AllSlots lists every slot in canonical display order.
var AllSlots = []TimeSlot{SlotMorning, SlotNoon, SlotEvening, SlotBedtime}

var slotLabels = map[TimeSlot][2]string{
	SlotMorning: {"Morning", "朝"},
	SlotNoon:    {"Noon", "昼"},
	SlotEvening: {"Evening", "夕"},
	SlotBedtime: {"Bedtime", "寝前"},
}

// ParseTimeSlot converts user input into a TimeSlot. Matching is case-insensitive.
func ParseTimeSlot(s string) (TimeSlot, error) {
	slot := TimeSlot(strings.ToLower(strings.TrimSpace(s)))
	if !slot.IsValid() {
		return "", fmt.Errorf("unknown time slot %q (expected morning, noon, evening or bedtime)", s)
	}
	return slot, nil
}

func (s TimeSlot) IsValid() bool {
	_, ok := slotLabels[s]
	return ok
}

// Index returns the canonical position of the slot, or -1 for unknown values.
func (s TimeSlot) Index() int {
	for i, slot := range AllSlots {
		if slot == s {
			return i
		}
	}
	return -1
}

// Label returns the display label for the slot in the given locale ("en" or "ja").
func (s TimeSlot) Label(locale string) string {
	labels, ok := slotLabels[s]
	if !ok {
		return string(s)
	}
	if locale == "ja" {
		return labels[1]
	}
	return labels[0]
}

func (s TimeSlot) String() string { return string(s) }

// SortSlots returns the distinct valid slots of in, in canonical order.
func SortSlots(in []TimeSlot) []TimeSlot {
	out := make([]TimeSlot, 0, len(in))
	for _, slot := range AllSlots {
		for _, s := range in {
			if s == slot {
				out = append(out, slot)
				break
			}
		}
	}
	return out
}
