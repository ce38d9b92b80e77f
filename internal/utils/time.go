package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/droptime/internal/constants"
)

var jaWeekdays = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// Today returns the calendar date (YYYY-MM-DD) of now in now's own location.
// Callers pass a time already converted to the user's zone; no UTC shift is applied.
func Today(now time.Time) string {
	return now.Format(constants.DateFormat)
}

// CurrentTime returns the wall-clock time of now as HH:MM.
func CurrentTime(now time.Time) string {
	return now.Format(constants.TimeFormat)
}

// FormatForDisplay renders a YYYY-MM-DD key as a human date with its weekday.
// The key is interpreted as a plain calendar date, so the result never depends on the
// process timezone.
func FormatForDisplay(dateKey, locale string) (string, error) {
	d, err := time.Parse(constants.DateFormat, dateKey)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", dateKey, err)
	}
	switch locale {
	case constants.LocaleJapanese:
		return fmt.Sprintf("%d年%d月%d日（%s）", d.Year(), int(d.Month()), d.Day(), jaWeekdays[d.Weekday()]), nil
	case "", constants.LocaleEnglish:
		return d.Format("Monday, January 2, 2006"), nil
	default:
		return "", fmt.Errorf("unsupported locale %q", locale)
	}
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimeFormat reports whether s is a zero-padded 24h HH:MM time.
func ValidateTimeFormat(s string) bool {
	if len(s) != len(constants.TimeFormat) {
		return false
	}
	_, err := time.Parse(constants.TimeFormat, s)
	return err == nil
}

// ValidateDateFormat reports whether s is a valid YYYY-MM-DD date.
func ValidateDateFormat(s string) bool {
	if len(s) != len(constants.DateFormat) {
		return false
	}
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
