// Package tracker is the application facade used by the CLI and the TUI.
package tracker

import (
	"time"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/daylog"
	"github.com/julianstephens/droptime/internal/errors"
	"github.com/julianstephens/droptime/internal/logger"
	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/settings"
	"github.com/julianstephens/droptime/internal/storage"
	"github.com/julianstephens/droptime/internal/utils"
)

// Tracker ties the settings and day-log stores to a clock and a timezone.
type Tracker struct {
	settings *settings.Store
	logs     *daylog.Store
	clock    func() time.Time
	loc      *time.Location
	locale   string
}

type Option func(*Tracker)

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) { t.clock = clock }
}

// WithLocation sets the zone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithLocale sets the language for display dates, slot labels and default drop names.
func WithLocale(locale string) Option {
	return func(t *Tracker) {
		if locale != "" {
			t.locale = locale
		}
	}
}

func New(provider storage.Provider, opts ...Option) *Tracker {
	t := &Tracker{
		clock:  time.Now,
		loc:    time.Local,
		locale: constants.DefaultLocale,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.settings = settings.NewStore(provider, settings.WithLocale(t.locale))
	t.logs = daylog.NewStore(provider)
	return t
}

// Now returns the current time in the tracker's zone.
func (t *Tracker) Now() time.Time {
	return t.clock().In(t.loc)
}

// Today returns the current calendar date key.
func (t *Tracker) Today() string {
	return utils.Today(t.Now())
}

func (t *Tracker) Locale() string { return t.locale }

// LoadAll reads both records and makes sure today's log exists.
func (t *Tracker) LoadAll() (TodayView, error) {
	t.settings.Load()
	t.logs.Load()
	return t.TodayView()
}

// Settings returns a copy of the current settings.
func (t *Tracker) Settings() models.Settings {
	return t.settings.Current()
}

// MarkTaken records the dose for today at the current time and returns that time.
func (t *Tracker) MarkTaken(dropID string, slot models.TimeSlot) (time.Time, error) {
	now := t.Now()
	date := utils.Today(now)
	if _, err := t.logs.GetOrCreate(date, t.settings.Current()); err != nil {
		logger.Warn("Could not persist new day log before marking", "date", date, "error", err)
	}
	if err := t.logs.MarkTaken(date, dropID, slot, now); err != nil {
		return now, err
	}
	logger.Info("Dose taken", "date", date, "drop", dropID, "slot", slot)
	return now, nil
}

// Undo clears today's dose.
func (t *Tracker) Undo(dropID string, slot models.TimeSlot) error {
	date := t.Today()
	if err := t.logs.Undo(date, dropID, slot); err != nil {
		return err
	}
	logger.Info("Dose undone", "date", date, "drop", dropID, "slot", slot)
	return nil
}

// SaveSettingsDraft applies form edits and rebuilds today's log from the result.
func (t *Tracker) SaveSettingsDraft(draft models.SettingsDraft) (models.Settings, error) {
	s, err := t.settings.UpdateFromForm(draft)
	if err != nil && !errors.IsPersistence(err) {
		return s, err
	}
	if regenErr := t.regenerateToday(s); err == nil {
		err = regenErr
	}
	return s, err
}

// ResetSettings restores the default regimen and rebuilds today's log from it.
func (t *Tracker) ResetSettings() (models.Settings, error) {
	s, err := t.settings.ResetToDefaults()
	if regenErr := t.regenerateToday(s); err == nil {
		err = regenErr
	}
	return s, err
}

// AddEyeDrop adds a drop and schedules it for the rest of today.
func (t *Tracker) AddEyeDrop(name, color string, slots []models.TimeSlot) (models.EyeDrop, error) {
	drop, err := t.settings.AddEyeDrop(name, color, slots)
	if err != nil && !errors.IsPersistence(err) {
		return drop, err
	}
	if regenErr := t.regenerateToday(t.settings.Current()); err == nil {
		err = regenErr
	}
	return drop, err
}

// RemoveEyeDrop removes a drop. Today's untaken doses for it go away; history keeps them.
func (t *Tracker) RemoveEyeDrop(id string) error {
	err := t.settings.RemoveEyeDrop(id)
	if err != nil && !errors.IsPersistence(err) {
		return err
	}
	if regenErr := t.regenerateToday(t.settings.Current()); err == nil {
		err = regenErr
	}
	return err
}

// ResolveDrop finds a drop by id or name.
func (t *Tracker) ResolveDrop(ref string) (models.EyeDrop, error) {
	return t.settings.Resolve(ref)
}

func (t *Tracker) regenerateToday(s models.Settings) error {
	_, err := t.logs.Regenerate(t.Today(), s)
	return err
}

// Logs returns every stored day log in stored order.
func (t *Tracker) Logs() []models.DayLog {
	return t.logs.All()
}

// Replace swaps in imported settings and logs.
func (t *Tracker) Replace(s models.Settings, logs []models.DayLog) error {
	if err := t.settings.Save(s); err != nil {
		return err
	}
	return t.logs.ReplaceAll(logs)
}
