// Package settings owns the persisted eye-drop regimen.
package settings

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/errors"
	"github.com/julianstephens/droptime/internal/logger"
	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/storage"
	"github.com/julianstephens/droptime/internal/utils"
	"github.com/julianstephens/droptime/internal/validation"
)

// Store holds the current settings in memory and writes them through to the provider.
type Store struct {
	provider storage.Provider
	locale   string
	current  models.Settings
	// readOnly is set when an unreadable record could not be preserved.
	readOnly error
}

// Option configures a Store.
type Option func(*Store)

// WithLocale selects the locale whose default drop names are used.
func WithLocale(locale string) Option {
	return func(s *Store) {
		if locale != "" {
			s.locale = locale
		}
	}
}

func NewStore(provider storage.Provider, opts ...Option) *Store {
	s := &Store{provider: provider, locale: constants.DefaultLocale}
	for _, opt := range opts {
		opt(s)
	}
	s.current = s.defaults()
	return s
}

func (s *Store) defaults() models.Settings {
	return models.DefaultSettingsFor(s.locale)
}

// Load reads the settings record. Each field is decoded on its own: an unreadable field
// falls back to its default and the rest is kept. A record that needed repair is first
// copied to a side key.
func (s *Store) Load() models.Settings {
	s.readOnly = nil
	data, err := s.provider.GetRecord(constants.RecordSettings)
	if err != nil {
		if !stderrors.Is(err, storage.ErrRecordNotFound) {
			logger.Warn("Failed to read settings, using defaults", "error", err)
			s.readOnly = err
		}
		s.current = s.defaults()
		return s.current.Clone()
	}

	loaded, problems, err := Decode(data)
	if err != nil {
		problems = append(problems, fmt.Sprintf("settings record is not an object: %v", err))
		loaded = models.Settings{}
	}
	for _, p := range problems {
		logger.Warn("Repaired stored settings", "problem", p)
	}
	if repaired := models.ApplyDefaultsFor(&loaded, s.locale); len(repaired) > 0 {
		logger.Warn("Filled missing settings from defaults", "fields", strings.Join(repaired, ","))
	}
	if len(problems) > 0 {
		s.preserve(data)
	}
	s.current = loaded
	return s.current.Clone()
}

func (s *Store) preserve(data []byte) {
	side, err := storage.Quarantine(s.provider, constants.RecordSettings, data, time.Now())
	if err != nil {
		logger.Error("Could not preserve the unreadable settings, saving is disabled", "error", err)
		s.readOnly = err
		return
	}
	logger.Warn("Original settings preserved", "key", side)
}

// Decode parses a stored settings document as written, without filling defaults. The
// slot times and the eye drops are decoded independently; entries that cannot be read are
// skipped and described in problems. An error is returned only when data is not a JSON
// object.
func Decode(data []byte) (models.Settings, []string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Settings{}, nil, err
	}

	var (
		out      models.Settings
		problems []string
	)
	times, key := doc["slotTimes"], "slotTimes"
	if isNull(times) {
		// older data used "slots"
		times, key = doc["slots"], "slots"
	}
	if !isNull(times) {
		out.SlotTimes, problems = decodeSlotTimes(key, times, problems)
	}
	if drops := doc["eyeDrops"]; !isNull(drops) {
		out.EyeDrops, problems = decodeEyeDrops(drops, problems)
	}
	return out, problems, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func decodeSlotTimes(key string, raw json.RawMessage, problems []string) (map[models.TimeSlot]string, []string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, append(problems, fmt.Sprintf("%s ignored: %v", key, err))
	}
	out := make(map[models.TimeSlot]string, len(fields))
	for name, v := range fields {
		slot := models.TimeSlot(name)
		if !slot.IsValid() {
			problems = append(problems, fmt.Sprintf("%s.%s ignored: unknown slot", key, name))
			continue
		}
		var t string
		if err := json.Unmarshal(v, &t); err != nil || !utils.ValidateTimeFormat(t) {
			problems = append(problems, fmt.Sprintf("%s.%s ignored: %s is not a time", key, name, v))
			continue
		}
		out[slot] = t
	}
	return out, problems
}

func decodeEyeDrops(raw json.RawMessage, problems []string) ([]models.EyeDrop, []string) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, append(problems, fmt.Sprintf("eyeDrops ignored: %v", err))
	}
	out := make([]models.EyeDrop, 0, len(items))
	for i, item := range items {
		var d models.EyeDrop
		if err := json.Unmarshal(item, &d); err != nil {
			problems = append(problems, fmt.Sprintf("eyeDrops #%d dropped: %v", i, err))
			continue
		}
		if d.ID == "" {
			problems = append(problems, fmt.Sprintf("eyeDrops #%d dropped: missing id", i))
			continue
		}
		out = append(out, d)
	}
	return out, problems
}

// Current returns a copy of the in-memory settings.
func (s *Store) Current() models.Settings {
	return s.current.Clone()
}

// Save replaces the in-memory settings and persists them. The in-memory value is kept
// even when the write fails.
func (s *Store) Save(settings models.Settings) error {
	s.current = settings.Clone()
	return s.persist()
}

func (s *Store) persist() error {
	if s.readOnly != nil {
		return errors.NewPersistence("save", constants.RecordSettings, fmt.Errorf("stored settings were not loaded safely: %w", s.readOnly))
	}
	if err := storage.PutJSON(s.provider, constants.RecordSettings, s.current); err != nil {
		logger.Warn("Failed to persist settings", "error", err)
		return errors.NewPersistence("save", constants.RecordSettings, err)
	}
	return nil
}

// ResetToDefaults replaces the settings with a fresh copy of the defaults.
func (s *Store) ResetToDefaults() (models.Settings, error) {
	s.current = s.defaults()
	return s.current.Clone(), s.persist()
}

// UpdateFromForm validates and applies a draft. A rejected draft leaves settings untouched.
func (s *Store) UpdateFromForm(draft models.SettingsDraft) (models.Settings, error) {
	if err := validation.Draft(draft); err != nil {
		return s.Current(), err
	}
	s.current = draft.Apply(s.current)
	return s.current.Clone(), s.persist()
}

// AddEyeDrop appends a new drop with a generated id and returns it.
func (s *Store) AddEyeDrop(name, color string, slots []models.TimeSlot) (models.EyeDrop, error) {
	for _, slot := range slots {
		if !slot.IsValid() {
			return models.EyeDrop{}, fmt.Errorf("%w: unknown slot %q", errors.ErrValidation, slot)
		}
	}
	if err := validation.EyeDropFields(name, color); err != nil {
		return models.EyeDrop{}, err
	}
	if color == "" {
		color = constants.DefaultDropColor
	}

	drop := models.EyeDrop{
		ID:    s.newID(),
		Name:  strings.TrimSpace(name),
		Slots: models.SortSlots(slots),
		Color: color,
	}
	s.current.EyeDrops = append(s.current.EyeDrops, drop)
	return drop.Clone(), s.persist()
}

func (s *Store) newID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:constants.DropIDLength]
		if s.current.FindEyeDrop(id) < 0 {
			return id
		}
	}
}

// RemoveEyeDrop deletes a drop. Past day logs keep their doses for it.
func (s *Store) RemoveEyeDrop(id string) error {
	i := s.current.FindEyeDrop(id)
	if i < 0 {
		return fmt.Errorf("eye drop %q: %w", id, errors.ErrNotFound)
	}
	s.current.EyeDrops = append(s.current.EyeDrops[:i:i], s.current.EyeDrops[i+1:]...)
	return s.persist()
}

// Resolve finds a drop by id, falling back to a case-insensitive name match.
func (s *Store) Resolve(ref string) (models.EyeDrop, error) {
	if d, ok := s.current.EyeDropByID(ref); ok {
		return d.Clone(), nil
	}
	var match *models.EyeDrop
	for i, d := range s.current.EyeDrops {
		if strings.EqualFold(d.Name, ref) {
			if match != nil {
				return models.EyeDrop{}, fmt.Errorf("%w: name %q matches more than one eye drop, use the id", errors.ErrValidation, ref)
			}
			match = &s.current.EyeDrops[i]
		}
	}
	if match == nil {
		return models.EyeDrop{}, fmt.Errorf("eye drop %q: %w", ref, errors.ErrNotFound)
	}
	return match.Clone(), nil
}
