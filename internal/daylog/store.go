// Package daylog owns the per-day dose records.
package daylog

import (
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/errors"
	"github.com/julianstephens/droptime/internal/logger"
	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/storage"
)

// Store keeps every day log in memory, in creation order, and rewrites the whole
// collection after each mutation.
type Store struct {
	provider storage.Provider
	logs     []models.DayLog
	// readOnly is set when the stored record could neither be read nor preserved; writes
	// are refused so the original bytes are never overwritten.
	readOnly error
}

func NewStore(provider storage.Provider) *Store {
	return &Store{provider: provider}
}

// Load reads the logs record. Entries that cannot be decoded are dropped or cleared one by
// one; a record that needed any repair is first copied to a side key.
func (s *Store) Load() []models.DayLog {
	s.logs = nil
	s.readOnly = nil

	data, err := s.provider.GetRecord(constants.RecordLogs)
	if stderrors.Is(err, storage.ErrRecordNotFound) {
		return s.All()
	}
	if err != nil {
		logger.Warn("Failed to read day logs, saving is disabled", "error", err)
		s.readOnly = err
		return s.All()
	}

	logs, problems, err := DecodeLogs(data)
	if err != nil {
		problems = append(problems, err.Error())
	}
	s.logs = logs
	if len(problems) == 0 {
		return s.All()
	}
	for _, p := range problems {
		logger.Warn("Repaired stored day log", "problem", p)
	}
	side, err := storage.Quarantine(s.provider, constants.RecordLogs, data, time.Now())
	if err != nil {
		logger.Error("Could not preserve the unreadable day logs, saving is disabled", "error", err)
		s.readOnly = err
		return s.All()
	}
	logger.Warn("Original day logs preserved", "key", side)
	return s.All()
}

func (s *Store) persist() error {
	if s.readOnly != nil {
		return errors.NewPersistence("save", constants.RecordLogs, fmt.Errorf("stored logs were not loaded safely: %w", s.readOnly))
	}
	logs := s.logs
	if logs == nil {
		logs = []models.DayLog{}
	}
	if err := storage.PutJSON(s.provider, constants.RecordLogs, logs); err != nil {
		logger.Warn("Failed to persist day logs", "error", err)
		return errors.NewPersistence("save", constants.RecordLogs, err)
	}
	return nil
}

func (s *Store) index(date string) int {
	for i, l := range s.logs {
		if l.Date == date {
			return i
		}
	}
	return -1
}

// Get returns the log for date.
func (s *Store) Get(date string) (models.DayLog, bool) {
	if i := s.index(date); i >= 0 {
		return s.logs[i].Clone(), true
	}
	return models.DayLog{}, false
}

// GetOrCreate returns the log for date, creating it from settings on first access.
// On a failed write the new log is still kept in memory and returned with the error.
func (s *Store) GetOrCreate(date string, settings models.Settings) (models.DayLog, error) {
	if i := s.index(date); i >= 0 {
		return s.logs[i].Clone(), nil
	}
	log := models.NewDayLog(date, settings)
	s.logs = append(s.logs, log)
	logger.Debug("Created day log", "date", date, "doses", len(log.Doses))
	return log.Clone(), s.persist()
}

func (s *Store) setTaken(date, dropID string, slot models.TimeSlot, at *time.Time) error {
	i := s.index(date)
	if i < 0 {
		return fmt.Errorf("day log %s: %w", date, errors.ErrNotFound)
	}
	j := s.logs[i].FindDose(dropID, slot)
	if j < 0 {
		return fmt.Errorf("dose %s/%s on %s: %w", dropID, slot, date, errors.ErrNotFound)
	}
	s.logs[i].Doses[j].TakenAt = at
	return s.persist()
}

// MarkTaken records ts as the taken time of the dose.
func (s *Store) MarkTaken(date, dropID string, slot models.TimeSlot, ts time.Time) error {
	return s.setTaken(date, dropID, slot, &ts)
}

// Undo clears the taken time of the dose.
func (s *Store) Undo(date, dropID string, slot models.TimeSlot) error {
	return s.setTaken(date, dropID, slot, nil)
}

// Regenerate re-derives the log for date from settings, keeping taken times of surviving
// pairings. The log is created if it does not exist.
func (s *Store) Regenerate(date string, settings models.Settings) (models.DayLog, error) {
	i := s.index(date)
	if i < 0 {
		return s.GetOrCreate(date, settings)
	}
	s.logs[i] = s.logs[i].Regenerate(settings)
	return s.logs[i].Clone(), s.persist()
}

// All returns copies of every log in stored order.
func (s *Store) All() []models.DayLog {
	out := make([]models.DayLog, len(s.logs))
	for i, l := range s.logs {
		out[i] = l.Clone()
	}
	return out
}

// History returns every log, newest date first.
func (s *Store) History() []models.DayLog {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// ReplaceAll swaps in a full collection, used by import.
func (s *Store) ReplaceAll(logs []models.DayLog) error {
	s.logs = make([]models.DayLog, len(logs))
	for i, l := range logs {
		s.logs[i] = l.Clone()
	}
	return s.persist()
}
