package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/droptime/internal/backup"
	"github.com/julianstephens/droptime/internal/config"
	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/keyring"
	"github.com/julianstephens/droptime/internal/logger"
	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/notifier"
	"github.com/julianstephens/droptime/internal/storage"
	"github.com/julianstephens/droptime/internal/storage/postgres"
	"github.com/julianstephens/droptime/internal/storage/sqlite"
	"github.com/julianstephens/droptime/internal/tracker"
)

// ErrNoFileBackups is returned by backup commands when the store is not a local file.
var ErrNoFileBackups = errors.New("backups are only supported for file-based storage; use pg_dump for PostgreSQL")

type Context struct {
	Store    storage.Provider
	Tracker  *tracker.Tracker
	Config   *config.Config
	Notifier *notifier.Notifier
}

// NewContext wires the tracker and notifier for store according to cfg.
func NewContext(store storage.Provider, cfg *config.Config, opts ...tracker.Option) (*Context, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	base := []tracker.Option{tracker.WithLocation(loc), tracker.WithLocale(cfg.Locale)}
	return &Context{
		Store:    store,
		Tracker:  tracker.New(store, append(base, opts...)...),
		Config:   cfg,
		Notifier: notifier.New(cfg.Notifications),
	}, nil
}

// OpenStore picks the storage backend for a database setting: a PostgreSQL URL or
// DSN, the keyring placeholder, a .json file, or otherwise a SQLite file.
func OpenStore(database string) (storage.Provider, error) {
	switch {
	case database == constants.DatabaseKeyring:
		connStr, err := keyring.ConnectionString.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to read connection string from keyring: %w", err)
		}
		return postgres.New(connStr), nil
	case postgres.IsConnString(database) || strings.Contains(database, "host="):
		if err := postgres.ValidateConnString(database); err != nil {
			return nil, err
		}
		return postgres.New(database), nil
	}

	path := config.ExpandHome(database)
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}

// BackupManager returns the backup manager for file-based stores.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*postgres.Store); ok {
		return nil, ErrNoFileBackups
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		logger.Debug("Skipping automatic backup", "reason", err)
		return
	}
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveDose turns command arguments into a configured drop and a slot.
func (c *Context) ResolveDose(dropRef, slotName string) (models.EyeDrop, models.TimeSlot, error) {
	drop, err := c.Tracker.ResolveDrop(dropRef)
	if err != nil {
		return drop, "", err
	}
	slot, err := models.ParseTimeSlot(slotName)
	if err != nil {
		return drop, "", err
	}
	return drop, slot, nil
}

// Confirm prints prompt and reads a y/N answer from in.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// ParseSlots parses a comma-separated slot list. An empty string yields no slots.
func ParseSlots(s string) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		slot, err := models.ParseTimeSlot(part)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return models.SortSlots(slots), nil
}
