package system

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/droptime/internal/cli"
	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/daylog"
	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/settings"
	"github.com/julianstephens/droptime/internal/storage"
	"github.com/julianstephens/droptime/internal/storage/sqlite"
	"github.com/julianstephens/droptime/internal/validation"
)

type DoctorCmd struct{}

type checkStatus int

const (
	checkOK checkStatus = iota
	checkWarn
	checkFail
	checkSkip
)

func report(name string, status checkStatus, detail string) {
	switch status {
	case checkOK:
		fmt.Printf("✓ %s: OK\n", name)
	case checkWarn:
		fmt.Printf("⚠ %s: WARNING\n", name)
	case checkFail:
		fmt.Printf("❌ %s: FAIL\n", name)
	case checkSkip:
		fmt.Printf("⊘ %s: SKIPPED (%s)\n", name, detail)
		return
	}
	if detail != "" {
		fmt.Printf("   %s\n", detail)
	}
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	fail := func(name string, err error) {
		report(name, checkFail, "Error: "+err.Error())
		hasError = true
	}

	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fail("Database reachable", err)
		dbReachable = false
	} else {
		report("Database reachable", checkOK, "")
	}

	if !dbReachable {
		report("Schema version", checkSkip, "database not reachable")
		report("Settings", checkSkip, "database not reachable")
		report("Day logs", checkSkip, "database not reachable")
	} else {
		if err := checkSchemaVersion(ctx); err != nil {
			fail("Schema version", err)
		} else {
			report("Schema version", checkOK, "")
		}

		s, repaired, err := checkSettings(ctx)
		switch {
		case err != nil:
			fail("Settings", err)
		case len(repaired) > 0:
			report("Settings", checkWarn, fmt.Sprintf("repaired on load: %s", strings.Join(repaired, "; ")))
		default:
			report("Settings", checkOK, "")
		}

		result, problems, err := checkLogs(ctx, s)
		switch {
		case err != nil:
			fail("Day logs", err)
		case result.HasErrors():
			fail("Day logs", fmt.Errorf("%s", result.FormatReport()))
		case len(problems) > 0:
			report("Day logs", checkWarn, fmt.Sprintf("repaired on load: %s", strings.Join(problems, "; ")))
		case len(result.Conflicts) > 0:
			report("Day logs", checkWarn, result.FormatReport())
		default:
			report("Day logs", checkOK, "")
		}

		if keys, err := preservedRecords(ctx); err != nil {
			fail("Preserved records", err)
		} else if len(keys) > 0 {
			report("Preserved records", checkWarn, fmt.Sprintf("unreadable data was copied aside: %s", strings.Join(keys, ", ")))
		} else {
			report("Preserved records", checkOK, "")
		}
	}

	if err := checkBackupsPresent(ctx); err != nil {
		report("Backups present", checkWarn, err.Error())
	} else {
		report("Backups present", checkOK, "")
	}

	if err := checkClockTimezone(ctx); err != nil {
		fail("Clock/timezone", err)
	} else {
		report("Clock/timezone", checkOK, "")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var one int
		if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	_, err := ctx.Store.ListKeys()
	return err
}

func checkSchemaVersion(ctx *cli.Context) error {
	versioned, ok := ctx.Store.(storage.Versioned)
	if !ok {
		return nil
	}
	current, latest, err := versioned.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("database schema version (%d) is behind latest (%d); run 'droptime migrate'", current, latest)
	}
	return nil
}

// checkSettings validates the stored settings as the app will see them after repair, and
// returns them for the log check.
func checkSettings(ctx *cli.Context) (models.Settings, []string, error) {
	defaults := models.DefaultSettingsFor(ctx.Config.Locale)
	data, err := ctx.Store.GetRecord(constants.RecordSettings)
	if stderrors.Is(err, storage.ErrRecordNotFound) {
		return defaults, nil, nil
	}
	if err != nil {
		return defaults, nil, fmt.Errorf("failed to read settings: %w", err)
	}
	s, problems, err := settings.Decode(data)
	if err != nil {
		return defaults, nil, fmt.Errorf("settings record is malformed: %w", err)
	}
	repaired := append(problems, models.ApplyDefaultsFor(&s, ctx.Config.Locale)...)

	result := validation.New().ValidateSettings(s)
	if result.HasErrors() {
		return s, repaired, fmt.Errorf("%s", result.FormatReport())
	}
	return s, repaired, nil
}

func checkLogs(ctx *cli.Context, s models.Settings) (validation.ValidationResult, []string, error) {
	data, err := ctx.Store.GetRecord(constants.RecordLogs)
	if stderrors.Is(err, storage.ErrRecordNotFound) {
		return validation.ValidationResult{}, nil, nil
	}
	if err != nil {
		return validation.ValidationResult{}, nil, fmt.Errorf("failed to read logs: %w", err)
	}
	logs, problems, err := daylog.DecodeLogs(data)
	if err != nil {
		return validation.ValidationResult{}, nil, err
	}
	return validation.New().ValidateLogs(logs, s), problems, nil
}

func preservedRecords(ctx *cli.Context) ([]string, error) {
	keys, err := ctx.Store.ListKeys()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if strings.Contains(k, ".unreadable.") {
			out = append(out, k)
		}
	}
	return out, nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s. Run 'droptime backup create'", mgr.Dir())
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("most recent backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system clock appears to be incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := ctx.Config.Location(); err != nil {
		return fmt.Errorf("configured timezone %q cannot be loaded: %w", ctx.Config.Timezone, err)
	}
	return nil
}
