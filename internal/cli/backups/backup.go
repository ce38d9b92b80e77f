package backups

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/droptime/internal/cli"
	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/errors"
	"github.com/julianstephens/droptime/internal/logger"
	"github.com/julianstephens/droptime/internal/tracker"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backupPath, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		fmt.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	fmt.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		fmt.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), float64(b.Size)/1024.0)
	}
	fmt.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}

	backupPath := c.BackupFile
	if !filepath.IsAbs(backupPath) {
		if candidate := filepath.Join(mgr.Dir(), c.BackupFile); fileExists(candidate) {
			backupPath = candidate
		}
	}
	if !fileExists(backupPath) {
		return fmt.Errorf("backup file not found: %s", backupPath)
	}

	if !c.Yes {
		fmt.Println("⚠️  WARNING: This will replace your current database with the backup.")
		fmt.Println("A backup of your current database will be created before restoring.")
		fmt.Printf("\nRestore from: %s\n", filepath.Base(backupPath))
		if !cli.Confirm(os.Stdin, os.Stdout, "Continue?") {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	// Close the current store connection before restoring
	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
	}

	safety, err := mgr.Restore(backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to reopen restored database: %w", err)
	}
	reloadAfterRestore(ctx.Tracker, os.Stderr)

	fmt.Println("✓ Database restored successfully!")
	if safety != "" {
		fmt.Printf("Previous database saved as: %s\n", filepath.Base(safety))
	}
	fmt.Println("Restart any running droptime processes to use the restored database.")
	return nil
}

// reloadAfterRestore re-reads the restored data. The restore has already succeeded, so a
// failure to write today's log is reported as a warning.
func reloadAfterRestore(t *tracker.Tracker, w io.Writer) {
	if _, err := t.LoadAll(); err != nil {
		logger.Warn("Today's log could not be saved after restore", "error", err)
		fmt.Fprintf(w, "Warning: today's log could not be saved: %s\n", errors.Format(err))
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
