package backups

import (
	"fmt"
	"os"

	"github.com/julianstephens/droptime/internal/backup"
	"github.com/julianstephens/droptime/internal/cli"
)

type ExportCmd struct {
	File string `arg:"" help:"Output file. A .zst suffix compresses it with zstd."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	snap := backup.Snapshot{
		ExportedAt: ctx.Tracker.Now(),
		Settings:   ctx.Tracker.Settings(),
		Logs:       ctx.Tracker.Logs(),
	}
	if err := backup.WriteSnapshot(c.File, snap); err != nil {
		return err
	}
	fmt.Printf("✓ Exported settings and %d day log(s) to %s\n", len(snap.Logs), c.File)
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"File written by 'droptime export'."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	snap, err := backup.ReadSnapshot(c.File)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Printf("Import %d eye drop(s) and %d day log(s) exported %s?\n",
			len(snap.Settings.EyeDrops), len(snap.Logs), snap.ExportedAt.Format("2006-01-02 15:04"))
		if !cli.Confirm(os.Stdin, os.Stdout, "This replaces all current settings and history. Continue?") {
			fmt.Println("Import cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Tracker.Replace(snap.Settings, snap.Logs); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Println("✓ Import complete")
	return nil
}
