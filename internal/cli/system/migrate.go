package system

import (
	"fmt"

	"github.com/julianstephens/droptime/internal/cli"
	"github.com/julianstephens/droptime/internal/storage"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	versioned, ok := ctx.Store.(storage.Versioned)
	if !ok {
		fmt.Println("JSON storage has no schema. Nothing to migrate.")
		return nil
	}

	before, _, err := versioned.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	after, latest, err := versioned.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if after == before {
		fmt.Printf("No migrations to apply. Database is up to date (version %d).\n", latest)
	} else {
		fmt.Printf("Successfully migrated schema from version %d to %d.\n", before, after)
	}
	return nil
}
