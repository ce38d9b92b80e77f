package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/droptime/internal/cli"
	"github.com/julianstephens/droptime/internal/storage"
	"github.com/julianstephens/droptime/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy settings and logs from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized droptime storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		keys, err := copyFrom(ctx, c.Source)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Printf("Copied %d record(s): %v\n", len(keys), keys)
	}

	// Pick up whatever is now stored, including copied records.
	ctx.Tracker.LoadAll()
	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*postgres.Store); ok {
		return errors.New("--force is not supported for PostgreSQL; drop the droptime schema manually")
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func copyFrom(ctx *cli.Context, source string) ([]string, error) {
	src, err := cli.OpenStore(source)
	if err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
		}
		return nil, err
	}
	if err := src.Load(); err != nil {
		return nil, fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	return storage.CopyRecords(src, ctx.Store)
}
