package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/droptime/internal/cli"
	"github.com/julianstephens/droptime/internal/config"
	"github.com/julianstephens/droptime/internal/storage/sqlite"
	"github.com/julianstephens/droptime/internal/tracker"
)

var fixedNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func testConfig(dbPath string) *config.Config {
	return &config.Config{
		Database:     dbPath,
		Timezone:     "UTC",
		Locale:       "en",
		TimerMinutes: 5,
	}
}

func setupTestContext(t *testing.T, initialize bool) (*cli.Context, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if initialize {
		if err := store.Init(); err != nil {
			t.Fatalf("failed to initialize store: %v", err)
		}
	}
	t.Cleanup(func() { store.Close() })

	ctx, err := cli.NewContext(store, testConfig(dbPath), tracker.WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	return ctx, dbPath
}
