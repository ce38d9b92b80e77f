package migration

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestCurrentVersion(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(nil), SQLite)

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	version, err = runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		want    []int
		wantErr string
	}{
		{
			name: "sorted by version",
			files: map[string]string{
				"002_second.sql": "SELECT 2;",
				"001_first.sql":  "SELECT 1;",
				"README.md":      "ignored",
			},
			want: []int{1, 2},
		},
		{
			name:    "duplicate version",
			files:   map[string]string{"001_a.sql": "", "1_b.sql": ""},
			wantErr: "duplicate migration version",
		},
		{
			name:    "missing name",
			files:   map[string]string{"001.sql": ""},
			wantErr: "invalid migration filename",
		},
		{
			name:    "zero version",
			files:   map[string]string{"000_init.sql": ""},
			wantErr: "must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), migrationFS(tt.files), SQLite)
			ms, err := runner.Migrations()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Migrations() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Migrations() error: %v", err)
			}
			if len(ms) != len(tt.want) {
				t.Fatalf("got %d migrations, want %d", len(ms), len(tt.want))
			}
			for i, v := range tt.want {
				if ms[i].Version != v {
					t.Errorf("migration %d version = %d, want %d", i, ms[i].Version, v)
				}
			}
		})
	}
}

func TestApply(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql":  "CREATE TABLE records (key TEXT PRIMARY KEY, value TEXT NOT NULL);",
		"002_index.sql": "CREATE INDEX idx_records_value ON records(value);",
	}), SQLite)

	var msgs []string
	n, err := runner.Apply(func(s string) { msgs = append(msgs, s) })
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if n != 2 {
		t.Errorf("applied %d migrations, want 2", n)
	}
	if len(msgs) == 0 {
		t.Error("expected progress messages")
	}

	if _, err := db.Exec("INSERT INTO records (key, value) VALUES ('k', 'v')"); err != nil {
		t.Errorf("records table not created: %v", err)
	}

	n, err = runner.Apply(nil)
	if err != nil || n != 0 {
		t.Errorf("second Apply = (%d, %v), want (0, nil)", n, err)
	}
	if v, _ := runner.CurrentVersion(); v != 2 {
		t.Errorf("version = %d, want 2", v)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql":   "CREATE TABLE a (id INTEGER);",
		"002_broken.sql": "CREATE TABLE b (id INTEGER); NOT VALID SQL;",
	}), SQLite)

	n, err := runner.Apply(nil)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if n != 1 {
		t.Errorf("applied %d migrations, want 1", n)
	}
	if v, _ := runner.CurrentVersion(); v != 1 {
		t.Errorf("version = %d, want 1", v)
	}
}

func TestValidateVersion(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{"001_init.sql": "SELECT 1;"}), SQLite)

	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion on fresh db: %v", err)
	}
	if err := runner.SetVersion(3); err != nil {
		t.Fatal(err)
	}
	if err := runner.ValidateVersion(); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("ValidateVersion() = %v, want ErrSchemaTooNew", err)
	}
	if _, err := runner.Apply(nil); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("Apply() = %v, want ErrSchemaTooNew", err)
	}
}
