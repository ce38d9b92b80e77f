package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "droptime.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE records (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TEXT NOT NULL)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO records VALUES ('logs', '[]', '2024-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

func readLogs(t *testing.T, path string) string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var v string
	if err := db.QueryRow("SELECT value FROM records WHERE key = 'logs'").Scan(&v); err != nil {
		t.Fatalf("failed to read logs record: %v", err)
	}
	return v
}

func steppingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Hour)
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(filepath.Dir(dbPath), "backups") {
		t.Errorf("backup written to %s", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "droptime-") || !strings.HasSuffix(path, ".db") {
		t.Errorf("unexpected backup name %s", filepath.Base(path))
	}
	if got := readLogs(t, path); got != "[]" {
		t.Errorf("backup contents = %q", got)
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	mgr := NewManager(setupTestDB(t))
	fixed := time.Date(2024, 1, 1, 7, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		p, err := mgr.Create()
		if err != nil {
			t.Fatal(err)
		}
		if seen[p] {
			t.Fatalf("duplicate backup path %s", p)
		}
		seen[p] = true
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("List() = %d backups, want 3", len(backups))
	}
	if !strings.HasSuffix(backups[0].Path, "-2.db") {
		t.Errorf("newest backup = %s, want counter 2 first", backups[0].Path)
	}
}

func TestBackupRotation(t *testing.T) {
	mgr := NewManager(setupTestDB(t))
	mgr.now = steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))

	for i := 0; i < 17; i++ {
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}
	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 14 {
		t.Fatalf("kept %d backups, want 14", len(backups))
	}
	if want := time.Date(2024, 1, 1, 17, 0, 0, 0, time.Local); !backups[0].Timestamp.Equal(want) {
		t.Errorf("newest = %v, want %v", backups[0].Timestamp, want)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	mgr := NewManager(setupTestDB(t))
	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "droptime-garbage.db", "droptime-20240101-070000-x.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %+v, want none", backups)
	}
}

func TestListWithoutDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "droptime.db"))
	backups, err := mgr.List()
	if err != nil || len(backups) != 0 {
		t.Errorf("List() = %v, %v", backups, err)
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE records SET value = '[{"date":"2024-01-01"}]' WHERE key = 'logs'`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	safety, err := mgr.Restore(backupPath)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := readLogs(t, dbPath); got != "[]" {
		t.Errorf("restored logs = %q", got)
	}
	if safety == "" {
		t.Fatal("no pre-restore backup made")
	}
	if got := readLogs(t, safety); got != `[{"date":"2024-01-01"}]` {
		t.Errorf("pre-restore backup = %q", got)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file left behind")
	}
}

func TestRestoreRejectsCorruptBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	bad := filepath.Join(t.TempDir(), "droptime-20240101-070000.db")
	if err := os.WriteFile(bad, []byte("this is not sqlite"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(bad); err == nil {
		t.Fatal("expected error restoring corrupt backup")
	}
	if got := readLogs(t, dbPath); got != "[]" {
		t.Errorf("database changed by failed restore: %q", got)
	}
}

func TestBackupWithNoDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected error backing up a missing database")
	}
}

func TestJSONStoreBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "droptime.json")
	if err := os.WriteFile(path, []byte(`{"version":1}`), 0600); err != nil {
		t.Fatal(err)
	}
	mgr := NewManager(path)
	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !strings.HasSuffix(backupPath, ".json") {
		t.Errorf("backup path = %s", backupPath)
	}

	if err := os.WriteFile(path, []byte(`{"version":2}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(backupPath); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"version":1}` {
		t.Errorf("restored = %s", data)
	}
	backups, _ := mgr.List()
	if len(backups) != 2 {
		t.Errorf("backups = %d, want 2 (original plus pre-restore)", len(backups))
	}
}
