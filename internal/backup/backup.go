package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/logger"
)

const stampFormat = "20060102-150405"

// Info describes one backup file
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager snapshots a file-backed store into a sibling backups directory. SQLite
// databases are copied with VACUUM INTO; other files are copied byte for byte.
type Manager struct {
	dbPath    string
	backupDir string
	suffix    string
	keep      int
	now       func() time.Time
}

func NewManager(dbPath string) *Manager {
	suffix := filepath.Ext(dbPath)
	if suffix == "" {
		suffix = constants.BackupFileSuffix
	}
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		suffix:    suffix,
		keep:      constants.MaxBackups,
		now:       time.Now,
	}
}

func (m *Manager) Dir() string { return m.backupDir }

func (m *Manager) isSQLite() bool {
	return m.suffix != ".json"
}

// Create snapshots the store and prunes the oldest backups beyond the retention limit.
func (m *Manager) Create() (string, error) {
	path, err := m.create()
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return path, nil
}

func (m *Manager) create() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}

	path, err := m.nextPath()
	if err != nil {
		return "", err
	}
	if m.isSQLite() {
		err = vacuumInto(m.dbPath, path)
	} else {
		err = copyFile(m.dbPath, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}
	logger.Info("Backup created", "path", path)
	return path, nil
}

func (m *Manager) nextPath() (string, error) {
	base := constants.BackupFilePrefix + m.now().Format(stampFormat)
	path := filepath.Join(m.backupDir, base+m.suffix)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s-%d%s", base, n, m.suffix))
	}
}

func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := verify(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dst); err != nil {
		db.Close()
		return copyFile(src, dst)
	}
	return nil
}

// parseName extracts the timestamp and counter from a backup file name.
func (m *Manager) parseName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, m.suffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), m.suffix)
	counter := 0
	if len(stamp) > len(stampFormat) && stamp[len(stampFormat)] == '-' {
		n, err := strconv.Atoi(stamp[len(stampFormat)+1:])
		if err != nil {
			return time.Time{}, 0, false
		}
		counter = n
		stamp = stamp[:len(stampFormat)]
	}
	ts, err := time.ParseInLocation(stampFormat, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return ts, counter, true
}

// List returns all backups, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type entry struct {
		Info
		counter int
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ts, counter, ok := m.parseName(e.Name())
		if !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, entry{Info{Path: filepath.Join(m.backupDir, e.Name()), Timestamp: ts, Size: fi.Size()}, counter})
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].Timestamp.Equal(found[j].Timestamp) {
			return found[i].Timestamp.After(found[j].Timestamp)
		}
		return found[i].counter > found[j].counter
	})
	out := make([]Info, len(found))
	for i, f := range found {
		out[i] = f.Info
	}
	return out, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the store file with backupPath. The current file is backed up first
// and the path of that safety copy is returned.
func (m *Manager) Restore(backupPath string) (string, error) {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if m.isSQLite() {
		if err := verifyFile(backupPath); err != nil {
			return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
		}
	}

	var safety string
	if _, err := os.Stat(m.dbPath); err == nil {
		p, err := m.create()
		if err != nil {
			return "", fmt.Errorf("failed to backup current database before restore: %w", err)
		}
		safety = p
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tmp); err != nil {
		os.Remove(tmp)
		return safety, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		os.Remove(tmp)
		return safety, fmt.Errorf("failed to restore database: %w", err)
	}
	logger.Info("Backup restored", "from", backupPath)
	return safety, nil
}

func verify(db *sql.DB) error {
	var n int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

func verifyFile(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return verify(db)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := out.ReadFrom(in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
