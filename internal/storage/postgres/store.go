package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/logger"
	"github.com/julianstephens/droptime/internal/migration"
	"github.com/julianstephens/droptime/internal/storage"
	"github.com/julianstephens/droptime/migrations"
)

// Store keeps records in the droptime schema of a PostgreSQL database.
type Store struct {
	connStr string
	db      *sql.DB
}

func New(connStr string) *Store {
	return &Store{connStr: withSearchPath(connStr, constants.AppName)}
}

func (s *Store) connect() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasParam(s.connStr, "sslmode") {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	if s.db == nil {
		if err := s.connect(); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.Apply(func(msg string) { logger.Info(msg, "store", "postgres") }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.connect(); err != nil {
		return err
	}

	var exists bool
	if err := s.db.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", constants.AppName,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if !exists {
		return storage.ErrNotInitialized
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	current, err := runner.CurrentVersion()
	if err != nil {
		return err
	}
	if current == 0 {
		return storage.ErrNotInitialized
	}
	return runner.ValidateVersion()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, sub, migration.Postgres), nil
}

// SchemaVersion reports the applied and the latest embedded schema versions.
func (s *Store) SchemaVersion() (int, int, error) {
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	current, err := runner.CurrentVersion()
	if err != nil {
		return 0, 0, err
	}
	latest, err := runner.LatestVersion()
	return current, latest, err
}

func (s *Store) GetRecord(key string) ([]byte, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM records WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (s *Store) PutRecord(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO records (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, string(value), time.Now().UTC(),
	)
	return err
}

func (s *Store) DeleteRecord(key string) error {
	_, err := s.db.Exec("DELETE FROM records WHERE key = $1", key)
	return err
}

func (s *Store) ListKeys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM records ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetConfigPath returns a non-sensitive identifier instead of the connection string.
func (s *Store) GetConfigPath() string {
	return "postgresql"
}
