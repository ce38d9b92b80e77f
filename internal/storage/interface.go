package storage

import "errors"

var (
	// ErrRecordNotFound is returned by GetRecord when the key has never been written.
	ErrRecordNotFound = errors.New("record not found")
	// ErrNotInitialized is returned by Load when the backing store does not exist yet.
	ErrNotInitialized = errors.New("storage not initialized, run 'droptime init' first")
)

// Provider is a small key-value record store. Values are opaque JSON documents.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Records
	GetRecord(key string) ([]byte, error)
	PutRecord(key string, value []byte) error
	DeleteRecord(key string) error
	ListKeys() ([]string, error)

	// Utils
	GetConfigPath() string
}

// Versioned is implemented by SQL-backed providers that track a schema version.
type Versioned interface {
	SchemaVersion() (current int, latest int, err error)
}
