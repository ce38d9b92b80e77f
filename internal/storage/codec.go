package storage

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// GetJSON reads key and decodes it into v. Missing keys return ErrRecordNotFound unchanged.
func GetJSON(p Provider, key string, v any) error {
	data, err := p.GetRecord(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode record %q: %w", key, err)
	}
	return nil
}

// PutJSON encodes v and writes it under key.
func PutJSON(p Provider, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode record %q: %w", key, err)
	}
	return p.PutRecord(key, data)
}

// CopyRecords copies every record from src to dst and returns the copied keys.
func CopyRecords(src, dst Provider) ([]string, error) {
	keys, err := src.ListKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to list source records: %w", err)
	}
	for _, key := range keys {
		value, err := src.GetRecord(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", key, err)
		}
		if err := dst.PutRecord(key, value); err != nil {
			return nil, fmt.Errorf("failed to write %q: %w", key, err)
		}
	}
	return keys, nil
}

// quarantined wraps a record that could not be decoded. Raw is kept as a string so the
// copy is valid JSON even when the original bytes are not.
type quarantined struct {
	Key     string    `json:"key"`
	SavedAt time.Time `json:"savedAt"`
	Raw     string    `json:"raw"`
}

// Quarantine copies the raw bytes of key to a side record before a repaired version is
// written back, and returns the side key. Bytes already preserved under an earlier side
// key are not copied again.
func Quarantine(p Provider, key string, data []byte, now time.Time) (string, error) {
	prefix := key + ".unreadable."
	keys, err := p.ListKeys()
	if err != nil {
		return "", fmt.Errorf("failed to preserve unreadable record %q: %w", key, err)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		var q quarantined
		if err := GetJSON(p, k, &q); err == nil && q.Raw == string(data) {
			return k, nil
		}
	}

	side := prefix + now.UTC().Format("20060102T150405.000")
	if err := PutJSON(p, side, quarantined{Key: key, SavedAt: now.UTC(), Raw: string(data)}); err != nil {
		return side, fmt.Errorf("failed to preserve unreadable record %q: %w", key, err)
	}
	return side, nil
}
