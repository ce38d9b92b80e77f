package backup

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/validation"
)

const snapshotVersion = 1

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Snapshot is the portable export document holding both persisted records.
type Snapshot struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	Settings   models.Settings `json:"settings"`
	Logs       []models.DayLog `json:"logs"`
}

// Validate reports integrity errors that would make the snapshot unsafe to import.
// Dangling drop references are tolerated.
func (s Snapshot) Validate() error {
	if s.Version < 1 || s.Version > snapshotVersion {
		return fmt.Errorf("unsupported export version %d", s.Version)
	}
	v := validation.New()
	result := v.ValidateSettings(s.Settings)
	result.Merge(v.ValidateLogs(s.Logs, s.Settings))
	if result.HasErrors() {
		return fmt.Errorf("export failed validation:\n%s", result.FormatReport())
	}
	return nil
}

func compressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}

// WriteSnapshot writes snap to path, zstd-compressed when the name ends in .zst.
func WriteSnapshot(path string, snap Snapshot) error {
	if snap.Version == 0 {
		snap.Version = snapshotVersion
	}
	if snap.Logs == nil {
		snap.Logs = []models.DayLog{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	if compressed(path) {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		data = enc.EncodeAll(data, make([]byte, 0, len(data)/2))
		enc.Close()
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ReadSnapshot reads and validates an export. Compressed files are detected by
// their magic bytes, not by name.
func ReadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("failed to read export: %w", err)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return snap, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		data, err = dec.DecodeAll(data, nil)
		dec.Close()
		if err != nil {
			return snap, fmt.Errorf("failed to decompress export: %w", err)
		}
	}

	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to decode export: %w", err)
	}
	if snap.Logs == nil {
		snap.Logs = []models.DayLog{}
	}
	if snap.Settings.SlotTimes == nil && snap.Settings.EyeDrops == nil {
		return snap, fmt.Errorf("export has no settings")
	}
	models.ApplyDefaults(&snap.Settings)
	if err := snap.Validate(); err != nil {
		return snap, err
	}
	return snap, nil
}
