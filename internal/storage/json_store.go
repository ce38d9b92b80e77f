package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	json "github.com/goccy/go-json"
)

type fileRecord struct {
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type fileDocument struct {
	Version int                   `json:"version"`
	Records map[string]fileRecord `json:"records"`
}

// JSONStore keeps all records in a single JSON file, rewritten atomically on every put.
type JSONStore struct {
	path string
	doc  *fileDocument
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}
	s.doc = &fileDocument{Version: 1, Records: map[string]fileRecord{}}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &fileDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Records == nil {
		doc.Records = map[string]fileRecord{}
	}
	s.doc = doc
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes to a temp file, syncs it and renames it over the target.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync storage: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

func (s *JSONStore) GetRecord(key string) ([]byte, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	rec, ok := s.doc.Records[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return append([]byte(nil), rec.Value...), nil
}

func (s *JSONStore) PutRecord(key string, value []byte) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	if !json.Valid(value) {
		return fmt.Errorf("record %q is not valid JSON", key)
	}

	prev, existed := s.doc.Records[key]
	s.doc.Records[key] = fileRecord{Value: append(json.RawMessage(nil), value...), UpdatedAt: time.Now().UTC()}
	if err := s.save(); err != nil {
		if existed {
			s.doc.Records[key] = prev
		} else {
			delete(s.doc.Records, key)
		}
		return err
	}
	return nil
}

func (s *JSONStore) DeleteRecord(key string) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	prev, ok := s.doc.Records[key]
	if !ok {
		return nil
	}
	delete(s.doc.Records, key)
	if err := s.save(); err != nil {
		s.doc.Records[key] = prev
		return err
	}
	return nil
}

func (s *JSONStore) ListKeys() ([]string, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	keys := make([]string, 0, len(s.doc.Records))
	for k := range s.doc.Records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
