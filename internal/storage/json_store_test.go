package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "droptime.json")
	s := NewJSONStore(path)

	if err := s.Load(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Load before Init = %v, want ErrNotInitialized", err)
	}
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if _, err := s.GetRecord("settings"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("GetRecord = %v, want ErrRecordNotFound", err)
	}
	if err := s.PutRecord("settings", []byte(`{"slotTimes":{}}`)); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}
	if err := s.PutRecord("logs", []byte("not json")); err == nil {
		t.Error("expected error for invalid JSON value")
	}

	reopened := NewJSONStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, err := reopened.GetRecord("settings")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"slotTimes":{}}` {
		t.Errorf("GetRecord = %s", got)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind")
	}
}

func TestJSONStoreRollsBackOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "droptime.json")
	s := NewJSONStore(path)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.PutRecord("logs", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}

	// A directory where the temp file should go makes the write fail.
	if err := os.Mkdir(path+".tmp", 0700); err != nil {
		t.Fatal(err)
	}
	if err := s.PutRecord("logs", []byte(`[1]`)); err == nil {
		t.Fatal("expected write failure")
	}
	got, _ := s.GetRecord("logs")
	if string(got) != `[]` {
		t.Errorf("in-memory record not rolled back: %s", got)
	}
}

func TestCopyRecords(t *testing.T) {
	dir := t.TempDir()
	src := NewJSONStore(filepath.Join(dir, "a.json"))
	dst := NewJSONStore(filepath.Join(dir, "b.json"))
	for _, s := range []*JSONStore{src, dst} {
		if err := s.Init(); err != nil {
			t.Fatal(err)
		}
	}
	_ = src.PutRecord("settings", []byte(`{}`))
	_ = src.PutRecord("logs", []byte(`[]`))

	keys, err := CopyRecords(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Errorf("copied %v", keys)
	}
	if _, err := dst.GetRecord("logs"); err != nil {
		t.Errorf("logs not copied: %v", err)
	}
}

func TestQuarantineKeepsInvalidBytes(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "droptime.json"))
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	raw := []byte(`[{"date":"2024-01-01",`)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	side, err := Quarantine(s, "logs", raw, now)
	if err != nil {
		t.Fatalf("Quarantine failed: %v", err)
	}
	if side != "logs.unreadable.20240102T030405.000" {
		t.Errorf("side key = %q", side)
	}
	var got quarantined
	if err := GetJSON(s, side, &got); err != nil {
		t.Fatal(err)
	}
	if got.Raw != string(raw) || got.Key != "logs" || !got.SavedAt.Equal(now) {
		t.Errorf("quarantined = %+v", got)
	}

	again, err := Quarantine(s, "logs", raw, now.Add(time.Hour))
	if err != nil || again != side {
		t.Errorf("second Quarantine() = %q, %v, want existing %q", again, err, side)
	}
	keys, _ := s.ListKeys()
	if len(keys) != 1 {
		t.Errorf("keys = %v, want one side record", keys)
	}
}
