package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestEntryLifecycle(t *testing.T) {
	gokeyring.MockInit()

	const connStr = "postgres://me@localhost:5432/droptime?sslmode=disable"
	if err := ConnectionString.Set(connStr); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := ConnectionString.Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("Get() = %q, want %q", got, connStr)
	}

	if err := ConnectionString.Delete(); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := ConnectionString.Get(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
	if err := ConnectionString.Delete(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()
	if err := ConnectionString.Set(""); err == nil {
		t.Error("Set(\"\") should return an error")
	}
}

func TestEntriesAreIndependent(t *testing.T) {
	gokeyring.MockInit()
	other := Entry{Service: "droptime", User: "other"}
	if err := other.Set("x"); err != nil {
		t.Fatal(err)
	}
	if _, err := ConnectionString.Get(); !errors.Is(err, ErrNotFound) {
		t.Errorf("unrelated entry visible: %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("mock keyring reported unavailable")
	}
}

func TestUnavailable(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("dbus down"))
	t.Cleanup(gokeyring.MockInit)

	if _, err := ConnectionString.Get(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Get() = %v, want ErrUnavailable", err)
	}
	if IsAvailable() {
		t.Error("IsAvailable() = true with failing keyring")
	}
}
