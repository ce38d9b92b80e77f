package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/droptime/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored for the entry
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrUnavailable is returned when the OS keyring cannot be reached
	ErrUnavailable = errors.New("OS keyring is not available")
)

// Entry addresses one secret in the OS keyring.
type Entry struct {
	Service string
	User    string
}

// ConnectionString is the entry holding the PostgreSQL connection string.
var ConnectionString = Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}

func (e Entry) Get() (string, error) {
	secret, err := keyring.Get(e.Service, e.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return secret, nil
}

func (e Entry) Set(secret string) error {
	if secret == "" {
		return errors.New("secret cannot be empty")
	}
	if err := keyring.Set(e.Service, e.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (e Entry) Delete() error {
	err := keyring.Delete(e.Service, e.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks the keyring with a read. A not-found answer still means it works.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-check")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
