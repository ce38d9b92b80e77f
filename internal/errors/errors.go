package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/droptime/internal/logger"
)

var (
	// ErrNotFound is returned when a dose or eye drop no longer exists.
	ErrNotFound = stderrors.New("not found")
	// ErrValidation is returned when user input is rejected before any mutation.
	ErrValidation = stderrors.New("validation failed")
)

// PersistenceError reports a failed read or write of a persisted record.
type PersistenceError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistence wraps err as a PersistenceError. A nil err yields nil.
func NewPersistence(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Key: key, Err: err}
}

// IsPersistence reports whether err is or wraps a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return stderrors.As(err, &pe)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// IsValidation reports whether err wraps ErrValidation.
func IsValidation(err error) bool {
	return stderrors.Is(err, ErrValidation)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	logger.Error("Command execution failed", "error", fmt.Sprintf(format, args...))
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
