package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/foodmood/internal/logger"
)

var (
	// ErrStorage marks a persistence failure (I/O, serialization, constraint).
	ErrStorage = stderrors.New("storage failure")
	// ErrValidation marks malformed input such as an import file or an unknown category.
	ErrValidation = stderrors.New("validation failure")
	// ErrFutureDate is returned when an edit targets a date after today.
	ErrFutureDate = stderrors.New("cannot edit future dates")
	// ErrNotFound is returned when a lookup by key finds nothing.
	ErrNotFound = stderrors.New("not found")
)

// Kind classifies an error for user-facing reporting.
type Kind int

const (
	KindUnknown Kind = iota
	KindStorage
	KindValidation
	KindFutureDate
)

func (k Kind) String() string {
	switch k {
	case KindStorage:
		return "storage"
	case KindValidation:
		return "validation"
	case KindFutureDate:
		return "future_date"
	default:
		return "unknown"
	}
}

// StorageError wraps a failure from a store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Storage wraps err as a StorageError for op. A nil err stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if stderrors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// ValidationError describes why a value was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// KindOf reports which user-facing category err belongs to.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case stderrors.Is(err, ErrFutureDate):
		return KindFutureDate
	case stderrors.Is(err, ErrValidation):
		return KindValidation
	case stderrors.Is(err, ErrStorage):
		return KindStorage
	default:
		return KindUnknown
	}
}

// Is and As forward to the standard library so callers need one import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }

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
		logger.Error("Command execution failed", "error", err, "kind", KindOf(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
