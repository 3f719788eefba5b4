package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound         = errors.New("not found")
	ErrBusy             = errors.New("a run is already in progress for this note")
	ErrInvalidOperation = errors.New("operation not allowed in the current quiz state")
	ErrNoQuestions      = errors.New("quiz has no questions")
)

// StorageError reports a failed note or sidecar read/write.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NetworkError reports an unreachable completion endpoint or an error status.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion endpoint %s returned %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion endpoint %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SchemaError reports a completion response that is not valid JSON after
// extraction or does not match the expected shape.
type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema: %s: %v", e.Reason, e.Err)
	}
	return "schema: " + e.Reason
}

func (e *SchemaError) Unwrap() error { return e.Err }

func schemaf(format string, args ...any) error {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// DistillationError is returned when the distillation stage fails.
type DistillationError struct {
	Err error
}

func (e *DistillationError) Error() string { return "distillation failed: " + e.Err.Error() }
func (e *DistillationError) Unwrap() error { return e.Err }

// QuizGenerationError is returned when the quiz generation stage fails.
type QuizGenerationError struct {
	Err error
}

func (e *QuizGenerationError) Error() string { return "quiz generation failed: " + e.Err.Error() }
func (e *QuizGenerationError) Unwrap() error { return e.Err }

// IsStorage reports whether err wraps a *StorageError.
func IsStorage(err error) bool {
	var e *StorageError
	return errors.As(err, &e)
}

// IsNetwork reports whether err wraps a *NetworkError.
func IsNetwork(err error) bool {
	var e *NetworkError
	return errors.As(err, &e)
}

// IsSchema reports whether err wraps a *SchemaError.
func IsSchema(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}
