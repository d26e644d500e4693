package gotmemo

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when a translation service credential is required but absent.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrMissingTargetLang is returned when no target language is configured.
	ErrMissingTargetLang = errors.New("missing target language")
)

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a remote translator failure (transport error, non-2xx response, bad payload).
type ProviderError struct {
	Message    string
	Cause      error
	StatusCode int // HTTP status of the failed call, 0 if none was received
}

func (e *ProviderError) Error() string {
	msg := "provider error: " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// StoreError indicates a persistent store operation failure.
type StoreError struct {
	Op    string // "get", "put", "list", ...
	Key   string
	Cause error
}

func (e *StoreError) Error() string {
	msg := "store error: " + e.Op
	if e.Key != "" {
		msg += " " + e.Key
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the remote returned a different number of translations than requested.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
