package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when the text is missing, empty or too short
	ErrInvalidInput = errors.New("invalid input")

	// ErrPatternConfig is returned when a catalog pattern fails to compile
	ErrPatternConfig = errors.New("invalid pattern configuration")

	// ErrFallbackUnavailable is returned when no AI fallback model produced a result
	ErrFallbackUnavailable = errors.New("ai fallback unavailable")

	// ErrNotFound is returned by caches on a miss
	ErrNotFound = errors.New("not found")
)

// MinTextLength is the minimum trimmed length of a classifiable text
const MinTextLength = 10

// ItemError records the failure of a single email inside a batch
type ItemError struct {
	EmailID int
	Err     error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("email %d: %v", e.EmailID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
