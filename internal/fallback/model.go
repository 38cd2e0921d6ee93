package fallback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Model is a single AI backend able to answer a classification prompt
type Model interface {
	// Name identifies the model in logs, metrics and results
	Name() string

	// Complete sends the system instruction and prompt and returns the raw reply text
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// StatusError carries the HTTP-equivalent status of a failed model call
type StatusError struct {
	Model string
	Code  int
	Err   error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model %s returned status %d: %v", e.Model, e.Code, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// ErrEmptyResponse is returned by adapters when the model produced no text
var ErrEmptyResponse = errors.New("empty response from model")

// Retryable reports whether err should move the chain on to the next candidate:
// a 404 or 503 status, a timeout or a network failure
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusNotFound, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusRequestTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
