package describe

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/streetlens/internal/streetapi"
)

var (
	// ErrNetworkUnavailable means the client is known to be offline. It is
	// never retried automatically.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrTimeout means an attempt exceeded its time budget.
	ErrTimeout = errors.New("timeout")
	// ErrCancelled marks work abandoned because it was superseded or
	// cancelled. It never reaches State.Err.
	ErrCancelled = errors.New("cancelled")

	ErrEmptySubject = errors.New("subject id is empty")
	ErrNoSubject    = errors.New("no description requested yet")
	ErrClosed       = errors.New("description controller closed")
)

// ServerError is a non-success envelope or an HTTP level failure.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return "server error: " + e.Message
}

type timeoutError interface {
	Timeout() bool
}

// classify maps a fetch error onto the failure taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var te timeoutError
	if errors.As(err, &te) && te.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, ErrNetworkUnavailable) {
		return ErrNetworkUnavailable
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr
	}
	var apiErr *streetapi.APIError
	if errors.As(err, &apiErr) {
		return &ServerError{Status: apiErr.Status, Message: apiErr.Message}
	}
	return &ServerError{Message: err.Error()}
}
