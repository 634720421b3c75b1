package omdb

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// Error kinds returned by the client. Use errors.Is to test for them.
var (
	// ErrNetwork covers transport failures and non-2xx responses.
	ErrNetwork = errors.New("omdb request failed")
	// ErrNoResults means OMDb answered with Response "False".
	ErrNoResults = errors.New("omdb returned no results")
	// ErrParse means the response body was not valid OMDb JSON.
	ErrParse = errors.New("omdb response could not be decoded")
	// ErrAborted means the caller canceled the request. It is never a user-facing
	// error and matches context.Canceled.
	ErrAborted = errors.WithMessage(context.Canceled, "omdb request aborted")
)

// StatusError is returned for non-2xx responses. It matches ErrNetwork.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("omdb returned status %d", e.Code)
}

// Is reports StatusError as a kind of ErrNetwork.
func (e *StatusError) Is(target error) bool {
	return target == ErrNetwork
}

// IsAborted reports whether err is a cancellation rather than a failure.
func IsAborted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// isTransient reports whether a details lookup is worth retrying.
func isTransient(err error) bool {
	if err == nil || IsAborted(err) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == 429
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// noResults wraps ErrNoResults with the provider's message, if any.
func noResults(msg string) error {
	if msg == "" {
		return ErrNoResults
	}
	return errors.Wrap(ErrNoResults, msg)
}

// classify maps a transport error onto the client's error kinds.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return errors.Wrap(ErrAborted, err.Error())
	}
	return &transportError{err: err}
}

// transportError keeps the original cause visible while matching ErrNetwork.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return ErrNetwork.Error() + ": " + e.err.Error()
}

func (e *transportError) Unwrap() error { return e.err }

func (e *transportError) Is(target error) bool {
	return target == ErrNetwork
}
