package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated reports an operation that requires a
	// user-authenticated session on a public or unconnected one.
	ErrNotAuthenticated = errors.New("operation requires an authenticated user session")

	// ErrPrincipalNotFound reports a URL that does not resolve to a
	// principal resource.
	ErrPrincipalNotFound = errors.New("no principal found at URL")

	// ErrModeConflict reports an attempt to initialize a session in a
	// mode different from the one it was bootstrapped with.
	ErrModeConflict = errors.New("session already initialized in a different mode")
)

// ConnectionError wraps a transport or bootstrap failure. It is fatal to
// the calling operation and never retried by this layer.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CollectionCreateError reports a server-rejected collection create
// request (permission, quota or name collision).
type CollectionCreateError struct {
	Path   string
	Status int
	Err    error
}

func (e *CollectionCreateError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to create collection %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("failed to create collection %s: %v", e.Path, e.Err)
}

func (e *CollectionCreateError) Unwrap() error { return e.Err }
