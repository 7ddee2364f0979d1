package memory

import "errors"

var (
	// ErrNoActiveSession is returned by operations that require a current
	// session when none has been created or loaded.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionNotFound is returned when a session id is present neither in
	// the cache nor in storage.
	ErrSessionNotFound = errors.New("session not found")
)
