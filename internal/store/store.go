// internal/store/store.go
//
// Byte-level persistence for session snapshots. The session layer treats an
// implementation as atomic-enough: a reader either sees a complete previous
// write or nothing, never a torn one.
//
// Implementations: memory (tests/dev), file (atomic rename), sqlite (one row
// per identity).

package store

import "errors"

// ErrNoSession is returned by Read when nothing has been stored.
var ErrNoSession = errors.New("store: no session")

// SessionStore reads and writes one identity's opaque session bytes.
type SessionStore interface {
	// Read returns the last written bytes, or ErrNoSession.
	Read() ([]byte, error)

	// Write replaces the stored bytes. Interrupted writes must never leave
	// partial, readable data behind.
	Write(data []byte) error

	// Clear discards the stored bytes. Clearing an empty store is a no-op.
	Clear() error
}
