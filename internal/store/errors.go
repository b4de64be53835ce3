package store

import (
	"errors"
	"fmt"
)

// Error taxonomy for client operations. Callers match with errors.Is.
var (
	// ErrConnection reports that a connection could not be established:
	// missing socket, nobody listening, or a failed handshake.
	ErrConnection = errors.New("cannot connect to object store")

	// ErrProtocolVersion reports a handshake version mismatch. It matches
	// ErrConnection, so callers that only distinguish "could not connect"
	// keep working.
	ErrProtocolVersion = fmt.Errorf("%w: protocol version mismatch", ErrConnection)

	// ErrConnectionLost reports that an established connection broke while
	// a request was outstanding, including a caller-initiated Close.
	ErrConnectionLost = errors.New("connection to object store lost")

	// ErrObjectNotFound reports that the daemon does not know the
	// requested identifier, or has evicted the object.
	ErrObjectNotFound = errors.New("object not found")

	// ErrClosed reports a request issued on a client after Close.
	ErrClosed = errors.New("client is closed")
)
