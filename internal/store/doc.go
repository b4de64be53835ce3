// Package store implements the client half of the vineyard IPC protocol.
//
// A Client owns exactly one Unix-socket connection to the object-store
// daemon. Dial performs the version handshake before returning, so a
// non-nil Client is always ready for requests. Requests are serialized on
// the connection; independent clients share nothing and may be used from
// parallel test sessions.
//
// Transient timeouts on idempotent requests are retried with bounded
// backoff by reconnecting; protocol version mismatches and unknown object
// identifiers are never retried.
package store
