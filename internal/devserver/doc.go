// Package devserver runs a development stand-in for the vineyard object
// store daemon.
//
// It speaks the same framed JSON protocol as the real daemon but keeps
// objects in a process-local table, optionally persisted to SQLite so
// objects survive restarts. It exists for local development and for tests
// that need a live endpoint; it is not the production server and implements
// no shared memory.
//
// The server owns the socket lifecycle: it takes a lock file next to the
// socket, removes stale socket files on startup, and cleans up on Close.
package devserver
