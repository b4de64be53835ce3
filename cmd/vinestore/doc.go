// Command vinestore is the CLI for a vineyard-compatible object store:
// it resolves, stores, lists, and removes objects over the daemon's IPC
// socket, and manages the development stand-in daemon.
package main
