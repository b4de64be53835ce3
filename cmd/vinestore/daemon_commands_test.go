package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vinestore/internal/daemonctl"
	"vinestore/internal/devserver"
	"vinestore/internal/testsupport"
)

func TestDaemonStopShutsDownDaemon(t *testing.T) {
	srv := testsupport.StartServer(t, devserver.Options{})

	stdout, err := runCommand(t, "daemon", "stop", "--vineyard-ipc-socket", srv.Path())
	if err != nil {
		t.Fatalf("daemon stop: %v", err)
	}
	if !strings.Contains(stdout, "stopped") {
		t.Fatalf("unexpected stop output: %q", stdout)
	}

	select {
	case <-srv.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("daemon still running after stop")
	}
}

func TestDaemonStopWithoutDaemon(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")

	_, err := runCommand(t, "daemon", "stop", "--vineyard-ipc-socket", socket)
	if !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestDaemonStatusNotRunning(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")

	_, err := runCommand(t, "daemon", "status", "--vineyard-ipc-socket", socket)
	if !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}
