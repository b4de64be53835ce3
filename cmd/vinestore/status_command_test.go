package main

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"vinestore/internal/devserver"
	"vinestore/internal/testsupport"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestStatusJSONAgainstDaemon(t *testing.T) {
	srv := testsupport.StartServer(t, devserver.Options{})

	stdout, err := runCommand(t, "status", "--json", "--vineyard-ipc-socket", srv.Path())
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	var out statusOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode status output: %v (%q)", err, stdout)
	}
	if !out.Reachable {
		t.Fatalf("expected reachable daemon: %+v", out)
	}
	if out.InstanceID != srv.InstanceID() {
		t.Fatalf("expected instance %s, got %s", srv.InstanceID(), out.InstanceID)
	}
	if out.Error != "" {
		t.Fatalf("unexpected error field: %q", out.Error)
	}
}

func TestStatusJSONReportsDialFailure(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")

	stdout, err := runCommand(t, "status", "--json", "--vineyard-ipc-socket", socket)
	if err == nil {
		t.Fatal("expected non-zero result when the daemon is unreachable")
	}

	var out statusOutput
	if jsonErr := json.Unmarshal([]byte(stdout), &out); jsonErr != nil {
		t.Fatalf("decode status output: %v (%q)", jsonErr, stdout)
	}
	if out.Reachable {
		t.Fatalf("expected reachable=false: %+v", out)
	}
	if out.Error == "" {
		t.Fatal("expected the dial error to surface in the JSON payload")
	}
}
