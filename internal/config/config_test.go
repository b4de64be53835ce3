package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vinestore/internal/config"
	"vinestore/internal/retry"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.IPC.SocketPath != config.DefaultSocketPath {
		t.Fatalf("unexpected default socket: %s", cfg.IPC.SocketPath)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.IPC.SocketPath != config.DefaultSocketPath {
		t.Fatalf("expected default socket, got %s", cfg.IPC.SocketPath)
	}
	if cfg.ConnectTimeout() != 2*time.Second {
		t.Fatalf("expected 2s connect timeout, got %v", cfg.ConnectTimeout())
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[ipc]
socket_path = "/tmp/test-vineyard.sock"
connect_timeout_seconds = 5

[retry]
mode = "linear"
initial_ms = 10
max_ms = 100
max_retries = 1

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected to read %s, got %s exists=%v", path, resolved, exists)
	}
	if cfg.IPC.SocketPath != "/tmp/test-vineyard.sock" {
		t.Fatalf("unexpected socket path: %s", cfg.IPC.SocketPath)
	}
	if cfg.ConnectTimeout() != 5*time.Second {
		t.Fatalf("unexpected connect timeout: %v", cfg.ConnectTimeout())
	}
	policy := cfg.RetryPolicy()
	if policy.Mode != retry.ModeLinear || policy.MaxRetries != 1 {
		t.Fatalf("unexpected retry policy: %+v", policy)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad retry mode": `
[retry]
mode = "random"
`,
		"bad log format": `
[logging]
format = "xml"
`,
		"bad log level": `
[logging]
level = "verbose"
`,
		"negative timeout": `
[ipc]
connect_timeout_seconds = -1
`,
	}
	for name, content := range cases {
		t.Run(strings.ReplaceAll(name, " ", "_"), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	expanded, err := config.ExpandPath("~/sockets/vineyard.sock")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if expanded != filepath.Join(home, "sockets", "vineyard.sock") {
		t.Fatalf("unexpected expansion: %s", expanded)
	}
}
