// Package testsupport provides shared fixtures for vinestore tests: scoped
// configs, short socket paths, and a running dev daemon per test.
package testsupport

import (
	"path/filepath"
	"testing"

	"vinestore/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.IPC.SocketPath = SocketPath(t)
	cfg.Logging.LogDir = filepath.Join(t.TempDir(), "logs")
	// Keep test retries fast.
	cfg.Retry.InitialMS = 5
	cfg.Retry.MaxMS = 20

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithPersistDB points the dev daemon section at a SQLite file.
func WithPersistDB(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Dev.PersistDB = path
	}
}
