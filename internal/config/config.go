package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"vinestore/internal/retry"
)

//go:embed sample_config.toml
var sampleConfig string

// IPC contains connection settings for the object-store socket.
type IPC struct {
	SocketPath            string `toml:"socket_path"`
	ConnectTimeoutSeconds int    `toml:"connect_timeout_seconds"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Retry contains backoff settings for transient request failures.
type Retry struct {
	Mode       string `toml:"mode"`
	InitialMS  int    `toml:"initial_ms"`
	MaxMS      int    `toml:"max_ms"`
	MaxRetries int    `toml:"max_retries"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	LogDir string `toml:"log_dir"`
}

// Dev contains settings for the development stand-in daemon.
type Dev struct {
	PersistDB        string `toml:"persist_db"`
	AdvertiseVersion int    `toml:"advertise_version"`
}

// Config encapsulates all configuration values for vinestore.
type Config struct {
	IPC     IPC     `toml:"ipc"`
	Retry   Retry   `toml:"retry"`
	Logging Logging `toml:"logging"`
	Dev     Dev     `toml:"dev"`
}

// SampleConfig returns the annotated sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/vinestore/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. The second return value is the
// resolved path, the third reports whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// ConnectTimeout returns the handshake timeout as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.IPC.ConnectTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.IPC.RequestTimeoutSeconds) * time.Second
}

// RetryPolicy converts the raw retry section into a validated policy.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.NewPolicy(
		retry.Mode(c.Retry.Mode),
		time.Duration(c.Retry.InitialMS)*time.Millisecond,
		time.Duration(c.Retry.MaxMS)*time.Millisecond,
		c.Retry.MaxRetries,
	)
}

// EnsureDirectories creates the directories the configuration points at.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Logging.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Logging.LogDir, 0o755); err != nil {
		return fmt.Errorf("ensure log directory: %w", err)
	}
	return nil
}

// ExpandPath resolves leading tilde shortcuts and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		trimmed = filepath.Join(home, trimmed[2:])
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("absolute path for %q: %w", pathValue, err)
	}
	return abs, nil
}
