package logging

import (
	"log/slog"
	"path/filepath"
	"strings"

	"vinestore/internal/config"
)

// NewFromConfig creates a logger using application config defaults.
// Daemon processes get a log file under the configured log directory in
// addition to stderr.
func NewFromConfig(cfg *config.Config, fileName string) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}

	outputs := []string{"stderr"}
	if strings.TrimSpace(cfg.Logging.LogDir) != "" && fileName != "" {
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, err
		}
		outputs = append(outputs, filepath.Join(cfg.Logging.LogDir, fileName))
	}

	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}
