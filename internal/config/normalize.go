package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeRetry()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.IPC.SocketPath) == "" {
		c.IPC.SocketPath = DefaultSocketPath
	}
	if c.IPC.SocketPath, err = ExpandPath(c.IPC.SocketPath); err != nil {
		return fmt.Errorf("ipc.socket_path: %w", err)
	}
	if c.Logging.LogDir, err = ExpandPath(c.Logging.LogDir); err != nil {
		return fmt.Errorf("logging.log_dir: %w", err)
	}
	if c.Dev.PersistDB, err = ExpandPath(c.Dev.PersistDB); err != nil {
		return fmt.Errorf("dev.persist_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeRetry() {
	c.Retry.Mode = strings.ToLower(strings.TrimSpace(c.Retry.Mode))
	if c.Retry.Mode == "" {
		c.Retry.Mode = defaultRetryMode
	}
	if c.Retry.InitialMS <= 0 {
		c.Retry.InitialMS = defaultRetryInitialMS
	}
	if c.Retry.MaxMS <= 0 {
		c.Retry.MaxMS = defaultRetryMaxMS
	}
	if c.Retry.MaxRetries < 0 {
		c.Retry.MaxRetries = defaultRetryMaxRetries
	}
}
