package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIPC(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateIPC() error {
	if c.IPC.SocketPath == "" {
		return errors.New("ipc.socket_path must be set")
	}
	if c.IPC.ConnectTimeoutSeconds <= 0 {
		return errors.New("ipc.connect_timeout_seconds must be positive")
	}
	if c.IPC.RequestTimeoutSeconds <= 0 {
		return errors.New("ipc.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRetry() error {
	switch c.Retry.Mode {
	case "fixed", "linear", "exponential":
	default:
		return fmt.Errorf("retry.mode: unsupported value %q", c.Retry.Mode)
	}
	if c.Retry.InitialMS > c.Retry.MaxMS {
		return errors.New("retry.initial_ms cannot exceed retry.max_ms")
	}
	return c.RetryPolicy().Validate()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
