package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"vinestore/internal/config"
	"vinestore/internal/logging"
	"vinestore/internal/store"
)

type commandContext struct {
	socketFlag *string
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(socketFlag, configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// socketPath resolves the endpoint: explicit flag first, then config, then
// the well-known default.
func (c *commandContext) socketPath() (string, error) {
	if c.socketFlag != nil && strings.TrimSpace(*c.socketFlag) != "" {
		return strings.TrimSpace(*c.socketFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.IPC.SocketPath, nil
}

func (c *commandContext) clientOptions() (store.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return store.Options{}, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return store.Options{}, err
	}
	return store.Options{
		Logger:         logger,
		ConnectTimeout: cfg.ConnectTimeout(),
		RequestTimeout: cfg.RequestTimeout(),
		Retry:          cfg.RetryPolicy(),
	}, nil
}

// withClient dials, runs fn, and guarantees the client is released on every
// exit path.
func (c *commandContext) withClient(ctx context.Context, fn func(*store.Client) error) error {
	socket, err := c.socketPath()
	if err != nil {
		return err
	}
	opts, err := c.clientOptions()
	if err != nil {
		return err
	}
	client, err := store.Dial(ctx, socket, opts)
	if err != nil {
		return wrapDialError(err, socket)
	}
	defer client.Close()
	return fn(client)
}

func wrapDialError(err error, socket string) error {
	switch {
	case errors.Is(err, store.ErrProtocolVersion):
		return fmt.Errorf("connect to object store: %w; upgrade the daemon or this client", err)
	case errors.Is(err, store.ErrConnection):
		return fmt.Errorf("connect to object store at %s: %w; is the daemon running?", socket, err)
	default:
		return fmt.Errorf("connect to object store: %w", err)
	}
}
