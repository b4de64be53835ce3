// Package daemonctl orchestrates the development daemon process from the
// CLI: launching it detached, waiting for its socket, and probing liveness.
package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"vinestore/internal/store"
)

// ErrDaemonNotRunning indicates the daemon socket is unavailable.
var ErrDaemonNotRunning = errors.New("daemon not running")

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	SocketPath string
	ConfigPath string
}

// Launch starts a detached vinestored process.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	var args []string
	if socket := strings.TrimSpace(opts.SocketPath); socket != "" {
		args = append(args, "--socket", socket)
	}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient waits for the daemon socket to become dialable and returns
// a connected client. The socket directory is watched so a daemon that
// creates its socket late is picked up without busy polling.
func WaitForClient(ctx context.Context, socketPath string, timeout time.Duration, opts store.Options) (*store.Client, error) {
	deadline := time.Now().Add(timeout)
	waitCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	events := watchSocketDir(waitCtx, socketPath)

	var lastErr error
	for {
		client, err := store.Dial(waitCtx, socketPath, opts)
		if err == nil {
			return client, nil
		}
		lastErr = err

		select {
		case <-waitCtx.Done():
			if lastErr == nil {
				lastErr = fmt.Errorf("timeout waiting for daemon")
			}
			return nil, fmt.Errorf("daemon failed to start: %w", lastErr)
		case <-events:
			// Socket file appeared or changed; retry immediately.
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// watchSocketDir emits an event whenever the socket's parent directory
// changes. Falls back to a closed-less channel (pure polling) when the
// watcher cannot be created.
func watchSocketDir(ctx context.Context, socketPath string) <-chan struct{} {
	events := make(chan struct{}, 1)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return events
	}
	if err := watcher.Add(filepath.Dir(socketPath)); err != nil {
		_ = watcher.Close()
		return events
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != socketPath {
					continue
				}
				select {
				case events <- struct{}{}:
				default:
				}
			case <-watcher.Errors:
			}
		}
	}()
	return events
}

// ProcessInfo reports whether the daemon socket is reachable and answering
// pings.
func ProcessInfo(ctx context.Context, socketPath string, opts store.Options) (bool, error) {
	client, err := store.Dial(ctx, socketPath, opts)
	if err != nil {
		if isDaemonUnavailable(err) {
			return false, nil
		}
		return false, err
	}
	defer client.Close()
	return client.Ping(ctx), nil
}

// WaitForShutdown waits for the daemon socket to disappear or stop
// answering.
func WaitForShutdown(ctx context.Context, socketPath string, timeout time.Duration, opts store.Options) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		alive, err := ProcessInfo(ctx, socketPath, opts)
		if err == nil && !alive {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("daemon did not stop within %s", timeout)
}

func isDaemonUnavailable(err error) bool {
	return errors.Is(err, store.ErrConnection) ||
		errors.Is(err, os.ErrNotExist)
}
