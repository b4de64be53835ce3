package daemonctl_test

import (
	"context"
	"testing"
	"time"

	"vinestore/internal/daemonctl"
	"vinestore/internal/devserver"
	"vinestore/internal/logging"
	"vinestore/internal/retry"
	"vinestore/internal/store"
	"vinestore/internal/testsupport"
)

func probeOptions() store.Options {
	return store.Options{
		ConnectTimeout: time.Second,
		RequestTimeout: 2 * time.Second,
		Retry:          retry.NewPolicy(retry.ModeFixed, 5*time.Millisecond, 20*time.Millisecond, 0),
	}
}

func TestWaitForClientPicksUpLateDaemon(t *testing.T) {
	socket := testsupport.SocketPath(t)

	// Daemon comes up after the wait loop has already started.
	started := make(chan *devserver.Server, 1)
	go func() {
		time.Sleep(300 * time.Millisecond)
		srv, err := devserver.NewServer(context.Background(), socket, devserver.Options{}, logging.NewNop())
		if err != nil {
			started <- nil
			return
		}
		srv.Serve()
		started <- srv
	}()
	defer func() {
		if srv := <-started; srv != nil {
			srv.Close()
		}
	}()

	client, err := daemonctl.WaitForClient(context.Background(), socket, 5*time.Second, probeOptions())
	if err != nil {
		t.Fatalf("WaitForClient: %v", err)
	}
	defer client.Close()

	if !client.Ping(context.Background()) {
		t.Fatal("expected live daemon after WaitForClient")
	}
}

func TestWaitForClientTimesOut(t *testing.T) {
	socket := testsupport.SocketPath(t)

	start := time.Now()
	_, err := daemonctl.WaitForClient(context.Background(), socket, 500*time.Millisecond, probeOptions())
	if err == nil {
		t.Fatal("expected timeout waiting for absent daemon")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("wait ran far past its timeout: %v", elapsed)
	}
}

func TestProcessInfo(t *testing.T) {
	socket := testsupport.SocketPath(t)

	alive, err := daemonctl.ProcessInfo(context.Background(), socket, probeOptions())
	if err != nil {
		t.Fatalf("ProcessInfo without daemon: %v", err)
	}
	if alive {
		t.Fatal("expected alive=false without a daemon")
	}

	srv := testsupport.StartServer(t, devserver.Options{})
	alive, err = daemonctl.ProcessInfo(context.Background(), srv.Path(), probeOptions())
	if err != nil {
		t.Fatalf("ProcessInfo with daemon: %v", err)
	}
	if !alive {
		t.Fatal("expected alive=true with a running daemon")
	}
}

func TestWaitForShutdown(t *testing.T) {
	srv := testsupport.StartServer(t, devserver.Options{})

	done := make(chan error, 1)
	go func() {
		done <- daemonctl.WaitForShutdown(context.Background(), srv.Path(), 5*time.Second, probeOptions())
	}()

	time.Sleep(100 * time.Millisecond)
	srv.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitForShutdown: %v", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("WaitForShutdown did not return")
	}
}
