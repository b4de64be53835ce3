package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vinestore/internal/devserver"
	"vinestore/internal/logging"
)

// SocketPath returns a fresh socket path short enough for sun_path limits.
// t.TempDir can exceed them on some runners, so the directory lives under
// the system temp root.
func SocketPath(t testing.TB) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "vinestore")
	if err != nil {
		t.Fatalf("mkdir socket dir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	return filepath.Join(dir, "vineyard.sock")
}

// StartServer runs a dev daemon for the duration of the test and returns
// it together with its socket path.
func StartServer(t testing.TB, opts devserver.Options) *devserver.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	srv, err := devserver.NewServer(ctx, SocketPath(t), opts, logging.NewNop())
	if err != nil {
		cancel()
		t.Fatalf("devserver.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}
