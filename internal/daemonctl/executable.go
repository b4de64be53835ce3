package daemonctl

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const daemonBinary = "vinestored"

// DaemonExecutable resolves the daemon binary: first next to the current
// executable, then on PATH.
func DaemonExecutable() (string, error) {
	self, err := os.Executable()
	if err == nil {
		sibling := filepath.Join(filepath.Dir(self), daemonBinary)
		if info, statErr := os.Stat(sibling); statErr == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	path, err := exec.LookPath(daemonBinary)
	if err != nil {
		return "", fmt.Errorf("locate %s: %w", daemonBinary, err)
	}
	return path, nil
}
