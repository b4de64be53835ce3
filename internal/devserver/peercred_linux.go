//go:build linux

package devserver

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// peerCredentials reports the pid/uid on the other end of a Unix socket,
// used to tag per-connection log lines.
func peerCredentials(conn net.Conn) string {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return ""
	}
	raw, err := unixConn.SyscallConn()
	if err != nil {
		return ""
	}
	var creds *unix.Ucred
	var credErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		creds, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if ctrlErr != nil || credErr != nil || creds == nil {
		return ""
	}
	return fmt.Sprintf("pid=%d uid=%d", creds.Pid, creds.Uid)
}
