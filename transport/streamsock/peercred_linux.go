//go:build linux

package streamsock

import (
	"net"

	"golang.org/x/sys/unix"
)

func unixPeerCredentials(uc *net.UnixConn) (uid, gid, pid int, err error) {
	raw, err := uc.SyscallConn()
	if err != nil {
		return 0, 0, 0, err
	}

	var cred *unix.Ucred
	var sockErr error
	if ctlErr := raw.Control(func(fd uintptr) {
		cred, sockErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); ctlErr != nil {
		return 0, 0, 0, ctlErr
	}
	if sockErr != nil {
		return 0, 0, 0, sockErr
	}
	return int(cred.Uid), int(cred.Gid), int(cred.Pid), nil
}
