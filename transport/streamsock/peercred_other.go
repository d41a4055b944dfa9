//go:build !linux

package streamsock

import (
	"errors"
	"net"
)

func unixPeerCredentials(uc *net.UnixConn) (uid, gid, pid int, err error) {
	return 0, 0, 0, errors.New("streamsock: peer credentials not supported on this platform")
}
