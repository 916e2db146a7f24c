package forward

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// connCheck from https://github.com/go-sql-driver/mysql/blob/master/conncheck.go
var errConnCheckUnexpectedRead = errors.New("unexpected read from socket")

// connCheck reads at most one byte off c without blocking. It does not peek:
// a byte that is available is consumed from the stream and reported as
// errConnCheckUnexpectedRead. A zero-length read means the peer closed
// its side; io.EOF is returned so callers can tell that apart from "no data
// yet" (nil) and from a real error.
func connCheck(c net.Conn) error {
	var (
		n    int
		err  error
		buff [1]byte
	)

	sconn, ok := c.(syscall.Conn)
	if !ok {
		return nil
	}
	rc, err := sconn.SyscallConn()
	if err != nil {
		return err
	}
	rerr := rc.Read(func(fd uintptr) bool {
		n, err = syscall.Read(int(fd), buff[:])
		return true
	})
	switch {
	case rerr != nil:
		return rerr
	case n == 0 && err == nil:
		return io.EOF
	case n > 0:
		return errConnCheckUnexpectedRead
	case err == syscall.EAGAIN || err == syscall.EWOULDBLOCK:
		return nil
	default:
		return err
	}
}
