package forward

import (
	"bytes"
	"net"

	"github.com/pkg/errors"
)

// sendToOrigin writes data to bc and flushes it, the one place this
// package pushes a buffered write out to the wire for the request side of
// an exchange (§4.C/§4.E/§4.F).
func sendToOrigin(bc *bufConn, data []byte) error {
	if _, err := bc.Write(data); err != nil {
		return errors.WithStack(err)
	}
	if err := bc.Flush(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// readChunkedBodyFromClient implements §4.F's POST continuation: when the
// client declared Transfer-Encoding: chunked and the body bytes the parser
// had already buffered don't yet contain the chunk terminator, keep
// reading raw bytes from the client and forwarding each read to bc until
// the terminator is observed. Mirrors the source's continuation loop,
// including its "terminator found anywhere in a freshly read buffer" test.
func readChunkedBodyFromClient(client net.Conn, bc *bufConn, bufSize int) error {
	buf := make([]byte, bufSize)
	for {
		n, err := client.Read(buf)
		if n > 0 {
			if werr := sendToOrigin(bc, buf[:n]); werr != nil {
				return werr
			}
			if bytes.Contains(buf[:n], chunkedTerminator) {
				return nil
			}
		}
		if err != nil {
			return errors.WithStack(err)
		}
	}
}
