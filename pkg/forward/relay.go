package forward

import (
	"bytes"
	"io"
	"net"

	"github.com/pkg/errors"
)

// maxResponseHeaderSection bounds how much we'll buffer while waiting for
// "\r\n\r\n", mirroring pkg/lb's maxHTTPHeaderLineLen guard against an
// origin that never terminates its header block.
const maxResponseHeaderSection = 1 * 1024 * 1024

var errResponseHeaderTooLarge = errors.New("origin response header section exceeded limit")

// chunkedTerminator is the end-of-chunks marker §4.D/§9 Open Question 2
// detects by substring search over whatever was just read, rather than by
// running a real chunked decoder — the spec's documented, not "fixed",
// approximation.
var chunkedTerminator = []byte("0\r\n\r\n")

// relayResponse reads origin's HTTP/1.1 response and writes it to client
// byte for byte: the header section (plus whatever body bytes arrived in
// the same reads) is forwarded as one write once "\r\n\r\n" is seen, and
// every subsequent read is forwarded verbatim as it arrives (§4.D). It
// returns whether the origin offered Connection: keep-alive, so the caller
// can decide whether to return the connection to the pool (§3 invariant 1).
func relayResponse(origin *bufConn, client net.Conn, bufSize int) (keepAlive bool, err error) {
	buf := make([]byte, bufSize)
	var headerBuf []byte
	headersComplete := false
	var framing responseFraming
	var bodyReceived int64

	for {
		n, rerr := origin.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if !headersComplete {
				headerBuf = append(headerBuf, chunk...)
				if len(headerBuf) > maxResponseHeaderSection {
					return false, errResponseHeaderTooLarge
				}
				idx := bytes.Index(headerBuf, []byte("\r\n\r\n"))
				if idx < 0 {
					if rerr != nil {
						return false, normalizeRelayErr(rerr)
					}
					continue
				}
				headersComplete = true
				framing = parseResponseHeaders(headerBuf[:idx])
				keepAlive = framing.KeepAlive
				bodyPrefix := headerBuf[idx+4:]
				bodyReceived = int64(len(bodyPrefix))

				if _, werr := client.Write(headerBuf); werr != nil {
					return keepAlive, errors.WithStack(werr)
				}
				if relayShouldStop(framing, bodyPrefix, bodyReceived) {
					return keepAlive, nil
				}
			} else {
				if _, werr := client.Write(chunk); werr != nil {
					return keepAlive, errors.WithStack(werr)
				}
				bodyReceived += int64(n)
				if relayShouldStop(framing, chunk, bodyReceived) {
					return keepAlive, nil
				}
			}
		}
		if rerr != nil {
			return keepAlive, normalizeRelayErr(rerr)
		}
	}
}

// normalizeRelayErr turns an orderly close (io.EOF) into a nil error: §4.D
// termination case 4 treats recv()==0 as a normal end of relay, not a
// failure to report.
func normalizeRelayErr(err error) error {
	if err == io.EOF {
		return nil
	}
	return errors.WithStack(err)
}

// relayShouldStop implements §4.D's three termination conditions against
// the framing learned from the header section and the most recently
// forwarded chunk (the header section's body prefix counts as a chunk the
// first time this is called).
func relayShouldStop(framing responseFraming, latestChunk []byte, bodyReceived int64) bool {
	switch {
	case framing.HasContentLength:
		return bodyReceived >= framing.ContentLength
	case framing.Chunked:
		return bytes.Contains(latestChunk, chunkedTerminator)
	case !framing.declaresFraming():
		return true
	default:
		// Content-Length was present but unparseable and no chunked
		// encoding was declared either: keep relaying until the origin
		// closes the connection (§4.D's termination case 4).
		return false
	}
}
