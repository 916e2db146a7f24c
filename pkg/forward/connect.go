package forward

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

const connectEstablished = "HTTP/1.1 200 Connection Established\r\nProxy-Agent: MyProxy/1.0\r\n\r\n"

// ForwardConnect implements §4.G: dial the origin, answer the client with
// the fixed "200 Connection Established" line, then relay raw bytes in
// both directions until either side closes, errors, or stalls past the
// configured timeouts. The tunnel never touches the origin connection pool
// — it is opaque and is always closed on exit, never reused.
func (e *Engine) ForwardConnect(req *Request, client net.Conn, clientID string, log Logger) {
	host, port := req.Host, req.PortOrDefault()
	key := host + ":" + port

	logf(log, Info, clientID, "handling CONNECT for client %s: %s", clientID, key)

	bc, err := e.dialer.Dial(context.Background(), host, port)
	if err != nil {
		logf(log, Error, clientID, "dial %s failed: %v", key, err)
		writeBadGateway(client)
		e.recordExchange(req.Method, nil, key, "502")
		return
	}
	origin := bc.Conn()
	defer bc.Close()

	if _, werr := client.Write([]byte(connectEstablished)); werr != nil {
		logf(log, Error, clientID, "writing connection-established to client %s failed: %v", clientID, werr)
		e.recordExchange(req.Method, nil, key, "")
		return
	}

	logf(log, Info, clientID, "established tunnel for client %s to %s", clientID, key)

	e.metrics.TunnelActive.WithLabelValues(key).Inc()
	start := time.Now()
	err = runTunnel(client, origin, e.opts.TunnelIdleTimeout, e.opts.TunnelWriteStall, e.opts.ReadBufferSize)
	e.metrics.TunnelActive.WithLabelValues(key).Dec()
	e.metrics.TunnelSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		logf(log, Error, clientID, "tunnel for client %s to %s ended: %v", clientID, key, err)
	}
	logf(log, Info, clientID, "closed tunnel for client %s to %s", clientID, key)
	e.recordExchange(req.Method, nil, key, "200")
}

// runTunnel relays bytes between client and origin until one side closes,
// a read or write fails, or a write stalls past writeStall; a read that is
// idle for idleTimeout is simply re-armed. Each direction is its own goroutine
// blocked on Read with a rolling read deadline — the idiomatic Go
// equivalent of the source's single-threaded select() loop over two
// descriptors (§4.G, §9 implementation note): a stalled peer unblocks via
// its own deadline rather than the whole tunnel being woken by a shared
// readiness check.
//
// The client socket is borrowed (§3/§4.G/§5): it is never closed here,
// including on teardown. Closing origin is enough to unblock the pump
// reading from it; the pump reading from client is unblocked by forcing
// its read deadline into the past, which fails the in-flight Read without
// touching the socket itself.
func runTunnel(client, origin net.Conn, idleTimeout, writeStall time.Duration, bufSize int) error {
	errCh := make(chan error, 2)
	stop := make(chan struct{})
	go pumpConn(origin, client, idleTimeout, writeStall, bufSize, stop, errCh)
	go pumpConn(client, origin, idleTimeout, writeStall, bufSize, stop, errCh)

	err := <-errCh
	close(stop)
	origin.Close()
	client.SetReadDeadline(time.Now())
	<-errCh
	return err
}

// pumpConn copies from src to dst until src.Read fails or stop is closed by
// the other direction's pump shutting down. A read idle for longer than
// idleTimeout is not a failure: the pump loops again (§4.G: "wait for
// readability... on timeout, loop again").
// Partial writes to dst are retried until complete, each retry bounded by
// writeStall (§4.G's 5s per-write-stall timeout).
//
// stop is how the pump reading from the borrowed client socket is told to
// exit once the origin side has ended: runTunnel resets that pump's read
// deadline into the past to unblock its in-flight Read, which surfaces as
// a timeout here — distinguished from a genuine idle timeout by checking
// stop before looping again.
func pumpConn(dst, src net.Conn, idleTimeout, writeStall time.Duration, bufSize int, stop <-chan struct{}, done chan<- error) {
	buf := make([]byte, bufSize)
	for {
		src.SetReadDeadline(time.Now().Add(idleTimeout))
		// Checked after re-arming the deadline: if runTunnel already forced
		// it into the past, the line above has just undone that.
		select {
		case <-stop:
			done <- nil
			return
		default:
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if werr := writeFull(dst, buf[:n], writeStall); werr != nil {
				done <- errors.WithStack(werr)
				return
			}
		}
		if rerr != nil {
			if isTimeout(rerr) {
				select {
				case <-stop:
					done <- nil
					return
				default:
					continue
				}
			}
			if rerr == io.EOF {
				done <- nil
				return
			}
			done <- errors.WithStack(rerr)
			return
		}
	}
}

// writeFull writes all of p to dst, honoring partial writes by retrying
// until either everything is written or a write stalls past deadline.
func writeFull(dst net.Conn, p []byte, deadline time.Duration) error {
	for len(p) > 0 {
		dst.SetWriteDeadline(time.Now().Add(deadline))
		n, err := dst.Write(p)
		if n > 0 {
			p = p[n:]
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
