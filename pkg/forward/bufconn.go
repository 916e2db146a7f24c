package forward

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"
)

// statsConn wraps a net.Conn to tally bytes moved through it, mirroring
// pkg/lb's statsReader/statsWriter pair but combined onto one type since
// this package never needs to reset the two counters independently.
type statsConn struct {
	net.Conn
	rd, wr int64
}

func (c *statsConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	atomic.AddInt64(&c.rd, int64(n))
	return n, err
}

func (c *statsConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	atomic.AddInt64(&c.wr, int64(n))
	return n, err
}

func (c *statsConn) Stats() (rd, wr int64) {
	return atomic.SwapInt64(&c.rd, 0), atomic.SwapInt64(&c.wr, 0)
}

// bufConn is a pooled origin connection, buffered for the reads the
// response relay does and instrumented the way pkg/httplb's
// bufConn is, plus a Check that reuses connCheck to decide pool-checkout
// liveness (§4.A/§4.B).
type bufConn struct {
	*bufio.Reader
	*bufio.Writer
	sc *statsConn
	tm time.Time
}

func newBufConn(conn net.Conn) *bufConn {
	sc := &statsConn{Conn: conn}
	return &bufConn{
		Reader: bufio.NewReader(sc),
		Writer: bufio.NewWriter(sc),
		sc:     sc,
		tm:     time.Now(),
	}
}

func (bc *bufConn) Conn() net.Conn {
	return bc.sc.Conn
}

func (bc *bufConn) Close() error {
	return bc.sc.Conn.Close()
}

func (bc *bufConn) Stats() (rd, wr int64) {
	return bc.sc.Stats()
}

// Check reports whether the underlying socket still looks usable, per
// §4.A's checkout-time probe. A clean would-block (no error) is usable; a
// zero-length read (peer closed) is not. A read that actually returns a
// byte disqualifies the connection too, deliberately diverging from §4.A's
// "data available ... means the socket is usable": connCheck has no
// MSG_PEEK, so that byte is consumed off the kernel socket buffer, not
// peeked, and handing the connection back would silently drop it from
// whatever the next request reads. See DESIGN.md.
func (bc *bufConn) Check() bool {
	err := connCheck(bc.sc.Conn)
	return err == nil
}
