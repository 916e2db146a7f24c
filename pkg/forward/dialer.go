package forward

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
)

// DialError is returned by Dialer.Dial, distinguishing a resolve/connect
// failure from any other error this package returns so ForwardGet/Post/
// Connect can map it to a 502 per §7's taxonomy.
type DialError struct {
	Key string
	Err error
}

func (e *DialError) Error() string {
	return "dial " + e.Key + ": " + e.Err.Error()
}

func (e *DialError) Unwrap() error {
	return e.Err
}

// Dialer resolves "host:port" to an origin connection, consulting pool
// first and falling back to a fresh dial bounded by Options.DialTimeout
// (§4.A). It owns no state of its own beyond the pool and options it was
// built with, the same way backendServer.ConnAcquire leans on a shared
// net.Dialer.
type Dialer struct {
	pool    *Pool
	opts    Options
	metrics *Metrics
	netDial net.Dialer
}

// NewDialer builds a Dialer backed by pool, using opts.DialTimeout as the
// connect deadline.
func NewDialer(pool *Pool, opts Options, m *Metrics) *Dialer {
	if m == nil {
		m = nullMetrics()
	}
	return &Dialer{
		pool:    pool,
		opts:    opts,
		metrics: m,
		netDial: net.Dialer{Timeout: opts.DialTimeout},
	}
}

// Dial returns a connection to host:port, reusing a pooled one when its
// checkout-time liveness probe passes, otherwise dialing fresh (§4.A
// steps 1-4). The returned connection is exclusively owned by the caller
// until it is deposited back via Pool.deposit or closed.
func (d *Dialer) Dial(ctx context.Context, host, port string) (*bufConn, error) {
	key := host + ":" + port
	start := time.Now()

	if bc := d.pool.checkout(key); bc != nil {
		if bc.Check() {
			d.metrics.DialSeconds.WithLabelValues(key, "pool_hit").Observe(time.Since(start).Seconds())
			return bc, nil
		}
		bc.Close()
	}

	dialCtx := ctx
	if d.opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, d.opts.DialTimeout)
		defer cancel()
	}
	conn, err := d.netDial.DialContext(dialCtx, "tcp4", net.JoinHostPort(host, port))
	if err != nil {
		d.metrics.DialSeconds.WithLabelValues(key, "error").Observe(time.Since(start).Seconds())
		return nil, &DialError{Key: key, Err: errors.WithStack(err)}
	}
	d.metrics.DialSeconds.WithLabelValues(key, "dialed").Observe(time.Since(start).Seconds())
	return newBufConn(conn), nil
}

// Release returns bc to the pool under key when keepAlive is true,
// otherwise closes it, satisfying §3 invariant 1 (every opened origin
// socket is closed or pooled before the forwarder returns).
func (d *Dialer) Release(host, port string, bc *bufConn, keepAlive bool) {
	key := host + ":" + port
	if keepAlive {
		d.pool.deposit(key, bc)
		return
	}
	bc.Close()
}
