package forward

// Engine bundles the pool, dialer, options and metrics every forwarder
// needs, the way pkg/httplb.Backend bundles a set of backendServers behind
// one set of options. The three exported methods are this package's public
// surface: ForwardGet, ForwardPost and ForwardConnect, matching the
// caller-facing contract of forward_get/forward_post/forward_connect.
type Engine struct {
	pool    *Pool
	dialer  *Dialer
	opts    Options
	metrics *Metrics
}

// NewEngine builds an Engine from opts (zero fields fall back to
// DefaultOptions) and m (nil disables metrics).
func NewEngine(opts Options, m *Metrics) *Engine {
	opts.setDefaults()
	if m == nil {
		m = nullMetrics()
	}
	pool := NewPool(m)
	return &Engine{
		pool:    pool,
		dialer:  NewDialer(pool, opts, m),
		opts:    opts,
		metrics: m,
	}
}

func (e *Engine) recordExchange(method string, bc *bufConn, key string, code string) {
	if bc == nil {
		e.metrics.RequestsTotal.WithLabelValues(method, code).Inc()
		return
	}
	rd, wr := bc.Stats()
	e.metrics.ReadBytes.WithLabelValues(key, "origin_to_client").Add(float64(rd))
	e.metrics.WriteBytes.WithLabelValues(key, "client_to_origin").Add(float64(wr))
	e.metrics.RequestsTotal.WithLabelValues(method, code).Inc()
}
