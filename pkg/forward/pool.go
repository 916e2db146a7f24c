package forward

import "sync"

// Pool is the origin-side keep-alive connection cache, keyed by exact
// "host:port" text (§3 PoolKey — no normalization of default ports). It
// holds at most one idle connection per key, the same invariant
// pkg/httplb's backendServer.bcs enforces per backend server, collapsed
// from a set to a single slot because this engine has exactly one origin
// per key rather than a list of equivalent backend replicas.
type Pool struct {
	mu      sync.Mutex
	entries map[string]*bufConn
	metrics *Metrics
}

// NewPool creates an empty pool. m may be nil, in which case pool size is
// not observed.
func NewPool(m *Metrics) *Pool {
	if m == nil {
		m = nullMetrics()
	}
	return &Pool{
		entries: make(map[string]*bufConn, 16),
		metrics: m,
	}
}

// checkout removes and returns the idle connection for key, if any. The
// mutex is held only for the map operation, never across I/O (§4.B).
func (p *Pool) checkout(key string) *bufConn {
	p.mu.Lock()
	bc, ok := p.entries[key]
	if ok {
		delete(p.entries, key)
	}
	p.mu.Unlock()
	if ok {
		p.metrics.PoolSize.WithLabelValues(key).Dec()
	}
	return bc
}

// deposit stores bc as the idle connection for key, closing and discarding
// any connection already parked there (§4.B).
func (p *Pool) deposit(key string, bc *bufConn) {
	p.mu.Lock()
	old, hadOld := p.entries[key]
	p.entries[key] = bc
	p.mu.Unlock()
	if hadOld {
		old.Close()
	} else {
		p.metrics.PoolSize.WithLabelValues(key).Inc()
	}
}

// drop removes and closes the idle connection for key, if any, without
// returning it to the caller.
func (p *Pool) drop(key string) {
	p.mu.Lock()
	bc, ok := p.entries[key]
	if ok {
		delete(p.entries, key)
	}
	p.mu.Unlock()
	if ok {
		p.metrics.PoolSize.WithLabelValues(key).Dec()
		bc.Close()
	}
}
