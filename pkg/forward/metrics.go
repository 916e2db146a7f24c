package forward

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds this package's Prometheus instruments, built the same way
// pkg/lb builds its http_frontend/http_backend vectors with promauto, but
// scoped to one Registerer per Metrics value instead of a package-level
// panic-once singleton, so tests can register independent instances.
type Metrics struct {
	PoolSize      *prometheus.GaugeVec
	DialSeconds   *prometheus.HistogramVec
	ReadBytes     *prometheus.CounterVec
	WriteBytes    *prometheus.CounterVec
	RequestsTotal *prometheus.CounterVec
	TunnelActive  *prometheus.GaugeVec
	TunnelSeconds prometheus.Histogram
}

func roundP(x float64, p int) float64 {
	f := math.Pow(10, float64(p))
	return math.Round(x*f) / f
}

// NewMetrics registers this package's instruments under namespace/subsystem
// "forward" into reg. Pass prometheus.DefaultRegisterer in production, or a
// fresh prometheus.NewRegistry() in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	buckets := prometheus.LinearBuckets(0.05, 0.05, 20)
	for i := range buckets {
		buckets[i] = roundP(buckets[i], 2)
	}
	buckets = append([]float64{.005, .01, .025}, append(buckets, []float64{2.5, 5, 10}...)...)

	return &Metrics{
		PoolSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "pool_size",
		}, []string{"key"}),
		DialSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "dial_seconds",
			Buckets:   buckets,
		}, []string{"key", "outcome"}),
		ReadBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "read_bytes",
		}, []string{"key", "direction"}),
		WriteBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "write_bytes",
		}, []string{"key", "direction"}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "requests_total",
		}, []string{"method", "code"}),
		TunnelActive: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "tunnel_active",
		}, []string{"key"}),
		TunnelSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "tunnel_duration_seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}),
	}
}

// nullMetrics is returned by engines constructed without an explicit
// Metrics, so every call site can unconditionally call through m without a
// nil check, the same role NullLogger plays for logging.
func nullMetrics() *Metrics {
	return NewMetrics("forward_unregistered", prometheus.NewRegistry())
}
