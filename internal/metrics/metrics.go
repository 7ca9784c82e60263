package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service metrics on a private Prometheus registry.
type Registry struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AnalysesTotal      *prometheus.CounterVec
	QuotesTotal        *prometheus.CounterVec
	QuoteTotalCost     prometheus.Histogram
	ConfigUpdatesTotal *prometheus.CounterVec
	CacheLookupsTotal  *prometheus.CounterVec
	CacheEntries       prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initHTTPMetrics()
	r.initAnalyzerMetrics()
	return r
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "printquote_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "printquote_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
}

func (r *Registry) initAnalyzerMetrics() {
	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "printquote_analyses_total",
			Help: "Model characterizations computed, by complexity",
		},
		[]string{"complexity"},
	)
	r.QuotesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "printquote_quotes_total",
			Help: "Quotes computed, by resolved material and quality",
		},
		[]string{"material", "quality"},
	)
	r.QuoteTotalCost = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "printquote_quote_total_cost",
			Help:    "Distribution of quoted total cost",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50, 100},
		},
	)
	r.ConfigUpdatesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "printquote_config_updates_total",
			Help: "Analyzer configuration updates, by result",
		},
		[]string{"result"},
	)
	r.CacheLookupsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "printquote_geometry_cache_lookups_total",
			Help: "Geometry cache lookups, by result",
		},
		[]string{"result"},
	)
	r.CacheEntries = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "printquote_geometry_cache_entries",
			Help: "Entries currently held in the geometry cache",
		},
	)
}

func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (r *Registry) RecordAnalysis(complexity string) {
	r.AnalysesTotal.WithLabelValues(complexity).Inc()
}

func (r *Registry) RecordQuote(material, quality string, total float64) {
	r.QuotesTotal.WithLabelValues(material, quality).Inc()
	r.QuoteTotalCost.Observe(total)
}

func (r *Registry) RecordConfigUpdate(ok bool) {
	result := "ok"
	if !ok {
		result = "rejected"
	}
	r.ConfigUpdatesTotal.WithLabelValues(result).Inc()
}

func (r *Registry) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheLookupsTotal.WithLabelValues(result).Inc()
}

func (r *Registry) SetCacheEntries(n int) {
	r.CacheEntries.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
