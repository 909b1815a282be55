package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hybridnet"

// PrometheusHooks implements every hook interface of this package with
// Prometheus collectors.
type PrometheusHooks struct {
	searches       *prometheus.CounterVec
	searchDuration prometheus.Histogram
	hybridization  prometheus.Histogram
	branches       prometheus.Counter
	prunes         prometheus.Counter
	reductions     *prometheus.CounterVec
	memoLookups    *prometheus.CounterVec

	parses      *prometheus.CounterVec
	exports     *prometheus.CounterVec
	cacheEvents *prometheus.CounterVec
	cacheBytes  prometheus.Counter

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// It panics if a collector is already registered, like prometheus.MustRegister.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Number of completed searches by outcome",
			},
			[]string{"outcome"},
		),
		searchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Duration of a hybridization search",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		hybridization: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "hybridization_number",
				Help:      "Hybridization numbers found",
				Buckets:   prometheus.LinearBuckets(0, 1, 12),
			},
		),
		branches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "branches_total",
				Help:      "Candidate taxa tried as reticulations",
			},
		),
		prunes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prunes_total",
				Help:      "Branches cut off by the budget",
			},
		),
		reductions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reductions_total",
				Help:      "Applications of a reduction rule",
			},
			[]string{"kind"},
		),
		memoLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "memo_lookups_total",
				Help:      "Memo lookups by result",
			},
			[]string{"result"},
		),
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parses_total",
				Help:      "Tree pairs parsed by outcome",
			},
			[]string{"outcome"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Result exports by format",
			},
			[]string{"format"},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_events_total",
				Help:      "Result cache events",
			},
			[]string{"key_type", "event"},
		),
		cacheBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_written_bytes_total",
				Help:      "Bytes written to the result cache",
			},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP API responses by route and status",
			},
			[]string{"method", "route", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP API request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		h.searches, h.searchDuration, h.hybridization, h.branches, h.prunes,
		h.reductions, h.memoLookups, h.parses, h.exports, h.cacheEvents,
		h.cacheBytes, h.requests, h.requestDuration,
	)
	return h
}

func (h *PrometheusHooks) OnSearchStart(context.Context, int, int) {}

func (h *PrometheusHooks) OnSearchComplete(_ context.Context, hyb, _ int, d time.Duration, err error) {
	h.searchDuration.Observe(d.Seconds())
	if err != nil {
		h.searches.WithLabelValues("error").Inc()
		return
	}
	h.searches.WithLabelValues("solved").Inc()
	h.hybridization.Observe(float64(hyb))
}

func (h *PrometheusHooks) OnBranch(context.Context, int, int) { h.branches.Inc() }

func (h *PrometheusHooks) OnPrune(context.Context, int) { h.prunes.Inc() }

func (h *PrometheusHooks) OnReduction(_ context.Context, kind string) {
	h.reductions.WithLabelValues(kind).Inc()
}

func (h *PrometheusHooks) OnMemo(_ context.Context, hit bool) {
	if hit {
		h.memoLookups.WithLabelValues("hit").Inc()
	} else {
		h.memoLookups.WithLabelValues("miss").Inc()
	}
}

func (h *PrometheusHooks) OnParseStart(context.Context, string) {}

func (h *PrometheusHooks) OnParseComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	if err != nil {
		h.parses.WithLabelValues("error").Inc()
		return
	}
	h.parses.WithLabelValues("ok").Inc()
}

func (h *PrometheusHooks) OnExportStart(context.Context, []string) {}

func (h *PrometheusHooks) OnExportComplete(_ context.Context, formats []string, _ time.Duration, err error) {
	if err != nil {
		return
	}
	for _, f := range formats {
		h.exports.WithLabelValues(f).Inc()
	}
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ SearchHooks   = (*PrometheusHooks)(nil)
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
