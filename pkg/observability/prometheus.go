package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements every hook interface on Prometheus collectors.
type PrometheusHooks struct {
	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	items         *prometheus.HistogramVec
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	apiRequests   *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
	widgets       prometheus.Gauge
	selections    *prometheus.CounterVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// Registering twice with the same registerer panics.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		stageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dendro_pipeline_stage_total",
				Help: "Pipeline stage executions by outcome",
			},
			[]string{"stage", "status"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dendro_pipeline_stage_duration_seconds",
				Help:    "Pipeline stage latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		items: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dendro_cluster_items",
				Help:    "Number of items per clustering run",
				Buckets: prometheus.ExponentialBuckets(2, 2, 10),
			},
			[]string{"linkage"},
		),
		cacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dendro_cache_operations_total",
				Help: "Cache lookups and writes",
			},
			[]string{"stage", "op"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dendro_cache_written_bytes_total",
				Help: "Bytes written to the cache",
			},
			[]string{"stage"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dendro_fetch_requests_total",
				Help: "Remote matrix fetches",
			},
			[]string{"host", "status"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dendro_fetch_duration_seconds",
				Help:    "Remote matrix fetch latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dendro_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"route", "method", "status"},
		),
		apiDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dendro_api_duration_seconds",
				Help:    "API request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		widgets: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dendro_widgets_live",
				Help: "Widgets currently held by the server",
			},
		),
		selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dendro_widget_selections_total",
				Help: "Widget selection changes",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(
		h.stageTotal, h.stageDuration, h.items,
		h.cacheOps, h.cacheBytes,
		h.fetches, h.fetchDuration,
		h.apiRequests, h.apiDuration,
		h.widgets, h.selections,
	)
	return h
}

// Install registers h as the pipeline, cache, HTTP and widget hooks.
func (h *PrometheusHooks) Install() {
	Register(Hooks{Pipeline: h, Cache: h, HTTP: h, Widget: h})
}

// ObserveRequest records one served API request.
func (h *PrometheusHooks) ObserveRequest(route, method string, status int, d time.Duration) {
	h.apiRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	h.apiDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (h *PrometheusHooks) stage(stage string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.stageTotal.WithLabelValues(stage, status).Inc()
	h.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnLoadStart(context.Context, string) {}

func (h *PrometheusHooks) OnLoadComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	h.stage("load", d, err)
}

func (h *PrometheusHooks) OnClusterStart(_ context.Context, linkage string, items int) {
	h.items.WithLabelValues(linkage).Observe(float64(items))
}

func (h *PrometheusHooks) OnClusterComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	h.stage("cluster", d, err)
}

func (h *PrometheusHooks) OnLayoutStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	h.stage("layout", d, err)
}

func (h *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	h.stage("render", d, err)
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.fetches.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.fetchDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.fetches.WithLabelValues(host, "error").Inc()
}

func (h *PrometheusHooks) OnWidgetCreated(context.Context, string, int) { h.widgets.Inc() }

func (h *PrometheusHooks) OnSelection(_ context.Context, _ string, size int) {
	kind := "select"
	if size == 0 {
		kind = "clear"
	}
	h.selections.WithLabelValues(kind).Inc()
}

func (h *PrometheusHooks) OnWidgetDestroyed(context.Context, string) { h.widgets.Dec() }

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
	_ WidgetHooks   = (*PrometheusHooks)(nil)
)
