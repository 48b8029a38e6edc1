package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tutor"

// PrometheusRecorder implements Recorder on a dedicated registry.
type PrometheusRecorder struct {
	registry      *prom.Registry
	pageRenders   *prom.CounterVec
	loadDuration  prom.Histogram
	loadedPages   prom.Gauge
	skippedPages  prom.Gauge
	buildDuration prom.Histogram
	buildOutcomes *prom.CounterVec
	rateLimited   prom.Counter
}

// NewPrometheusRecorder creates the collectors and registers them, together
// with the Go runtime and process collectors, on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	pr := &PrometheusRecorder{
		registry: prom.NewRegistry(),
		pageRenders: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Rendered pages by route and result",
		}, []string{"route", "result"}),
		loadDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "content_load_duration_seconds",
			Help:      "Time spent loading and parsing content files",
			Buckets:   prom.DefBuckets,
		}),
		loadedPages: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "content_pages",
			Help:      "Pages returned by the last content load",
		}),
		skippedPages: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "content_pages_skipped",
			Help:      "Files skipped by the last content load",
		}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Static build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Static builds by outcome",
		}, []string{"outcome"}),
		rateLimited: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Page requests rejected with 429",
		}),
	}

	pr.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		pr.pageRenders,
		pr.loadDuration,
		pr.loadedPages,
		pr.skippedPages,
		pr.buildDuration,
		pr.buildOutcomes,
		pr.rateLimited,
	)
	return pr
}

func (pr *PrometheusRecorder) IncPageRender(route Route, result Result) {
	pr.pageRenders.WithLabelValues(string(route), string(result)).Inc()
}

func (pr *PrometheusRecorder) ObserveContentLoad(d time.Duration, pages int, failed int) {
	pr.loadDuration.Observe(d.Seconds())
	pr.loadedPages.Set(float64(pages))
	pr.skippedPages.Set(float64(failed))
}

func (pr *PrometheusRecorder) ObserveBuild(d time.Duration, success bool) {
	pr.buildDuration.Observe(d.Seconds())
	outcome := "success"
	if !success {
		outcome = "failed"
	}
	pr.buildOutcomes.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) IncRateLimited() { pr.rateLimited.Inc() }

// Registry exposes the underlying registry (tests gather from it).
func (pr *PrometheusRecorder) Registry() *prom.Registry { return pr.registry }

// Handler serves the registry in the Prometheus exposition format.
func (pr *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(pr.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
