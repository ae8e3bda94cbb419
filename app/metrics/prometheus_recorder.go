package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	cacheResults  *prom.CounterVec
	sitemapURLs   prom.Gauge
}

// NewPrometheusRecorder constructs and registers the sitemap metrics on reg,
// or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		registry: reg,
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitemap",
			Name:      "build_duration_seconds",
			Help:      "Duration of full sitemap builds",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitemap",
			Name:      "build_outcomes_total",
			Help:      "Sitemap builds by outcome",
		}, []string{"outcome"}),
		cacheResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitemap",
			Name:      "cache_results_total",
			Help:      "Sitemap cache lookups by result",
		}, []string{"result"}),
		sitemapURLs: prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitemap",
			Name:      "urls",
			Help:      "Number of <url> entries in the last built sitemap",
		}),
	}

	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.cacheResults, pr.sitemapURLs)

	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncCacheResult(hit bool) {
	if p == nil || p.cacheResults == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) SetSitemapURLs(n int) {
	if p == nil || p.sitemapURLs == nil {
		return
	}
	p.sitemapURLs.Set(float64(n))
}

// Handler serves the metrics of the recorder's registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
