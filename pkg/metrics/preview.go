package metrics

import "github.com/prometheus/client_golang/prometheus"

// PreviewMetrics records storefront preview activity.
type PreviewMetrics struct {
	recomputes prometheus.Counter
	cacheHits  *prometheus.CounterVec
}

// NewPreviewMetrics registers the storefront preview metrics on the provided
// registerer.
func NewPreviewMetrics(reg prometheus.Registerer) *PreviewMetrics {
	if reg == nil {
		return &PreviewMetrics{}
	}
	recomputes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "preview_recomputes_total",
		Help: "Preview recomputations performed.",
	})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "template_cache_requests_total",
		Help: "Template cache lookups partitioned by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(recomputes, cacheHits)
	return &PreviewMetrics{
		recomputes: recomputes,
		cacheHits:  cacheHits,
	}
}

// IncRecompute increments the recompute counter.
func (p *PreviewMetrics) IncRecompute() {
	if p == nil || p.recomputes == nil {
		return
	}
	p.recomputes.Inc()
}

// IncCacheHit records a template cache hit.
func (p *PreviewMetrics) IncCacheHit() {
	if p == nil || p.cacheHits == nil {
		return
	}
	p.cacheHits.WithLabelValues("hit").Inc()
}

// IncCacheMiss records a template cache miss.
func (p *PreviewMetrics) IncCacheMiss() {
	if p == nil || p.cacheHits == nil {
		return
	}
	p.cacheHits.WithLabelValues("miss").Inc()
}
