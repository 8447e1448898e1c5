package vqleval

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Facet label values of vqleval_facet_matches_total.
const (
	FacetSQL    = "sql"
	FacetVis    = "vis"
	FacetBin    = "bin"
	FacetAll    = "all"
	FacetBinSQL = "bin_sql"
)

// Metrics counts evaluated samples.
type Metrics struct {
	samples        *prometheus.CounterVec
	facetMatches   *prometheus.CounterVec
	sampleDuration prometheus.Histogram
}

// NewMetrics registers the evaluation metrics with r. A nil r leaves them
// unregistered.
func NewMetrics(r prometheus.Registerer) *Metrics {
	m := &Metrics{
		samples: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "vqleval_samples_total",
			Help: "Total number of evaluated samples by status.",
		}, []string{"status"}),
		facetMatches: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "vqleval_facet_matches_total",
			Help: "Total number of samples credited per facet.",
		}, []string{"facet"}),
		sampleDuration: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
			Name:    "vqleval_sample_duration_seconds",
			Help:    "Time taken to evaluate one sample.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	for _, s := range statusNames {
		m.samples.WithLabelValues(s)
	}
	for _, f := range []string{FacetSQL, FacetVis, FacetBin, FacetAll, FacetBinSQL} {
		m.facetMatches.WithLabelValues(f)
	}
	return m
}

func (m *Metrics) observe(o Outcome) {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(o.Status.String()).Inc()
	m.sampleDuration.Observe(o.Duration.Seconds())
	for facet, ok := range map[string]bool{
		FacetSQL:    o.SQLMatch,
		FacetVis:    o.VisMatch,
		FacetBin:    o.BinMatch,
		FacetAll:    o.AllMatch,
		FacetBinSQL: o.BinSQLMatch,
	} {
		if ok {
			m.facetMatches.WithLabelValues(facet).Inc()
		}
	}
}
