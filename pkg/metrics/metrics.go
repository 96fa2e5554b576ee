// Package metrics defines the Prometheus metric collectors for the
// embedded engine and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        prometheus.Histogram
	SearchResultsCount   prometheus.Histogram
	Stage1CandidateCount prometheus.Histogram
	Stage2CandidateCount prometheus.Histogram
	BuildPassDuration    *prometheus.HistogramVec
	BuildsTotal          *prometheus.CounterVec
	DocsIndexedTotal     prometheus.Counter
	DocumentCount        prometheus.Gauge
	TermCount            prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infidex_search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "infidex_search_latency_seconds",
				Help:    "Search query latency in seconds, end to end through both ranking stages.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "infidex_search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		Stage1CandidateCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "infidex_stage1_candidate_count",
				Help:    "Number of candidates VectorModel.Search hands to Stage 2 per query.",
				Buckets: []float64{0, 10, 50, 100, 250, 500, 1000},
			},
		),
		Stage2CandidateCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "infidex_stage2_candidate_count",
				Help:    "Number of candidates CoverageEngine actually rescored per query.",
				Buckets: []float64{0, 10, 50, 100, 250, 500, 1000},
			},
		),
		BuildPassDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "infidex_build_pass_duration_seconds",
				Help:    "Duration of BuildInvertedLists runs by pass label (\"combined\" covers both normalization passes).",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"pass"},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infidex_builds_total",
				Help: "Total BuildInvertedLists invocations by outcome (ok, cancelled, error).",
			},
			[]string{"outcome"},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "infidex_docs_indexed_total",
				Help: "Total documents indexed.",
			},
		),
		DocumentCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "infidex_document_count",
				Help: "Current live document count.",
			},
		),
		TermCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "infidex_term_count",
				Help: "Current distinct term count.",
			},
		),
	}

	prometheus.MustRegister(
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.Stage1CandidateCount,
		m.Stage2CandidateCount,
		m.BuildPassDuration,
		m.BuildsTotal,
		m.DocsIndexedTotal,
		m.DocumentCount,
		m.TermCount,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
