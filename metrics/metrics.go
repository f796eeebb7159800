package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK         = "ok"
	OutcomeFetchError = "fetch_error"
	OutcomeParseError = "parse_error"
	OutcomeError      = "error"
	OutcomeInvalid    = "invalid"
)

type Registry struct {
	reg             *prometheus.Registry
	UpstreamFetch   *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
	Searches        *prometheus.CounterVec
	SearchResults   prometheus.Histogram
	Leads           *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	upstreamFetch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dealsearch_upstream_fetch_total",
		Help: "Upstream source loads by source and outcome.",
	}, []string{"source", "outcome"})
	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dealsearch_upstream_fetch_seconds",
		Help:    "Time to fetch and map one upstream source.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dealsearch_search_total",
		Help: "Search pipeline runs by outcome.",
	}, []string{"outcome"})
	searchResults := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dealsearch_search_results",
		Help:    "Number of results returned per search.",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})
	leads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dealsearch_leads_total",
		Help: "Lead submissions by outcome.",
	}, []string{"outcome"})

	r.MustRegister(upstreamFetch, upstreamLatency, searches, searchResults, leads)
	return &Registry{
		reg:             r,
		UpstreamFetch:   upstreamFetch,
		UpstreamLatency: upstreamLatency,
		Searches:        searches,
		SearchResults:   searchResults,
		Leads:           leads,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
