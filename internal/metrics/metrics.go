package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ollana_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})
	HikingIndex = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ollana_hiking_index",
		Help:    "Observed hiking suitability scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
	Recommendations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ollana_recommendations_total",
		Help: "Recommendations served by entry point",
	}, []string{"entry"})
)

func init() {
	prometheus.MustRegister(Requests, HikingIndex, Recommendations)
}
