package push

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
)

var (
	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_deliveries_total",
			Help: "Terminal per-URL delivery outcomes.",
		},
		[]string{"outcome"},
	)

	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_delivery_attempts_total",
			Help: "Individual delivery attempts by result.",
		},
		[]string{"result"},
	)

	deliveryAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "push_delivery_attempts_per_url",
			Help:    "Attempts needed to reach a terminal state for one URL.",
			Buckets: []float64{1, 2, 3, 5, 10},
		},
	)
)
