package alerts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quattrini",
			Name:      "alerts_emitted_total",
			Help:      "Alerts emitted by trigger kind",
		},
		[]string{"trigger"},
	)
	alertsRetired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quattrini",
			Name:      "alerts_retired_total",
			Help:      "Alerts removed from the live queue",
		},
		[]string{"reason"},
	)
	queueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quattrini",
			Name:      "alerts_queued",
			Help:      "Alerts currently held in the live queue",
		},
	)
)
