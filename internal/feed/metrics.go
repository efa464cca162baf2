package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_subscribers",
			Help: "Number of active change feed subscriptions",
		},
	)

	FeedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_total",
			Help: "Total number of change events broadcast to subscribers",
		},
		[]string{"type"},
	)

	FeedGapsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_gaps_total",
			Help: "Total number of subscriptions dropped because the subscriber fell behind",
		},
	)

	FeedPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_publish_total",
			Help: "Total number of change events published to the transport",
		},
		[]string{"transport", "result"},
	)
)
