// Package metrics defines the Prometheus collectors for the event relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay metrics
var (
	// EventsPublishedTotal tracks published events by outcome
	// ("delivered" when at least one listener was active, "unheard" when none).
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_published_total",
			Help: "Total events published, by delivery outcome",
		},
		[]string{"outcome"},
	)

	// PublishFanout tracks how many listeners each publish reached.
	PublishFanout = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_publish_fanout",
			Help:    "Number of listeners reached per publish",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// SubscribersConnected tracks currently connected subscribers by transport.
	SubscribersConnected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_subscribers_connected",
			Help: "Currently connected subscribers by transport",
		},
		[]string{"transport"},
	)

	// SubscriberLagTotal tracks streams terminated because the subscriber
	// fell behind the topic buffer.
	SubscriberLagTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_subscriber_lag_total",
			Help: "Streams terminated due to subscriber lag, by transport",
		},
		[]string{"transport"},
	)

	// KeepAlivesSentTotal tracks keep-alive frames sent to idle streams.
	KeepAlivesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_keepalives_sent_total",
			Help: "Keep-alive frames sent to idle streams, by transport",
		},
		[]string{"transport"},
	)
)

// Connection limit metrics
var (
	// ConnectionsRejectedTotal tracks streaming connections rejected by
	// the connection limits, by reason.
	ConnectionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_connections_rejected_total",
			Help: "Streaming connections rejected by connection limits, by reason",
		},
		[]string{"reason"},
	)
)
