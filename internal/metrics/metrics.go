// Package metrics holds the Prometheus collectors of the feed backend. They are
// registered on the default registry and served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_published_total",
			Help: "Feed events handed to the broadcast channel",
		},
		[]string{"action"},
	)

	BroadcastDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_broadcast_dropped_total",
			Help: "Feed events or sessions dropped by the broadcast path",
		},
		[]string{"reason"},
	)

	WebsocketSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_websocket_sessions",
			Help: "Currently connected websocket sessions",
		},
	)

	AssetCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_asset_cleanup_failures_total",
			Help: "Asset deletes that failed on the first attempt",
		},
	)

	AssetCleanupRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_asset_cleanup_retries_total",
			Help: "Retried asset deletes by outcome",
		},
		[]string{"result"},
	)
)

// Drop reasons.
const (
	DropQueueFull   = "queue_full"
	DropSlowSession = "slow_session"
	DropEncode      = "encode_error"
	DropRelay       = "relay_full"
)
