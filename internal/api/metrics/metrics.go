// Package metrics defines and registers all custom Prometheus metrics for
// the healthcare portal API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Notification delivery metrics ─────────────────────────────────────────────

// NotificationsSentTotal counts notifications that completed a send.
// Label:
//   - mode: addressing mode ("user", "role", "all")
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications sent, by addressing mode.",
	},
	[]string{"mode"},
)

// NotificationsDeliveredLiveTotal counts audience members reached over a
// live connection at send time. Offline members are not an error and are
// not counted here.
var NotificationsDeliveredLiveTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_delivered_live_total",
		Help:      "Total number of audience members reached by live push.",
	},
)

// NotificationSendErrorsTotal counts failed sends.
// Label:
//   - reason: short failure description (e.g. "invalid_role", "store_error", "duplicate")
var NotificationSendErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_send_errors_total",
		Help:      "Total number of notification sends that failed.",
	},
	[]string{"reason"},
)

// AudienceAnomaliesTotal counts resolved recipients dropped by the
// pre-emission role re-check.
var AudienceAnomaliesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audience_anomalies_total",
		Help:      "Total number of recipients dropped because their role changed between resolution and emission.",
	},
)

// ── Connection metrics ────────────────────────────────────────────────────────

// WSConnectionsActive tracks the number of currently open websocket
// connections, joined or not.
var WSConnectionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections_active",
		Help:      "Current number of open websocket connections.",
	},
)

// BackfillReplayedTotal counts notifications replayed to reconnecting
// clients.
var BackfillReplayedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backfill_replayed_total",
		Help:      "Total number of notifications replayed to connections on join.",
	},
)
