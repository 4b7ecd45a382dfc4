// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every Kinship collector plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

var (
	RPCRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kinship",
		Name:      "rpc_requests_total",
		Help:      "RPC calls by procedure and result code.",
	}, []string{"procedure", "code"})

	ReminderSyncs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kinship",
		Name:      "reminder_syncs_total",
		Help:      "Reminder resyncs by outcome (ok, denied, error).",
	}, []string{"result"})

	RemindersPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kinship",
		Name:      "reminders_pending",
		Help:      "Notifications installed by the last successful sync.",
	})

	NotificationsDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kinship",
		Name:      "notifications_delivered_total",
		Help:      "Notifications handed to the deliverer.",
	})

	Backups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kinship",
		Name:      "backups_total",
		Help:      "Backup operations by kind (export, restore, upload, download) and result.",
	}, []string{"op", "result"})

	ChangesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kinship",
		Name:      "change_events_dropped_total",
		Help:      "Change events dropped because a subscriber was full.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RPCRequests,
		ReminderSyncs,
		RemindersPending,
		NotificationsDelivered,
		Backups,
		ChangesDropped,
	)
}

// Result maps an error to a result label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
