package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Simulation metrics
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartbin_simulation_ticks_total",
			Help: "Total number of simulation ticks executed",
		},
	)

	BinsSimulated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartbin_bins_simulated_total",
			Help: "Total number of bin fill-level updates performed by the simulation",
		},
	)

	CollectionsSimulated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartbin_collections_simulated_total",
			Help: "Total number of simulated collections (bin reached 100% and was reset)",
		},
	)

	TickErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartbin_tick_errors_total",
			Help: "Total number of per-bin failures during simulation ticks",
		},
	)

	// Alert metrics
	AlertsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartbin_alerts_created_total",
			Help: "Total number of collection alerts created",
		},
	)

	// Email metrics
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartbin_emails_sent_total",
			Help: "Total number of emails dispatched",
		},
		[]string{"kind", "status"}, // kind: confirmation, admin_alert, admin_registration; status: sent, failed
	)

	// Registration metrics
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartbin_registrations_total",
			Help: "Total number of registration attempts",
		},
		[]string{"status"}, // status: created, conflict, invalid, error
	)
)
