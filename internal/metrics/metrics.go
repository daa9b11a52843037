package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ActiveConnections tracks currently open inbound TCP sessions
var ActiveConnections = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "tradepulse_active_connections",
		Help: "Number of currently open inbound tick connections",
	},
)

// ConnectionsAccepted counts accepted inbound connections
var ConnectionsAccepted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "tradepulse_connections_accepted_total",
		Help: "Total number of accepted inbound tick connections",
	},
)

// ConnectionsRejected counts connections closed for exceeding the soft limit
var ConnectionsRejected = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "tradepulse_connections_rejected_total",
		Help: "Total number of inbound connections rejected at the soft limit",
	},
)

// RecordsReceived counts raw records extracted by the framer
var RecordsReceived = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "tradepulse_records_received_total",
		Help: "Total number of raw records extracted from inbound connections",
	},
)

// ValidationRejections counts dropped records by rejection reason code
var ValidationRejections = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tradepulse_validation_rejections_total",
		Help: "Total number of records rejected by the validation engine",
	},
	[]string{"reason"},
)

// ValidationWarnings counts anomaly warnings emitted in permissive mode
var ValidationWarnings = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "tradepulse_validation_warnings_total",
		Help: "Total number of anomaly warnings on accepted records",
	},
)

// Publish pipeline metrics
var (
	TicksPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradepulse_ticks_published_total",
			Help: "Total number of enriched ticks delivered to the durable log",
		},
	)

	PublishRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradepulse_publish_retries_total",
			Help: "Total number of publish delivery retries",
		},
	)

	PublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradepulse_publish_failures_total",
			Help: "Total number of records that exhausted publish retries",
		},
	)
)

func init() {
	prometheus.MustRegister(ActiveConnections, ConnectionsAccepted, ConnectionsRejected)
	prometheus.MustRegister(RecordsReceived, ValidationRejections, ValidationWarnings)
	prometheus.MustRegister(TicksPublished, PublishRetries, PublishFailures)
}
