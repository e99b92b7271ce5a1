package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	commandExchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geigerctl",
			Subsystem: "device",
			Name:      "exchanges_total",
			Help:      "Command exchanges by outcome.",
		},
		[]string{"device", "command", "outcome"},
	)
	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geigerctl",
			Subsystem: "device",
			Name:      "exchange_duration_seconds",
			Help:      "Command exchange duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"device", "command"},
	)
	radiationCPM = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "geigerctl",
			Subsystem: "radiation",
			Name:      "counts_per_minute",
			Help:      "Last sampled counts per minute.",
		},
		[]string{"device"},
	)
	radiationDose = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "geigerctl",
			Subsystem: "radiation",
			Name:      "microsieverts_per_hour",
			Help:      "Last sampled dose rate derived from the tube factor.",
		},
		[]string{"device"},
	)
	mqttPublishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geigerctl",
			Subsystem: "mqtt",
			Name:      "publishes_total",
			Help:      "Telemetry publishes by result.",
		},
		[]string{"topic", "success"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geigerctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"app", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geigerctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"app", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			commandExchanges,
			commandDuration,
			radiationCPM,
			radiationDose,
			mqttPublishes,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordExchange(device, command, outcome string, duration time.Duration) {
	RegisterMetrics()
	commandExchanges.WithLabelValues(device, command, outcome).Inc()
	commandDuration.WithLabelValues(device, command).Observe(duration.Seconds())
}

func RecordReading(device string, cpm, dose float64) {
	RegisterMetrics()
	radiationCPM.WithLabelValues(device).Set(cpm)
	radiationDose.WithLabelValues(device).Set(dose)
}

func RecordPublish(topic string, err error) {
	RegisterMetrics()
	mqttPublishes.WithLabelValues(topic, strconv.FormatBool(err == nil)).Inc()
}

func RecordHTTPRequest(app, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(app, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(app, method, path, statusLabel).Observe(duration.Seconds())
}
