package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/core"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Gateway metrics
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	remoteErrorsTotal *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),

		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brokergate_operations_total",
				Help: "Total gateway operations by operation, mode, and outcome",
			},
			[]string{"operation", "mode", "outcome"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "brokergate_operation_duration_seconds",
				Help:    "Gateway operation duration in seconds, upstream call included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		remoteErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brokergate_remote_errors_total",
				Help: "Upstream non-2xx responses by HTTP status",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)
	reg.MustRegister(r.operationsTotal)
	reg.MustRegister(r.operationDuration)
	reg.MustRegister(r.remoteErrorsTotal)

	return r
}

// RecordRequest records one completed HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	r.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments the in-flight gauge.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements the in-flight gauge.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// ObserveOperation implements broker.Observer.
func (r *Registry) ObserveOperation(op string, mode core.Mode, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = outcomeFor(err)
	}
	r.operationsTotal.WithLabelValues(op, mode.String(), outcome).Inc()
	r.operationDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	var remote *broker.RemoteError
	if errors.As(err, &remote) {
		r.remoteErrorsTotal.WithLabelValues(strconv.Itoa(remote.Status)).Inc()
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, core.ErrRemote):
		return "remote_error"
	case errors.Is(err, core.ErrTransport):
		return "transport_error"
	case errors.Is(err, core.ErrOrderInvalid):
		return "validation_error"
	case errors.Is(err, core.ErrConfigMissing), errors.Is(err, core.ErrConfigInvalid), errors.Is(err, core.ErrModeInvalid):
		return "config_error"
	default:
		return "error"
	}
}
