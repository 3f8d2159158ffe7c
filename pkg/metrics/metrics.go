package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "equiprent"

// Metrics owns a private registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	availabilityChecks   *prometheus.CounterVec
	availabilityDuration *prometheus.HistogramVec

	reservations         *prometheus.CounterVec
	reservationConflicts *prometheus.CounterVec
	lockContention       *prometheus.CounterVec
	calendarFailures     *prometheus.CounterVec

	kafkaMessages *prometheus.CounterVec
	kafkaDuration *prometheus.HistogramVec
}

func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests by route, method and status.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		availabilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "availability_checks_total",
			Help:        "Availability checks by equipment type and outcome.",
			ConstLabels: constLabels,
		}, []string{"equipment_type", "outcome"}),
		availabilityDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "availability_check_duration_seconds",
			Help:        "Latency of the combined ledger and calendar read.",
			ConstLabels: constLabels,
			Buckets:     []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"equipment_type"}),
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "reservations_total",
			Help:        "Ledger writes by action.",
			ConstLabels: constLabels,
		}, []string{"equipment_type", "action"}),
		reservationConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "reservation_conflicts_total",
			Help:        "Reservations rejected because the slot was taken.",
			ConstLabels: constLabels,
		}, []string{"equipment_type"}),
		lockContention: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "reservation_lock_contention_total",
			Help:        "Reservation lock acquisitions that found the unit busy.",
			ConstLabels: constLabels,
		}, []string{"equipment_type"}),
		calendarFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "calendar_failures_total",
			Help:        "External calendar calls that failed.",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		kafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "kafka_messages_total",
			Help:        "Kafka messages by direction, topic and result.",
			ConstLabels: constLabels,
		}, []string{"direction", "topic", "result"}),
		kafkaDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "kafka_message_duration_seconds",
			Help:        "Kafka publish and handle latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"direction", "topic"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.availabilityChecks, m.availabilityDuration,
		m.reservations, m.reservationConflicts, m.lockContention, m.calendarFailures,
		m.kafkaMessages, m.kafkaDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveAvailability records one check; outcome is free, busy or error.
func (m *Metrics) ObserveAvailability(equipmentType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.availabilityChecks.WithLabelValues(equipmentType, outcome).Inc()
	m.availabilityDuration.WithLabelValues(equipmentType).Observe(d.Seconds())
}

func (m *Metrics) ReservationWritten(equipmentType, action string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(equipmentType, action).Inc()
}

func (m *Metrics) ReservationConflict(equipmentType string) {
	if m == nil {
		return
	}
	m.reservationConflicts.WithLabelValues(equipmentType).Inc()
}

func (m *Metrics) LockContended(equipmentType string) {
	if m == nil {
		return
	}
	m.lockContention.WithLabelValues(equipmentType).Inc()
}

func (m *Metrics) CalendarFailure(operation string) {
	if m == nil {
		return
	}
	m.calendarFailures.WithLabelValues(operation).Inc()
}

// ObserveKafka records a publish or consume; direction is "produce" or "consume".
func (m *Metrics) ObserveKafka(direction, topic string, err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.kafkaMessages.WithLabelValues(direction, topic, result).Inc()
	m.kafkaDuration.WithLabelValues(direction, topic).Observe(d.Seconds())
}
