package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	// Business
	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_bookings_created_total",
			Help: "Total number of bookings created.",
		},
	)
	paymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_payments_recorded_total",
			Help: "Total number of payments recorded by kind.",
		},
		[]string{"kind"}, // booking, installment
	)
	travelTypes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_travel_type_classified_total",
			Help: "Number of booking classifications by travel type.",
		},
		[]string{"travel_type"},
	)
	optionAlerts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_option_alerts_sent_total",
			Help: "Total number of expiring flight option alerts sent.",
		},
	)
	bookingsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "backoffice_bookings_count",
			Help: "Current count of bookings by status.",
		},
		[]string{"status"},
	)

	// Realtime
	realtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_realtime_events_total",
			Help: "Change notifications received from the database.",
		},
		[]string{"table", "action"},
	)
	realtimeReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_realtime_reconnects_total",
			Help: "Number of times the change listener reconnected.",
		},
	)

	// Kafka
	kafkaMessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kafka_messages_sent_total",
			Help: "Total number of Kafka messages successfully sent.",
		},
	)
	kafkaErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_errors_total",
			Help: "Total number of Kafka-related errors.",
		},
		[]string{"operation"},
	)

	// Redis
	redisRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_requests_total",
			Help: "Total number of Redis requests.",
		},
		[]string{"operation"}, // get, set, delete
	)
	redisErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_errors_total",
			Help: "Total number of Redis errors.",
		},
		[]string{"operation"},
	)
	redisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_request_duration_seconds",
			Help:    "Redis request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits.",
		},
	)
	cacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses.",
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,

			bookingsCreated,
			paymentsRecorded,
			travelTypes,
			optionAlerts,
			bookingsByStatus,

			realtimeEvents,
			realtimeReconnects,

			kafkaMessagesSent,
			kafkaErrors,

			redisRequests,
			redisErrors,
			redisDuration,
			cacheHits,
			cacheMisses,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// --- HTTP ---
func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	c := strconv.Itoa(code)
	httpRequests.WithLabelValues(method, route, c).Inc()
	httpDuration.WithLabelValues(method, route, c).Observe(d.Seconds())
}

// --- Business ---
func IncBookingsCreated()             { bookingsCreated.Inc() }
func IncPaymentsRecorded(kind string) { paymentsRecorded.WithLabelValues(kind).Inc() }
func IncTravelType(t string)          { travelTypes.WithLabelValues(t).Inc() }
func IncOptionAlerts()                { optionAlerts.Inc() }

func SetBookingsByStatus(status string, count int64) {
	if count < 0 {
		count = 0
	}
	bookingsByStatus.WithLabelValues(status).Set(float64(count))
}

// --- Realtime ---
func IncRealtimeEvent(table, action string) { realtimeEvents.WithLabelValues(table, action).Inc() }
func IncRealtimeReconnect()                 { realtimeReconnects.Inc() }

// --- Kafka ---
func IncKafkaSent()           { kafkaMessagesSent.Inc() }
func IncKafkaError(op string) { kafkaErrors.WithLabelValues(op).Inc() }

// --- Redis ---
func IncRedisRequest(op string) { redisRequests.WithLabelValues(op).Inc() }
func IncRedisError(op string)   { redisErrors.WithLabelValues(op).Inc() }
func ObserveRedisDuration(op string, d time.Duration) {
	redisDuration.WithLabelValues(op).Observe(d.Seconds())
}
func IncCacheHit()  { cacheHits.Inc() }
func IncCacheMiss() { cacheMisses.Inc() }
