package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stablebook"

// Outcome label values shared by every collector.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeDropped  = "dropped"
)

type ReservationMetrics struct {
	batches       *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	created       prometheus.Counter
	notifications *prometheus.CounterVec
}

type KafkaMetrics struct {
	messages *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	reservationOnce sync.Once
	reservationReg  *ReservationMetrics

	kafkaOnce sync.Once
	kafkaReg  *KafkaMetrics

	httpOnce sync.Once
	httpReg  *HTTPMetrics
)

// Reservations returns the lazily registered booking engine collectors.
func Reservations() *ReservationMetrics {
	reservationOnce.Do(func() {
		reservationReg = &ReservationMetrics{
			batches: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reservations",
				Name:      "batches_total",
				Help:      "Batch reservation requests segmented by outcome and error code.",
			}, []string{"outcome", "code"}),
			batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "reservations",
				Name:      "batch_duration_seconds",
				Help:      "Latency of batch reservation requests including the transaction.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"outcome"}),
			created: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reservations",
				Name:      "created_total",
				Help:      "Reservations committed by successful batches.",
			}),
			notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "dispatched_total",
				Help:      "Per-recipient reservation notifications segmented by outcome.",
			}, []string{"outcome"}),
		}
		prometheus.MustRegister(
			reservationReg.batches,
			reservationReg.batchDuration,
			reservationReg.created,
			reservationReg.notifications,
		)
	})
	return reservationReg
}

// ObserveBatch records a finished batch. code is the error code for failed
// batches and empty on success.
func (m *ReservationMetrics) ObserveBatch(outcome, code string, created int, duration time.Duration) {
	if m == nil {
		return
	}
	if code == "" {
		code = "none"
	}
	m.batches.WithLabelValues(outcome, code).Inc()
	m.batchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if created > 0 {
		m.created.Add(float64(created))
	}
}

func (m *ReservationMetrics) Notification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

// Kafka returns the lazily registered producer and consumer collectors.
func Kafka() *KafkaMetrics {
	kafkaOnce.Do(func() {
		kafkaReg = &KafkaMetrics{
			messages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "kafka",
				Name:      "messages_total",
				Help:      "Kafka messages published or consumed segmented by topic and outcome.",
			}, []string{"direction", "topic", "outcome"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "kafka",
				Name:      "operation_duration_seconds",
				Help:      "Latency of Kafka publish and handle operations.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"direction", "topic"}),
		}
		prometheus.MustRegister(kafkaReg.messages, kafkaReg.duration)
	})
	return kafkaReg
}

func (m *KafkaMetrics) Observe(direction, topic string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	if topic == "" {
		topic = "unknown"
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.messages.WithLabelValues(direction, topic, outcome).Inc()
	m.duration.WithLabelValues(direction, topic).Observe(duration.Seconds())
}

// HTTP returns the lazily registered request collectors.
func HTTP() *HTTPMetrics {
	httpOnce.Do(func() {
		httpReg = &HTTPMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests processed segmented by method and status.",
			}, []string{"method", "status"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
		}
		prometheus.MustRegister(httpReg.requests, httpReg.duration)
	})
	return httpReg
}

func (m *HTTPMetrics) Observe(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method).Observe(duration.Seconds())
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
