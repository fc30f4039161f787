package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReservations_ObserveBatch(t *testing.T) {
	m := Reservations()
	if m != Reservations() {
		t.Fatalf("Reservations() should return the same registry on every call")
	}

	before := testutil.ToFloat64(m.created)
	beforeRejected := testutil.ToFloat64(m.batches.WithLabelValues(OutcomeRejected, "FORBIDDEN"))

	m.ObserveBatch(OutcomeSuccess, "", 3, 20*time.Millisecond)
	m.ObserveBatch(OutcomeRejected, "FORBIDDEN", 0, time.Millisecond)

	if got := testutil.ToFloat64(m.created) - before; got != 3 {
		t.Errorf("created delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.batches.WithLabelValues(OutcomeRejected, "FORBIDDEN")) - beforeRejected; got != 1 {
		t.Errorf("rejected delta = %v, want 1", got)
	}
}

func TestNilReceiversAreSafe(t *testing.T) {
	var r *ReservationMetrics
	var k *KafkaMetrics
	var h *HTTPMetrics

	r.ObserveBatch(OutcomeSuccess, "", 1, time.Second)
	r.Notification(OutcomeError)
	k.Observe("publish", "topic", nil, time.Second)
	h.Observe(http.MethodGet, http.StatusOK, time.Second)
}

func TestKafka_ObserveOutcome(t *testing.T) {
	m := Kafka()
	before := testutil.ToFloat64(m.messages.WithLabelValues("publish", "reservation-notifications", OutcomeError))

	m.Observe("publish", "reservation-notifications", errors.New("broker down"), time.Millisecond)

	after := testutil.ToFloat64(m.messages.WithLabelValues("publish", "reservation-notifications", OutcomeError))
	if after-before != 1 {
		t.Errorf("error delta = %v, want 1", after-before)
	}
}

func TestHandler_ExposesCollectors(t *testing.T) {
	HTTP().Observe(http.MethodPost, http.StatusCreated, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "stablebook_http_requests_total") {
		t.Errorf("metrics output missing http request counter")
	}
}
