package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestIsReservationStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "cancelled", "completed"} {
		if !IsReservationStatus(s) {
			t.Errorf("IsReservationStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "Confirmed", "booked"} {
		if IsReservationStatus(s) {
			t.Errorf("IsReservationStatus(%q) = true", s)
		}
	}
}

func TestIsKnownRole(t *testing.T) {
	if !IsKnownRole(RoleRider) || !IsKnownRole(RoleStableOwner) || !IsKnownRole(RoleAdmin) {
		t.Errorf("known roles rejected")
	}
	if IsKnownRole("trainer") {
		t.Errorf("unknown role accepted")
	}
}

func TestReservationDetail_JSONFlattensReservation(t *testing.T) {
	detail := ReservationDetail{
		Reservation: Reservation{
			ID:        "r1",
			HorseID:   "h1",
			StartTime: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
			Status:    ReservationStatusConfirmed,
		},
		Horse: HorseSummary{ID: "h1", Name: "Comet"},
	}

	data, err := json.Marshal(detail)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, want := range []string{`"id":"r1"`, `"status":"confirmed"`, `"horse":{"id":"h1","name":"Comet"}`} {
		if !strings.Contains(body, want) {
			t.Errorf("json %s missing %s", body, want)
		}
	}
	if strings.Contains(body, "promo_code_id") {
		t.Errorf("empty promo code should be omitted: %s", body)
	}
}

func TestStable_IsApproved(t *testing.T) {
	if (&Stable{Status: StableStatusPending}).IsApproved() {
		t.Errorf("pending stable reported approved")
	}
	s := &Stable{ID: "s1", Name: "Oak Farm", OwnerID: "o1", Status: StableStatusApproved}
	if !s.IsApproved() {
		t.Errorf("approved stable not approved")
	}
	if got := s.Summary(); got.OwnerID != "o1" || got.Name != "Oak Farm" {
		t.Errorf("Summary() = %+v", got)
	}
}
