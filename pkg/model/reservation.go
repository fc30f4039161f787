package model

import (
	"slices"
	"time"
)

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusCompleted = "completed"
)

// ActiveReservationStatuses hold a horse for their window.
var ActiveReservationStatuses = []string{ReservationStatusPending, ReservationStatusConfirmed}

var reservationStatuses = []string{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusCancelled,
	ReservationStatusCompleted,
}

func IsReservationStatus(status string) bool {
	return slices.Contains(reservationStatuses, status)
}

type Reservation struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty"`
	RiderID          string    `json:"rider_id" bson:"rider_id"`
	StableID         string    `json:"stable_id" bson:"stable_id"`
	HorseID          string    `json:"horse_id" bson:"horse_id"`
	StartTime        time.Time `json:"start_time" bson:"start_time"`
	EndTime          time.Time `json:"end_time" bson:"end_time"`
	Status           string    `json:"status" bson:"status"`
	TotalPrice       float64   `json:"total_price" bson:"total_price"`
	CommissionAmount float64   `json:"commission_amount" bson:"commission_amount"`
	PromoCodeID      string    `json:"promo_code_id,omitempty" bson:"promo_code_id,omitempty"`
	PaymentMethod    string    `json:"payment_method" bson:"payment_method"`
	BatchID          string    `json:"batch_id" bson:"batch_id"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

// ReservationView is a list item with feedback flags derived at read time.
type ReservationView struct {
	Reservation   `bson:",inline"`
	HasReview     bool `json:"has_review" bson:"has_review"`
	AlreadyScored bool `json:"already_scored" bson:"already_scored"`
}

// ReservationDetail is what a successful batch returns per pair.
type ReservationDetail struct {
	Reservation
	Rider  RiderSummary  `json:"rider"`
	Horse  HorseSummary  `json:"horse"`
	Stable StableSummary `json:"stable"`
}

type RiderSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SkillTier string `json:"skill_tier"`
}

type HorseSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SkillLevel string `json:"skill_level,omitempty"`
}

type StableSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}
