package model

import "time"

type PromoCode struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty"`
	Code      string `json:"code" bson:"code"`
	UsedCount int    `json:"used_count" bson:"used_count"`
}

const (
	OverrideStatusPending  = "pending"
	OverrideStatusApproved = "approved"
	OverrideStatusRejected = "rejected"
)

// SkillOverrideRequest lets a rider book a horse above their tier once approved.
type SkillOverrideRequest struct {
	ID      string `json:"id,omitempty" bson:"_id,omitempty"`
	RiderID string `json:"rider_id" bson:"rider_id"`
	HorseID string `json:"horse_id" bson:"horse_id"`
	Status  string `json:"status" bson:"status"`
}

// ConfigCashPaymentTrustedOnly restricts deferred payment to trusted riders.
const ConfigCashPaymentTrustedOnly = "cash_payment_trusted_only"

type SystemConfig struct {
	Key   string `json:"key" bson:"_id"`
	Value any    `json:"value" bson:"value"`
}

// HorseLock is the per-horse serialization document written by every
// transaction that books the horse.
type HorseLock struct {
	HorseID  string    `json:"horse_id" bson:"_id"`
	Seq      int64     `json:"seq" bson:"seq"`
	LockedAt time.Time `json:"locked_at" bson:"locked_at"`
}

type Review struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	ReservationID string    `json:"reservation_id" bson:"reservation_id"`
	Rating        int       `json:"rating" bson:"rating"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

type RideScore struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	ReservationID string    `json:"reservation_id" bson:"reservation_id"`
	Score         int       `json:"score" bson:"score"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}
