package model

// PaymentMethodCash defers payment to the stable visit.
const PaymentMethodCash = "cash"

type BatchRequest struct {
	StableID      string      `json:"stable_id" validate:"required,mongodb"`
	StartTime     string      `json:"start_time" validate:"required"`
	EndTime       string      `json:"end_time" validate:"required"`
	PaymentMethod string      `json:"payment_method" validate:"required,payment_method"`
	PromoCodeID   string      `json:"promo_code_id,omitempty" validate:"omitempty,mongodb"`
	Riders        []BatchPair `json:"riders" validate:"required,min=1,dive"`
}

type BatchPair struct {
	HorseID string `json:"horse_id" validate:"required,mongodb"`
	RiderID string `json:"rider_id" validate:"required,mongodb"`
}

const EventReservationCreated = "reservation.created"

// ReservationNotification is published once per recipient per reservation.
type ReservationNotification struct {
	RecipientID string            `json:"recipient_id"`
	BatchID     string            `json:"batch_id"`
	Reservation ReservationDetail `json:"reservation"`
}
