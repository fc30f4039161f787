package model

import "time"

const (
	SlotStatusOpen   = "open"
	SlotStatusBooked = "booked"
)

type AvailabilitySlot struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	HorseID       string    `json:"horse_id" bson:"horse_id"`
	StartTime     time.Time `json:"start_time" bson:"start_time"`
	EndTime       time.Time `json:"end_time" bson:"end_time"`
	Status        string    `json:"status" bson:"status"`
	ReservationID string    `json:"reservation_id,omitempty" bson:"reservation_id,omitempty"`
}
