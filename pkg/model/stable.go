package model

import "time"

const (
	StableStatusPending  = "pending"
	StableStatusApproved = "approved"
	StableStatusRejected = "rejected"
)

// Stable fields left nil fall back to engine defaults.
type Stable struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID          string    `json:"owner_id" bson:"owner_id"`
	Name             string    `json:"name" bson:"name"`
	Status           string    `json:"status" bson:"status"`
	CommissionRate   *float64  `json:"commission_rate,omitempty" bson:"commission_rate,omitempty"`
	MinLeadTimeHours *int      `json:"min_lead_time_hours,omitempty" bson:"min_lead_time_hours,omitempty"`
	TimeZone         string    `json:"time_zone,omitempty" bson:"time_zone,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

func (s *Stable) IsApproved() bool {
	return s.Status == StableStatusApproved
}

func (s *Stable) Summary() StableSummary {
	return StableSummary{ID: s.ID, Name: s.Name, OwnerID: s.OwnerID}
}

type Horse struct {
	ID           string   `json:"id,omitempty" bson:"_id,omitempty"`
	StableID     string   `json:"stable_id" bson:"stable_id"`
	Name         string   `json:"name" bson:"name"`
	IsActive     bool     `json:"is_active" bson:"is_active"`
	PricePerHour *float64 `json:"price_per_hour,omitempty" bson:"price_per_hour,omitempty"`
	// SkillLevel is the admin-assigned tier and the only one used for gating.
	SkillLevel        string `json:"skill_level,omitempty" bson:"skill_level,omitempty"`
	TrainerSkillLevel string `json:"trainer_skill_level,omitempty" bson:"trainer_skill_level,omitempty"`
}

func (h *Horse) Summary() HorseSummary {
	return HorseSummary{ID: h.ID, Name: h.Name, SkillLevel: h.SkillLevel}
}
