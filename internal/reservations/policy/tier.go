package policy

import (
	"strings"

	"stablebook/pkg/model"
)

type SkillTier int

const (
	Beginner SkillTier = iota
	Intermediate
	Advanced
)

const (
	IntermediateMinPoints = 1301
	AdvancedMinPoints     = 1701
)

func (t SkillTier) String() string {
	switch t {
	case Advanced:
		return "advanced"
	case Intermediate:
		return "intermediate"
	default:
		return "beginner"
	}
}

func RiderTier(rankPoints int) SkillTier {
	switch {
	case rankPoints >= AdvancedMinPoints:
		return Advanced
	case rankPoints >= IntermediateMinPoints:
		return Intermediate
	default:
		return Beginner
	}
}

// HorseTier reads the admin-assigned level. Unset or unknown levels are
// Beginner; the trainer-assessed level is never consulted.
func HorseTier(horse *model.Horse) SkillTier {
	switch strings.ToLower(strings.TrimSpace(horse.SkillLevel)) {
	case "advanced":
		return Advanced
	case "intermediate":
		return Intermediate
	default:
		return Beginner
	}
}

// CanRide reports whether a rider tier may ride a horse tier without an
// approved override.
func CanRide(rider, horse SkillTier) bool {
	return rider >= horse
}

// CheckSkill returns a skill_mismatch violation unless the rider is eligible
// or holds an approved override for this horse.
func CheckSkill(rider *model.User, horse *model.Horse, hasOverride bool) *Violation {
	riderTier, horseTier := RiderTier(rider.RankPoints), HorseTier(horse)
	if CanRide(riderTier, horseTier) || hasOverride {
		return nil
	}
	v := violation(RuleSkillMismatch,
		"rider %s (%s) is not eligible for %s horse %s without an approved skill override",
		rider.ID, riderTier, horseTier, horse.ID)
	v.Details = map[string]any{
		"rider_tier": riderTier.String(),
		"horse_tier": horseTier.String(),
	}
	return v
}
