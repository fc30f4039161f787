package policy

import (
	"time"

	"stablebook/pkg/model"
)

const MinDuration = time.Hour

// Window is the booking interval shared by every pair of a batch.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow accepts RFC 3339 timestamps with or without fractional
// seconds. A zone offset is required; local times are rejected rather than
// guessed.
func ParseWindow(start, end string) (Window, error) {
	s, err := time.Parse(time.RFC3339Nano, start)
	if err != nil {
		return Window{}, err
	}
	e, err := time.Parse(time.RFC3339Nano, end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s.UTC(), End: e.UTC()}, nil
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// CheckDuration enforces start < end, a one hour floor and a start in the
// future.
func CheckDuration(w Window, now time.Time) *Violation {
	switch {
	case !w.End.After(w.Start):
		return violation(RuleDuration, "end_time must be after start_time")
	case w.Duration() < MinDuration:
		return violation(RuleDuration, "reservation must last at least %s, got %s", MinDuration, w.Duration())
	case !w.Start.After(now):
		return violation(RuleDuration, "start_time must be in the future")
	}
	return nil
}

type Defaults struct {
	PricePerHour     float64
	CommissionRate   float64
	MinLeadTimeHours int
}

func (d Defaults) LeadTime(stable *model.Stable) time.Duration {
	hours := d.MinLeadTimeHours
	if stable.MinLeadTimeHours != nil {
		hours = *stable.MinLeadTimeHours
	}
	return time.Duration(hours) * time.Hour
}

// CheckLeadTime rejects starts earlier than now plus the stable's notice
// period and reports the earliest permissible start.
func CheckLeadTime(w Window, stable *model.Stable, d Defaults, now time.Time) *Violation {
	lead := d.LeadTime(stable)
	earliest := now.Add(lead)
	if !w.Start.Before(earliest) {
		return nil
	}
	v := violation(RuleLeadTime,
		"stable requires %d hours notice, earliest permissible start is %s",
		int(lead.Hours()), earliest.UTC().Format(time.RFC3339))
	v.Details = map[string]any{
		"min_lead_time_hours": int(lead.Hours()),
		"earliest_start":      earliest.UTC().Format(time.RFC3339),
	}
	return v
}

// Location resolves the stable's zone for welfare sessions.
func Location(stable *model.Stable, fallback *time.Location) *time.Location {
	if stable.TimeZone != "" {
		if loc, err := time.LoadLocation(stable.TimeZone); err == nil {
			return loc
		}
	}
	if fallback == nil {
		return time.UTC
	}
	return fallback
}
