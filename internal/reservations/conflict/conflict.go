package conflict

import (
	"context"
	"fmt"
	"time"

	"stablebook/internal/reservations/policy"
	"stablebook/pkg/model"
)

// ReservationReader is the slice of the reservation store the detector needs.
// Inside a batch it must be called with the transaction's context.
type ReservationReader interface {
	FindActiveOverlapping(ctx context.Context, horseID string, start, end time.Time) ([]*model.Reservation, error)
	CountActiveStartingBetween(ctx context.Context, horseID string, from, to time.Time) (int64, error)
}

type Detector struct {
	reader ReservationReader
}

func NewDetector(reader ReservationReader) *Detector {
	return &Detector{reader: reader}
}

// Check returns a *policy.Violation for an overlap or welfare breach, a
// wrapped store error if a lookup failed, or nil.
func (d *Detector) Check(ctx context.Context, horseID string, w policy.Window, loc *time.Location) error {
	existing, err := d.reader.FindActiveOverlapping(ctx, horseID, w.Start, w.End)
	if err != nil {
		return fmt.Errorf("overlap check for horse %s: %w", horseID, err)
	}
	for _, r := range existing {
		if !Overlaps(r.StartTime, r.EndTime, w.Start, w.End) {
			continue
		}
		return &policy.Violation{
			Rule: policy.RuleOverlap,
			Message: fmt.Sprintf("horse %s is already booked from %s to %s",
				horseID, r.StartTime.UTC().Format(time.RFC3339), r.EndTime.UTC().Format(time.RFC3339)),
			Details: map[string]any{"conflicting_reservation_id": r.ID},
		}
	}

	session, from, to := SessionBounds(w.Start, loc)
	count, err := d.reader.CountActiveStartingBetween(ctx, horseID, from, to)
	if err != nil {
		return fmt.Errorf("welfare check for horse %s: %w", horseID, err)
	}
	if count > 0 {
		return &policy.Violation{
			Rule: policy.RuleWelfareLimit,
			Message: fmt.Sprintf("horse %s already has a ride starting in the %s session of %s",
				horseID, session, from.Format(time.DateOnly)),
			Details: map[string]any{"session": session.String(), "date": from.Format(time.DateOnly)},
		}
	}
	return nil
}

// Overlaps treats both windows as closed, so windows that touch conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
