package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "stablebook/internal/reservations/errors"
	"stablebook/internal/reservations/policy"
	apperrors "stablebook/pkg/errors"
	"stablebook/pkg/model"
)

// pairCommit is everything the committer needs for one rider/horse pair.
// Shared fields come from the batch pre-checks.
type pairCommit struct {
	Index         int
	Pair          model.BatchPair
	Stable        *model.Stable
	Window        policy.Window
	Location      *time.Location
	PaymentMethod string
	PromoCodeID   string
	BatchID       string
}

func (p pairCommit) details() map[string]any {
	return map[string]any{
		"pair_index": p.Index,
		"horse_id":   p.Pair.HorseID,
		"rider_id":   p.Pair.RiderID,
	}
}

// commitPair must run inside the batch transaction: the lock write, the
// conflict reads and the inserts all use ctx.
func (s *reservationService) commitPair(ctx context.Context, p pairCommit) (*model.ReservationDetail, error) {
	horse, err := s.store.Horses.FindByID(ctx, p.Pair.HorseID)
	if err != nil {
		if isMissing(err, reservationserrors.ErrHorseNotFound) {
			return nil, apperrors.NotFoundWithID("Horse", p.Pair.HorseID).WithDetails(p.details())
		}
		return nil, storeErr("Failed to load horse", err)
	}
	if !horse.IsActive || horse.StableID != p.Stable.ID {
		return nil, apperrors.NotFoundWithID("Horse", p.Pair.HorseID).WithDetails(p.details())
	}

	rider, err := s.store.Users.FindByID(ctx, p.Pair.RiderID)
	if err != nil {
		if isMissing(err, reservationserrors.ErrUserNotFound) {
			return nil, apperrors.NotFoundWithID("Rider", p.Pair.RiderID).WithDetails(p.details())
		}
		return nil, storeErr("Failed to load rider", err)
	}

	hasOverride := false
	if !policy.CanRide(policy.RiderTier(rider.RankPoints), policy.HorseTier(horse)) {
		hasOverride, err = s.store.Overrides.HasApproved(ctx, rider.ID, horse.ID)
		if err != nil {
			return nil, storeErr("Failed to check skill override", err)
		}
	}
	if v := policy.CheckSkill(rider, horse, hasOverride); v != nil {
		return nil, s.pairViolation(p, v)
	}

	if err := s.store.HorseLocks.Acquire(ctx, horse.ID); err != nil {
		return nil, storeErr("Failed to lock horse", err)
	}

	if err := s.detector.Check(ctx, horse.ID, p.Window, p.Location); err != nil {
		var v *policy.Violation
		if errors.As(err, &v) {
			return nil, s.pairViolation(p, v)
		}
		return nil, storeErr("Failed to check horse availability", err)
	}

	quote := s.defaults.Quote(p.Window, horse, p.Stable)
	reservation := &model.Reservation{
		RiderID:          rider.ID,
		StableID:         p.Stable.ID,
		HorseID:          horse.ID,
		StartTime:        p.Window.Start,
		EndTime:          p.Window.End,
		Status:           model.ReservationStatusConfirmed,
		TotalPrice:       quote.TotalPrice,
		CommissionAmount: quote.CommissionAmount,
		PromoCodeID:      p.PromoCodeID,
		PaymentMethod:    p.PaymentMethod,
		BatchID:          p.BatchID,
	}
	if err := s.store.Reservations.Create(ctx, reservation); err != nil {
		return nil, storeErr("Failed to create reservation", err)
	}

	// Having no matching slot is fine, but a failed slot write has already
	// aborted the server-side transaction and must fail the pair.
	booked, err := s.store.Slots.MarkBooked(ctx, horse.ID, p.Window.Start, p.Window.End, reservation.ID)
	if err != nil {
		return nil, storeErr("Failed to mark availability slots booked", err)
	}
	if booked > 0 {
		s.log.Debug("Availability slots booked", "reservation_id", reservation.ID, "count", booked)
	}

	return &model.ReservationDetail{
		Reservation: *reservation,
		Rider: model.RiderSummary{
			ID:        rider.ID,
			Name:      rider.Name,
			SkillTier: policy.RiderTier(rider.RankPoints).String(),
		},
		Horse:  horse.Summary(),
		Stable: p.Stable.Summary(),
	}, nil
}

func (s *reservationService) pairViolation(p pairCommit, v *policy.Violation) *apperrors.AppError {
	return ruleError(&policy.Violation{
		Rule:    v.Rule,
		Message: fmt.Sprintf("pair %d: %s", p.Index, v.Message),
		Details: v.Details,
	}, p.details())
}
