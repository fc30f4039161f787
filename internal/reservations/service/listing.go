package service

import (
	"context"
	"fmt"
	"sync"

	reservationserrors "stablebook/internal/reservations/errors"
	"stablebook/internal/reservations/repository"
	"stablebook/pkg/auth"
	apperrors "stablebook/pkg/errors"
	"stablebook/pkg/model"
)

// ListQuery selects which reservations a caller sees. With no stable
// selector the caller's own rides are listed.
type ListQuery struct {
	OwnerOnly bool
	StableID  string
	Statuses  []string
	Limit     int
	Offset    int64
}

// List returns one page of reservations visible to caller, newest first, and
// the total matching count. Anonymous callers get an empty page.
func (s *reservationService) List(ctx context.Context, caller *auth.Caller, query ListQuery) ([]*model.ReservationView, int64, error) {
	if caller == nil {
		return []*model.ReservationView{}, 0, nil
	}

	for _, status := range query.Statuses {
		if !model.IsReservationStatus(status) {
			return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown reservation status %q", status))
		}
	}

	filter, ok, err := s.listFilter(ctx, caller, query)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return []*model.ReservationView{}, 0, nil
	}

	var count int64
	var views []*model.ReservationView
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.store.Reservations.Count(ctx, filter)
		if err != nil {
			s.log.Error("Failed to count reservations", "caller_id", caller.UserID, "error", err)
			errCount = s.classifyRead("Failed to count reservations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		views, err = s.store.Reservations.List(ctx, filter, query.Limit, query.Offset)
		if err != nil {
			s.log.Error("Failed to list reservations",
				"caller_id", caller.UserID,
				"limit", query.Limit,
				"offset", query.Offset,
				"error", err,
			)
			errFind = s.classifyRead("Failed to retrieve reservations", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if views == nil {
		views = []*model.ReservationView{}
	}
	return views, count, nil
}

// listFilter resolves the caller's scope. ok is false when the scope is
// empty and the store need not be queried.
func (s *reservationService) listFilter(ctx context.Context, caller *auth.Caller, query ListQuery) (repository.ReservationFilter, bool, error) {
	filter := repository.ReservationFilter{Statuses: query.Statuses}

	switch {
	case query.StableID != "":
		stable, err := s.store.Stables.FindByID(ctx, query.StableID)
		if err != nil {
			if isMissing(err, reservationserrors.ErrStableNotFound) {
				return filter, false, apperrors.NotFoundWithID("Stable", query.StableID)
			}
			return filter, false, s.classifyRead("Failed to load stable", err)
		}
		owner := stable.OwnerID == caller.UserID
		if !owner && !caller.IsAdmin() {
			return filter, false, apperrors.Forbidden("Only the stable owner can list its reservations")
		}
		filter.StableIDs = []string{stable.ID}
		filter.ExcludeScored = owner

	case query.OwnerOnly:
		ids, err := s.store.Stables.FindIDsByOwner(ctx, caller.UserID)
		if err != nil {
			return filter, false, s.classifyRead("Failed to load owned stables", err)
		}
		if len(ids) == 0 {
			return filter, false, nil
		}
		filter.StableIDs = ids
		filter.ExcludeScored = true

	default:
		filter.RiderID = caller.UserID
	}

	return filter, true, nil
}

// GetByID returns a reservation visible to its rider, the stable owner or an
// admin.
func (s *reservationService) GetByID(ctx context.Context, caller *auth.Caller, id string) (*model.Reservation, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.store.Reservations.FindByID(ctx, id)
	if err != nil {
		if isMissing(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, s.classifyRead("Failed to retrieve reservation", err)
	}

	if caller.IsAdmin() || reservation.RiderID == caller.UserID {
		return reservation, nil
	}

	stable, err := s.store.Stables.FindByID(ctx, reservation.StableID)
	if err != nil {
		if isMissing(err, reservationserrors.ErrStableNotFound) {
			return nil, apperrors.Forbidden("Reservation is not visible to the caller")
		}
		return nil, s.classifyRead("Failed to load stable", err)
	}
	if stable.OwnerID != caller.UserID {
		return nil, apperrors.Forbidden("Reservation is not visible to the caller")
	}
	return reservation, nil
}
