package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	reservationserrors "stablebook/internal/reservations/errors"
)

const (
	ReservationsCollection = "Reservations"
	StablesCollection      = "Stables"
	HorsesCollection       = "Horses"
	UsersCollection        = "Users"
	SlotsCollection        = "Availability_slots"
	PromoCodesCollection   = "Promo_codes"
	OverridesCollection    = "Skill_override_requests"
	SystemConfigCollection = "System_config"
	HorseLocksCollection   = "Horse_locks"
	ReviewsCollection      = "Reviews"
	RideScoresCollection   = "Ride_scores"
)

// withTimeout wraps the context with a timeout unless it is a transaction's
// session context, which must be passed through untouched.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}
	return oid, nil
}
