package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	reservationserrors "stablebook/internal/reservations/errors"
	"stablebook/internal/reservations/notify"
	"stablebook/internal/reservations/policy"
	"stablebook/internal/reservations/validator"
	"stablebook/pkg/auth"
	mongotx "stablebook/pkg/db/mongo"
	apperrors "stablebook/pkg/errors"
	"stablebook/pkg/logger"
	"stablebook/pkg/metrics"
	"stablebook/pkg/model"
	"stablebook/pkg/sanitizer"
)

// CreateBatch books every rider/horse pair of req for one shared window, or
// none of them. Shared checks run once before the transaction; pairs are then
// committed in submitted order and the first failure aborts the batch.
// Notifications are queued only after the commit and cannot change the result.
func (s *reservationService) CreateBatch(ctx context.Context, caller *auth.Caller, req *model.BatchRequest) (created []*model.ReservationDetail, err error) {
	began := time.Now()
	defer func() {
		s.observeBatch(len(created), err, time.Since(began))
	}()

	if caller == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if !caller.IsRider() {
		return nil, apperrors.Forbidden("Only riders can create reservations")
	}
	if req == nil {
		return nil, apperrors.InvalidInput("Request body is required")
	}

	s.sanitize(req)
	if err := s.validator.ValidateBatch(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			s.log.Warn("Batch validation failed", "caller_id", caller.UserID, "error", err)
			return nil, apperrors.Validation("Invalid batch request", verrs.Details())
		}
		return nil, apperrors.InvalidInput(err.Error())
	}

	window, err := policy.ParseWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, apperrors.InvalidInput("start_time and end_time must be RFC 3339 timestamps")
	}

	now := s.now()
	if v := policy.CheckDuration(window, now); v != nil {
		return nil, ruleError(v, nil)
	}

	stable, err := s.approvedStable(ctx, req.StableID)
	if err != nil {
		return nil, err
	}

	callerTrusted, err := s.checkPayment(ctx, caller, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if v := policy.CheckLeadTime(window, stable, s.defaults, now); v != nil {
		return nil, ruleError(v, nil)
	}

	batchID := uuid.NewString()
	loc := policy.Location(stable, s.location)
	deferred := policy.IsDeferred(req.PaymentMethod)

	err = s.store.Tx.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		// The driver may rerun this closure on a write conflict.
		created = created[:0]

		for i, pair := range req.Riders {
			detail, err := s.commitPair(txCtx, pairCommit{
				Index:         i,
				Pair:          pair,
				Stable:        stable,
				Window:        window,
				Location:      loc,
				PaymentMethod: req.PaymentMethod,
				PromoCodeID:   req.PromoCodeID,
				BatchID:       batchID,
			})
			if err != nil {
				return err
			}
			created = append(created, detail)
		}

		if req.PromoCodeID != "" {
			if err := s.store.Promos.IncrementUsage(txCtx, req.PromoCodeID); err != nil {
				if isMissing(err, reservationserrors.ErrPromoNotFound) {
					return apperrors.NotFoundWithID("Promo code", req.PromoCodeID)
				}
				return storeErr("Failed to record promo code usage", err)
			}
		}

		if !deferred && !callerTrusted {
			if err := s.store.Users.MarkTrusted(txCtx, caller.UserID); err != nil {
				if isMissing(err, reservationserrors.ErrUserNotFound) {
					return apperrors.Unauthorized("Caller account not found")
				}
				return storeErr("Failed to update caller trust", err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("Batch reservation failed",
			"batch_id", batchID,
			"stable_id", stable.ID,
			"pairs", len(req.Riders),
			"error", err,
		)
		return nil, err
	}

	s.log.Info("Batch reservation committed",
		"batch_id", batchID,
		"stable_id", stable.ID,
		"caller_id", caller.UserID,
		"reservations", len(created),
		"start_time", window.Start,
		"end_time", window.End,
	)

	s.notify(ctx, batchID, created)
	return created, nil
}

func (s *reservationService) sanitize(req *model.BatchRequest) {
	req.StableID = sanitizer.SanitizeID(req.StableID)
	req.PromoCodeID = sanitizer.SanitizeID(req.PromoCodeID)
	req.PaymentMethod = sanitizer.SanitizePaymentMethod(req.PaymentMethod)
	req.StartTime = sanitizer.SanitizeTimestamp(req.StartTime)
	req.EndTime = sanitizer.SanitizeTimestamp(req.EndTime)
	for i := range req.Riders {
		req.Riders[i].HorseID = sanitizer.SanitizeID(req.Riders[i].HorseID)
		req.Riders[i].RiderID = sanitizer.SanitizeID(req.Riders[i].RiderID)
	}
}

// approvedStable hides stables that are not approved behind NOT_FOUND so
// pending listings are not discoverable.
func (s *reservationService) approvedStable(ctx context.Context, id string) (*model.Stable, error) {
	stable, err := s.store.Stables.FindByID(ctx, id)
	if err != nil {
		if isMissing(err, reservationserrors.ErrStableNotFound) {
			return nil, apperrors.NotFoundWithID("Stable", id)
		}
		return nil, s.classifyRead("Failed to load stable", err)
	}
	if !stable.IsApproved() {
		return nil, apperrors.NotFoundWithID("Stable", id)
	}
	return stable, nil
}

// checkPayment applies the trusted-only cash gate and returns whether the
// caller is already trusted.
func (s *reservationService) checkPayment(ctx context.Context, caller *auth.Caller, paymentMethod string) (bool, error) {
	user, err := s.store.Users.FindByID(ctx, caller.UserID)
	if err != nil {
		if isMissing(err, reservationserrors.ErrUserNotFound) {
			return false, apperrors.Unauthorized("Caller account not found")
		}
		return false, s.classifyRead("Failed to load caller", err)
	}

	if !policy.IsDeferred(paymentMethod) {
		return user.IsTrusted, nil
	}

	trustedOnly, err := s.store.SystemConfig.Bool(ctx, model.ConfigCashPaymentTrustedOnly, false)
	if err != nil {
		return false, s.classifyRead("Failed to load payment settings", err)
	}
	if !policy.CashAllowed(paymentMethod, trustedOnly, user.IsTrusted) {
		return false, apperrors.PaymentRestricted("Cash payment is only available to trusted riders").
			WithDetails(map[string]any{"payment_method": paymentMethod})
	}
	return user.IsTrusted, nil
}

// classifyRead maps a failed read outside a transaction.
func (s *reservationService) classifyRead(message string, err error) error {
	if mongotx.IsTransient(err) {
		return apperrors.Transient("The reservation store is busy, please retry", err)
	}
	return apperrors.Internal(message, err)
}

func (s *reservationService) notify(ctx context.Context, batchID string, created []*model.ReservationDetail) {
	reservations := make([]model.ReservationDetail, 0, len(created))
	for _, detail := range created {
		reservations = append(reservations, *detail)
	}

	queued := s.notifier.Dispatch(notify.Event{
		BatchID:       batchID,
		CorrelationID: logger.RequestID(ctx),
		Reservations:  reservations,
	})
	if !queued {
		s.log.Warn("Reservation notifications not queued", "batch_id", batchID)
	}
}

func (s *reservationService) observeBatch(created int, err error, duration time.Duration) {
	if err == nil {
		s.metrics.ObserveBatch(metrics.OutcomeSuccess, "", created, duration)
		return
	}
	appErr := apperrors.AsAppError(err)
	outcome := metrics.OutcomeRejected
	if appErr.StatusCode() >= 500 {
		outcome = metrics.OutcomeError
	}
	s.metrics.ObserveBatch(outcome, appErr.Code, 0, duration)
}
