package service

import (
	"context"
	"errors"
	"time"

	"stablebook/internal/reservations/conflict"
	reservationserrors "stablebook/internal/reservations/errors"
	"stablebook/internal/reservations/notify"
	"stablebook/internal/reservations/policy"
	"stablebook/internal/reservations/repository"
	"stablebook/internal/reservations/validator"
	"stablebook/pkg/auth"
	"stablebook/pkg/config"
	mongotx "stablebook/pkg/db/mongo"
	apperrors "stablebook/pkg/errors"
	"stablebook/pkg/logger"
	"stablebook/pkg/metrics"
	"stablebook/pkg/model"
)

type ReservationService interface {
	CreateBatch(ctx context.Context, caller *auth.Caller, req *model.BatchRequest) ([]*model.ReservationDetail, error)
	List(ctx context.Context, caller *auth.Caller, query ListQuery) ([]*model.ReservationView, int64, error)
	GetByID(ctx context.Context, caller *auth.Caller, id string) (*model.Reservation, error)
}

type reservationService struct {
	store     *repository.Store
	detector  *conflict.Detector
	validator *validator.ReservationValidator
	notifier  notify.Notifier
	defaults  policy.Defaults
	location  *time.Location
	metrics   *metrics.ReservationMetrics
	log       *logger.Logger
	now       func() time.Time
}

func NewReservationService(
	store *repository.Store,
	validator *validator.ReservationValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) ReservationService {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &reservationService{
		store:     store,
		detector:  conflict.NewDetector(store.Reservations),
		validator: validator,
		notifier:  notifier,
		defaults: policy.Defaults{
			PricePerHour:     cfg.DefaultPricePerHour,
			CommissionRate:   cfg.DefaultCommissionRate,
			MinLeadTimeHours: cfg.DefaultMinLeadTimeHours,
		},
		location: cfg.Location(),
		metrics:  metrics.Reservations(),
		log:      cfg.Log.Component("reservation_service"),
		now:      time.Now,
	}
}

// storeErr keeps transient errors raw inside a transaction so the driver can
// still see their labels and retry; anything else becomes an internal error.
func storeErr(message string, err error) error {
	if mongotx.IsTransient(err) {
		return err
	}
	return apperrors.Internal(message, err)
}

func isMissing(err error, sentinels ...error) bool {
	if errors.Is(err, reservationserrors.ErrInvalidID) {
		return true
	}
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// ruleError converts a policy violation into the public error shape.
func ruleError(v *policy.Violation, extra map[string]any) *apperrors.AppError {
	appErr := apperrors.BusinessRule(string(v.Rule), v.Message)
	if v.Details != nil {
		appErr.WithDetails(v.Details)
	}
	if extra != nil {
		appErr.WithDetails(extra)
	}
	return appErr
}
