package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reservationserrors "stablebook/internal/reservations/errors"
	"stablebook/pkg/config"
	"stablebook/pkg/model"
)

type SlotRepository interface {
	// MarkBooked links every open slot of the horse that lies inside the
	// window to the reservation and returns how many were updated.
	MarkBooked(ctx context.Context, horseID string, start, end time.Time, reservationID string) (int64, error)
}

type PromoRepository interface {
	IncrementUsage(ctx context.Context, id string) error
}

type OverrideRepository interface {
	HasApproved(ctx context.Context, riderID, horseID string) (bool, error)
}

type SystemConfigRepository interface {
	Bool(ctx context.Context, key string, fallback bool) (bool, error)
}

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotRepository(cfg *config.Config, db *mongo.Database) SlotRepository {
	return &mongoSlotRepository{cfg: cfg, collection: db.Collection(SlotsCollection)}
}

func (r *mongoSlotRepository) MarkBooked(ctx context.Context, horseID string, start, end time.Time, reservationID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"horse_id":   horseID,
		"status":     model.SlotStatusOpen,
		"start_time": bson.M{"$gte": start},
		"end_time":   bson.M{"$lte": end},
	}
	update := bson.M{"$set": bson.M{
		"status":         model.SlotStatusBooked,
		"reservation_id": reservationID,
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark slots booked: %w", err)
	}
	return result.ModifiedCount, nil
}

type mongoPromoRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPromoRepository(cfg *config.Config, db *mongo.Database) PromoRepository {
	return &mongoPromoRepository{cfg: cfg, collection: db.Collection(PromoCodesCollection)}
}

func (r *mongoPromoRepository) IncrementUsage(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"used_count": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment promo usage: %w", err)
	}
	if result.MatchedCount == 0 {
		return reservationserrors.ErrPromoNotFound
	}
	return nil
}

type mongoOverrideRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoOverrideRepository(cfg *config.Config, db *mongo.Database) OverrideRepository {
	return &mongoOverrideRepository{cfg: cfg, collection: db.Collection(OverridesCollection)}
}

func (r *mongoOverrideRepository) HasApproved(ctx context.Context, riderID, horseID string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"rider_id": riderID,
		"horse_id": horseID,
		"status":   model.OverrideStatusApproved,
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up skill override: %w", err)
	}
	return count > 0, nil
}

type mongoSystemConfigRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSystemConfigRepository(cfg *config.Config, db *mongo.Database) SystemConfigRepository {
	return &mongoSystemConfigRepository{cfg: cfg, collection: db.Collection(SystemConfigCollection)}
}

// Bool reads a flag, accepting booleans or boolean strings. Missing keys
// yield the fallback.
func (r *mongoSystemConfigRepository) Bool(ctx context.Context, key string, fallback bool) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var entry model.SystemConfig
	if err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fallback, nil
		}
		return fallback, fmt.Errorf("failed to read system config %s: %w", key, err)
	}
	return configBool(entry.Value, fallback), nil
}

func configBool(value any, fallback bool) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
