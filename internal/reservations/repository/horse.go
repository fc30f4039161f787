package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reservationserrors "stablebook/internal/reservations/errors"
	"stablebook/pkg/config"
	mongotx "stablebook/pkg/db/mongo"
	"stablebook/pkg/model"
)

type HorseRepository interface {
	FindByID(ctx context.Context, id string) (*model.Horse, error)
}

type mongoHorseRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoHorseRepository(cfg *config.Config, db *mongo.Database) HorseRepository {
	return &mongoHorseRepository{cfg: cfg, collection: db.Collection(HorsesCollection)}
}

func (r *mongoHorseRepository) FindByID(ctx context.Context, id string) (*model.Horse, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var horse model.Horse
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&horse); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrHorseNotFound
		}
		return nil, fmt.Errorf("failed to find horse: %w", err)
	}
	return &horse, nil
}

// HorseLockRepository serializes concurrent bookings of the same horse.
type HorseLockRepository interface {
	Acquire(ctx context.Context, horseID string) error
}

type mongoHorseLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoHorseLockRepository(cfg *config.Config, db *mongo.Database) HorseLockRepository {
	return &mongoHorseLockRepository{cfg: cfg, collection: db.Collection(HorseLocksCollection)}
}

// Acquire bumps the horse's lock document inside the caller's transaction.
// A second transaction writing the same document is aborted by the server
// with a write conflict and retried, by which time it sees the committed
// reservation. The lock is released on commit or abort.
func (r *mongoHorseLockRepository) Acquire(ctx context.Context, horseID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"seq": 1},
		"$set": bson.M{"locked_at": time.Now().UTC()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": horseID}, update, options.Update().SetUpsert(true))
	if err != nil {
		// Two first-time upserts can race on the unique _id instead of
		// conflicting on the document.
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("horse %s: %w", horseID, mongotx.ErrLockContention)
		}
		return fmt.Errorf("failed to acquire horse lock: %w", err)
	}
	return nil
}
