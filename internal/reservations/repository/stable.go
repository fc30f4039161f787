package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reservationserrors "stablebook/internal/reservations/errors"
	"stablebook/pkg/config"
	"stablebook/pkg/model"
)

type StableRepository interface {
	FindByID(ctx context.Context, id string) (*model.Stable, error)
	FindIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

type mongoStableRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStableRepository(cfg *config.Config, db *mongo.Database) StableRepository {
	return &mongoStableRepository{cfg: cfg, collection: db.Collection(StablesCollection)}
}

func (r *mongoStableRepository) FindByID(ctx context.Context, id string) (*model.Stable, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var stable model.Stable
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&stable); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrStableNotFound
		}
		return nil, fmt.Errorf("failed to find stable: %w", err)
	}
	return &stable, nil
}

func (r *mongoStableRepository) FindIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find owned stables: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode owned stables: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}
