package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	reservationserrors "stablebook/internal/reservations/errors"
	"stablebook/pkg/config"
	"stablebook/pkg/model"
)

// ReservationFilter narrows the read model. Empty fields do not filter.
type ReservationFilter struct {
	RiderID       string
	StableIDs     []string
	Statuses      []string
	ExcludeScored bool
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindActiveOverlapping(ctx context.Context, horseID string, start, end time.Time) ([]*model.Reservation, error)
	CountActiveStartingBetween(ctx context.Context, horseID string, from, to time.Time) (int64, error)
	List(ctx context.Context, filter ReservationFilter, limit int, offset int64) ([]*model.ReservationView, error)
	Count(ctx context.Context, filter ReservationFilter) (int64, error)
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReservationRepository(cfg *config.Config, db *mongo.Database) ReservationRepository {
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(ReservationsCollection),
	}
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var reservation model.Reservation
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&reservation); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return &reservation, nil
}

// FindActiveOverlapping uses inclusive bounds, so back-to-back windows
// sharing an endpoint are reported.
func (r *mongoReservationRepository) FindActiveOverlapping(ctx context.Context, horseID string, start, end time.Time) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, overlapFilter(horseID, start, end))
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping reservations: %w", err)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) CountActiveStartingBetween(ctx context.Context, horseID string, from, to time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, sessionFilter(horseID, from, to))
	if err != nil {
		return 0, fmt.Errorf("failed to count session reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) List(ctx context.Context, filter ReservationFilter, limit int, offset int64) ([]*model.ReservationView, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := append(listPipeline(filter),
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		bson.D{{Key: "$skip", Value: offset}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
		bson.D{{Key: "$project", Value: bson.M{"_rid": 0, "_reviews": 0, "_scores": 0}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer cursor.Close(ctx)

	views := make([]*model.ReservationView, 0, limit)
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return views, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context, filter ReservationFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if !filter.ExcludeScored {
		count, err := r.collection.CountDocuments(ctx, listMatch(filter))
		if err != nil {
			return 0, fmt.Errorf("failed to count reservations: %w", err)
		}
		return count, nil
	}

	pipeline := append(listPipeline(filter), bson.D{{Key: "$count", Value: "total"}})
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, fmt.Errorf("failed to decode reservation count: %w", err)
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

func activeForHorse(horseID string) bson.M {
	return bson.M{
		"horse_id": horseID,
		"status":   bson.M{"$in": model.ActiveReservationStatuses},
	}
}

func overlapFilter(horseID string, start, end time.Time) bson.M {
	filter := activeForHorse(horseID)
	filter["start_time"] = bson.M{"$lte": end}
	filter["end_time"] = bson.M{"$gte": start}
	return filter
}

func sessionFilter(horseID string, from, to time.Time) bson.M {
	filter := activeForHorse(horseID)
	filter["start_time"] = bson.M{"$gte": from, "$lt": to}
	return filter
}

func listMatch(filter ReservationFilter) bson.M {
	match := bson.M{}
	if filter.RiderID != "" {
		match["rider_id"] = filter.RiderID
	}
	if len(filter.StableIDs) > 0 {
		match["stable_id"] = bson.M{"$in": filter.StableIDs}
	}
	if len(filter.Statuses) > 0 {
		match["status"] = bson.M{"$in": filter.Statuses}
	}
	return match
}

// listPipeline joins feedback by the reservation's hex id and derives the
// has_review and already_scored flags.
func listPipeline(filter ReservationFilter) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: listMatch(filter)}},
		{{Key: "$addFields", Value: bson.M{"_rid": bson.M{"$toString": "$_id"}}}},
		feedbackLookup(ReviewsCollection, "_reviews"),
		feedbackLookup(RideScoresCollection, "_scores"),
		{{Key: "$addFields", Value: bson.M{
			"has_review":     bson.M{"$gt": bson.A{bson.M{"$size": "$_reviews"}, 0}},
			"already_scored": bson.M{"$gt": bson.A{bson.M{"$size": "$_scores"}, 0}},
		}}},
	}
	if filter.ExcludeScored {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"already_scored": false}}})
	}
	return pipeline
}

func feedbackLookup(from, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         from,
		"localField":   "_rid",
		"foreignField": "reservation_id",
		"as":           as,
	}}}
}
