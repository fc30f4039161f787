package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stablebook/internal/migrations/mongo/validators"
	"stablebook/internal/reservations/repository"
	"stablebook/pkg/logger"
)

type CollectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	// ReservationsIndexes backs the overlap and welfare lookups, which both
	// filter by horse and active status over a start_time range.
	ReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "horse_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		{Keys: bson.D{{Key: "rider_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "stable_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "batch_id", Value: 1}}},
	}

	StablesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	HorsesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "stable_id", Value: 1}}},
	}

	SlotsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "horse_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	PromoCodesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	OverridesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "rider_id", Value: 1},
			{Key: "horse_id", Value: 1},
			{Key: "status", Value: 1},
		}},
	}

	FeedbackIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "reservation_id", Value: 1}}},
	}
)

// Collections lists every collection the reservation engine touches.
// Horse_locks must exist up front because collections cannot be created
// implicitly inside a multi-document transaction on older servers.
func Collections() []CollectionDef {
	return []CollectionDef{
		{Name: repository.ReservationsCollection, Indexes: ReservationsIndexes, Validator: validators.ReservationValidator},
		{Name: repository.StablesCollection, Indexes: StablesIndexes, Validator: validators.StableValidator},
		{Name: repository.HorsesCollection, Indexes: HorsesIndexes, Validator: validators.HorseValidator},
		{Name: repository.UsersCollection, Validator: validators.UserValidator},
		{Name: repository.SlotsCollection, Indexes: SlotsIndexes, Validator: validators.AvailabilitySlotValidator},
		{Name: repository.PromoCodesCollection, Indexes: PromoCodesIndexes, Validator: validators.PromoCodeValidator},
		{Name: repository.OverridesCollection, Indexes: OverridesIndexes, Validator: validators.SkillOverrideValidator},
		{Name: repository.SystemConfigCollection},
		{Name: repository.HorseLocksCollection, Validator: validators.HorseLockValidator},
		{Name: repository.ReviewsCollection, Indexes: FeedbackIndexes, Validator: validators.FeedbackValidator},
		{Name: repository.RideScoresCollection, Indexes: FeedbackIndexes, Validator: validators.FeedbackValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
