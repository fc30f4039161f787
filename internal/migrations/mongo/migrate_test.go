package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"stablebook/internal/reservations/repository"
)

func TestCollections_CoverRepositoryCollections(t *testing.T) {
	want := []string{
		repository.ReservationsCollection,
		repository.StablesCollection,
		repository.HorsesCollection,
		repository.UsersCollection,
		repository.SlotsCollection,
		repository.PromoCodesCollection,
		repository.OverridesCollection,
		repository.SystemConfigCollection,
		repository.HorseLocksCollection,
		repository.ReviewsCollection,
		repository.RideScoresCollection,
	}

	defs := make(map[string]CollectionDef)
	for _, def := range Collections() {
		if _, dup := defs[def.Name]; dup {
			t.Errorf("collection %s defined twice", def.Name)
		}
		defs[def.Name] = def
	}

	for _, name := range want {
		if _, ok := defs[name]; !ok {
			t.Errorf("collection %s has no migration", name)
		}
	}
}

func TestReservationsIndexes_IncludeConflictIndex(t *testing.T) {
	want := bson.D{
		{Key: "horse_id", Value: 1},
		{Key: "status", Value: 1},
		{Key: "start_time", Value: 1},
	}

	for _, idx := range ReservationsIndexes {
		keys, ok := idx.Keys.(bson.D)
		if !ok || len(keys) != len(want) {
			continue
		}
		match := true
		for i := range keys {
			if keys[i].Key != want[i].Key || keys[i].Value != want[i].Value {
				match = false
				break
			}
		}
		if match {
			return
		}
	}
	t.Fatalf("missing (horse_id, status, start_time) index on %s", repository.ReservationsCollection)
}

func TestReservationValidator_RequiresCoreFields(t *testing.T) {
	schema := reservationsSchema(t)
	required, ok := schema["required"].([]string)
	if !ok {
		t.Fatalf("expected required list")
	}

	have := make(map[string]bool, len(required))
	for _, field := range required {
		have[field] = true
	}
	for _, field := range []string{"rider_id", "horse_id", "start_time", "end_time", "status", "batch_id"} {
		if !have[field] {
			t.Errorf("expected %s to be required", field)
		}
	}
}

func reservationsSchema(t *testing.T) bson.M {
	t.Helper()
	for _, def := range Collections() {
		if def.Name != repository.ReservationsCollection {
			continue
		}
		schema, ok := def.Validator["$jsonSchema"].(bson.M)
		if !ok {
			t.Fatalf("reservations validator has no $jsonSchema")
		}
		return schema
	}
	t.Fatalf("no reservations collection")
	return nil
}
