package validators

import "go.mongodb.org/mongo-driver/bson"

var StableValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"owner_id", "name", "status"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "objectId"},
			"owner_id": objectIDHex,
			"name":     bson.M{"bsonType": "string", "minLength": 1},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "approved", "rejected"},
			},
			"commission_rate":     bson.M{"bsonType": []string{"double", "int"}, "minimum": 0, "maximum": 1},
			"min_lead_time_hours": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"time_zone":           bson.M{"bsonType": "string"},
			"created_at":          bson.M{"bsonType": "date"},
		},
	},
}

var HorseValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"stable_id", "name", "is_active"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":                 bson.M{"bsonType": "objectId"},
			"stable_id":           objectIDHex,
			"name":                bson.M{"bsonType": "string", "minLength": 1},
			"is_active":           bson.M{"bsonType": "bool"},
			"price_per_hour":      bson.M{"bsonType": []string{"double", "int"}, "minimum": 0},
			"skill_level":         bson.M{"bsonType": "string"},
			"trainer_skill_level": bson.M{"bsonType": "string"},
		},
	},
}

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "role"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":  bson.M{"bsonType": "objectId"},
			"name": bson.M{"bsonType": "string"},
			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"rider", "stable_owner", "admin"},
			},
			"rank_points": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"is_trusted":  bson.M{"bsonType": "bool"},
		},
	},
}
