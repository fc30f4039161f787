package validators

import "go.mongodb.org/mongo-driver/bson"

var AvailabilitySlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"horse_id", "start_time", "end_time", "status"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"horse_id":   objectIDHex,
			"start_time": bson.M{"bsonType": "date"},
			"end_time":   bson.M{"bsonType": "date"},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"open", "booked"},
			},
			"reservation_id": objectIDHex,
		},
	},
}

var PromoCodeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"code", "used_count"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"code":       bson.M{"bsonType": "string", "minLength": 1},
			"used_count": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
		},
	},
}

var SkillOverrideValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"rider_id", "horse_id", "status"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "objectId"},
			"rider_id": objectIDHex,
			"horse_id": objectIDHex,
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "approved", "rejected"},
			},
		},
	},
}

// HorseLockValidator keys lock documents by the horse id string.
var HorseLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "seq"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       objectIDHex,
			"seq":       bson.M{"bsonType": []string{"int", "long"}},
			"locked_at": bson.M{"bsonType": "date"},
		},
	},
}

var FeedbackValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"reservation_id"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":            bson.M{"bsonType": "objectId"},
			"reservation_id": objectIDHex,
		},
	},
}
