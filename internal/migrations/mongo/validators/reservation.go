package validators

import "go.mongodb.org/mongo-driver/bson"

var objectIDHex = bson.M{
	"bsonType":  "string",
	"minLength": 24,
	"maxLength": 24,
}

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"rider_id",
			"stable_id",
			"horse_id",
			"start_time",
			"end_time",
			"status",
			"total_price",
			"commission_amount",
			"payment_method",
			"batch_id",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"rider_id":      objectIDHex,
			"stable_id":     objectIDHex,
			"horse_id":      objectIDHex,
			"promo_code_id": objectIDHex,

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"commission_amount": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"payment_method": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"batch_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
