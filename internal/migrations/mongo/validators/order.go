package validators

import "go.mongodb.org/mongo-driver/bson"

// OrderValidator expects hex string ids; the service assigns them before reserving.
var OrderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"customerName",
			"customerPhone",
			"serviceType",
			"orderDate",
			"time",
			"status",
			"createdAt",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"customerName": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"customerPhone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{1,14}$`,
			},

			"customerEmail": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"address": bson.M{
				"bsonType":  "string",
				"maxLength": 300,
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"serviceType": bson.M{
				"bsonType": "string",
				"enum":     []string{"containers", "excavators", "constructions"},
			},

			"equipmentId": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"orderDate": dateOnly,
			"endDate":   dateOnly,

			"time":    clockTime,
			"endTime": clockTime,

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "in_progress", "completed", "cancelled"},
			},

			"reservationType": bson.M{
				"bsonType": "string",
				"enum":     []string{"time", "days", "weeks", "months"},
			},

			"quantity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  366,
			},

			"reservationId": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"createdAt": bson.M{
				"bsonType": "date",
			},

			"updatedAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
