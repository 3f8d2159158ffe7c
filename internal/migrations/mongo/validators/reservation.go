package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"equipmentType",
			"equipmentId",
			"orderId",
			"date",
			"startTime",
			"endTime",
			"status",
			"createdAt",
			"updatedAt",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"equipmentType": bson.M{
				"bsonType": "string",
				"enum":     []string{"containers", "excavators"},
			},

			"equipmentId": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"orderId": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"date":    dateOnly,
			"endDate": dateOnly,

			"startTime": clockTime,
			"endTime":   clockTime,

			"reservationType": bson.M{
				"bsonType": "string",
				"enum":     []string{"time", "days", "weeks", "months"},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"active", "cancelled"},
			},

			"calendarEventId": bson.M{
				"bsonType":  "string",
				"maxLength": 1024,
			},

			"summary": bson.M{
				"bsonType":  "string",
				"maxLength": 300,
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

var dateOnly = bson.M{
	"bsonType": "string",
	"pattern":  `^\d{4}-\d{2}-\d{2}$`,
}

var clockTime = bson.M{
	"bsonType": "string",
	"pattern":  `^([01]\d|2[0-3]):[0-5]\d$`,
}
