package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expiresAt", "createdAt"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"owner": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"expiresAt": bson.M{
				"bsonType": "date",
			},
			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
