package validators

import "go.mongodb.org/mongo-driver/bson"

// VenueValidator covers only the fields bookings read. Venues are owned elsewhere.
var VenueValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "organizer", "capacity", "base_price"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "string"},
			"title":     bson.M{"bsonType": "string"},
			"organizer": bson.M{"bsonType": "string", "minLength": 1},
			"contact": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"email": bson.M{"bsonType": "string"},
				},
			},
			"capacity": bson.M{
				"bsonType": "object",
				"required": []string{"max"},
				"properties": bson.M{
					"min": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
					"max": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
				},
			},
			"base_price": amount,
		},
	},
}
