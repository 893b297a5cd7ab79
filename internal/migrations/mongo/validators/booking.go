package validators

import "go.mongodb.org/mongo-driver/bson"

var (
	integer = bson.M{"bsonType": []string{"int", "long"}}
	amount  = bson.M{"bsonType": []string{"int", "long"}, "minimum": 0}
)

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"customer",
			"organizer",
			"venue",
			"customer_details",
			"event_details",
			"schedule",
			"pricing",
			"status",
			"payment_status",
			"version",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"customer":  bson.M{"bsonType": "string", "minLength": 1},
			"organizer": bson.M{"bsonType": "string", "minLength": 1},
			"venue":     bson.M{"bsonType": "string", "minLength": 1},

			"customer_details": bson.M{
				"bsonType": "object",
				"required": []string{"name", "email", "phone"},
				"properties": bson.M{
					"name":  bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
					"email": bson.M{"bsonType": "string", "maxLength": 254},
					"phone": bson.M{"bsonType": "string", "maxLength": 32},
				},
			},

			"event_details": bson.M{
				"bsonType": "object",
				"required": []string{"title", "event_type", "expected_guests"},
				"properties": bson.M{
					"title":           bson.M{"bsonType": "string", "minLength": 2, "maxLength": 200},
					"event_type":      bson.M{"bsonType": "string"},
					"expected_guests": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
				},
			},

			"schedule": bson.M{
				"bsonType": "object",
				"required": []string{"event_date", "start_time", "end_time"},
				"properties": bson.M{
					"event_date": bson.M{"bsonType": "date"},
					"start_time": bson.M{"bsonType": "string", "pattern": `^([01][0-9]|2[0-3]):[0-5][0-9]$`},
					"end_time":   bson.M{"bsonType": "string", "pattern": `^([01][0-9]|2[0-3]):[0-5][0-9]$`},
				},
			},

			"pricing": bson.M{
				"bsonType": "object",
				"required": []string{"base_amount", "total_amount", "advance_paid", "remaining_amount"},
				"properties": bson.M{
					"base_amount":      amount,
					"taxes":            amount,
					"discount":         amount,
					"total_amount":     amount,
					"advance_paid":     amount,
					"remaining_amount": amount,
					"overpaid_amount":  amount,
					"additional_charges": bson.M{
						"bsonType": []string{"array", "null"},
						"items": bson.M{
							"bsonType": "object",
							"required": []string{"name", "amount"},
						},
					},
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
					"rejected",
				},
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"partial",
					"completed",
					"refunded",
				},
			},

			"payment_details": bson.M{"bsonType": []string{"array", "null"}},
			"communication":   bson.M{"bsonType": []string{"array", "null"}},

			"review": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"rating": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 5},
				},
			},

			"version":    integer,
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
