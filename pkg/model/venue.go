package model

// Venue is the read-only view of a venue as supplied by the venue directory.
type Venue struct {
	ID        string        `json:"id" bson:"_id"`
	Title     string        `json:"title" bson:"title"`
	Organizer string        `json:"organizer" bson:"organizer"`
	Contact   VenueContact  `json:"contact" bson:"contact"`
	Capacity  VenueCapacity `json:"capacity" bson:"capacity"`
	BasePrice int64         `json:"base_price" bson:"base_price"`
	Currency  string        `json:"currency,omitempty" bson:"currency,omitempty"`
	City      string        `json:"city,omitempty" bson:"city,omitempty"`
}

// VenueContact is how the organizer of the venue is reached.
type VenueContact struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type VenueCapacity struct {
	Min int `json:"min" bson:"min"`
	Max int `json:"max" bson:"max"`
}
