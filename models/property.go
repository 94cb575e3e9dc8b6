package models

import "time"

type Property struct {
	PropertyID  string    `json:"propertyid" bson:"propertyid"`
	OwnerID     string    `json:"ownerid" bson:"ownerid"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Address     string    `json:"address" bson:"address"`
	HouseNumber string    `json:"house_number,omitempty" bson:"house_number,omitempty"`
	City        string    `json:"city" bson:"city"`
	District    string    `json:"district,omitempty" bson:"district,omitempty"`
	Price       float64   `json:"price" bson:"price"`
	Bedrooms    int       `json:"bedrooms,omitempty" bson:"bedrooms,omitempty"`
	Latitude    float64   `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty" bson:"longitude,omitempty"`
	Amenities   []string  `json:"amenities,omitempty" bson:"amenities,omitempty"`
	Images      []string  `json:"images,omitempty" bson:"images,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`

	// Editable is set per-response for authenticated callers who may
	// modify the listing. Never persisted.
	Editable bool `json:"editable,omitempty" bson:"-"`
}

type Amenity struct {
	AmenityID string `json:"amenityid" bson:"amenityid"`
	Name      string `json:"name" bson:"name"`
}
