package models

import "time"

type Review struct {
	ReviewID   string    `json:"reviewid" bson:"reviewid"`
	PropertyID string    `json:"propertyid" bson:"propertyid"`
	UserID     string    `json:"userid" bson:"userid"`
	Rating     int       `json:"rating" bson:"rating"` // 1..5
	Comment    string    `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
