package models

import "time"

// BookingStatus has no transition graph: the owner (or an admin) may set
// any valid value at any time. That looseness is deliberate and differs
// from the meeting workflow.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingRejected  BookingStatus = "REJECTED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingRejected:
		return true
	}
	return false
}

type Booking struct {
	BookingID    string        `json:"bookingid" bson:"bookingid"`
	PropertyID   string        `json:"propertyid" bson:"propertyid"`
	CustomerID   string        `json:"customerid" bson:"customerid"`
	CheckInDate  string        `json:"check_in" bson:"check_in"`   // YYYY-MM-DD
	CheckOutDate string        `json:"check_out" bson:"check_out"` // YYYY-MM-DD
	Contact      string        `json:"contact,omitempty" bson:"contact,omitempty"`
	Status       BookingStatus `json:"status" bson:"status"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
}

// BookingView resolves the property and the two parties for notifications
// and list endpoints.
type BookingView struct {
	Booking  `bson:",inline"`
	Property Property            `json:"property" bson:"property"`
	Customer UserProfileResponse `json:"customer" bson:"customer"`
	Seller   UserProfileResponse `json:"seller" bson:"seller"`
}
