package models

import "time"

// MeetingStatus is the lifecycle state of a viewing request.
//
// PENDING ─→ SCHEDULED | REJECTED | PROPOSED_CHANGE
// PROPOSED_CHANGE ─→ SCHEDULED
// SCHEDULED ─→ CHAT_COMPLETED
// CHAT_COMPLETED ─→ CLOSED
type MeetingStatus string

const (
	MeetingPending        MeetingStatus = "PENDING"
	MeetingScheduled      MeetingStatus = "SCHEDULED"
	MeetingRejected       MeetingStatus = "REJECTED"
	MeetingProposedChange MeetingStatus = "PROPOSED_CHANGE"
	MeetingChatCompleted  MeetingStatus = "CHAT_COMPLETED"
	MeetingClosed         MeetingStatus = "CLOSED"
)

func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingPending, MeetingScheduled, MeetingRejected,
		MeetingProposedChange, MeetingChatCompleted, MeetingClosed:
		return true
	}
	return false
}

type Meeting struct {
	MeetingID       string        `json:"meetingid" bson:"meetingid"`
	PropertyID      string        `json:"propertyid" bson:"propertyid"`
	CustomerID      string        `json:"customerid" bson:"customerid"`
	MeetingDate     string        `json:"meeting_date" bson:"meeting_date"` // YYYY-MM-DD
	MeetingTime     string        `json:"meeting_time" bson:"meeting_time"` // HH:MM
	CustomerMessage string        `json:"customer_message,omitempty" bson:"customer_message,omitempty"`
	SellerNote      string        `json:"seller_note,omitempty" bson:"seller_note,omitempty"`
	Status          MeetingStatus `json:"status" bson:"status"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// MeetingView is the fully materialized snapshot handed to notification
// builders, live-feed subscribers and list endpoints. The store resolves
// property and counterpart up front so nothing downstream has to chase
// references.
type MeetingView struct {
	Meeting   `bson:",inline"`
	Property  Property            `json:"property" bson:"property"`
	Customer  UserProfileResponse `json:"customer" bson:"customer"`
	Seller    UserProfileResponse `json:"seller" bson:"seller"`
	RoomToken string              `json:"room_token,omitempty" bson:"room_token,omitempty"`
}
