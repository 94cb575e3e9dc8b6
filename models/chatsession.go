package models

import "time"

type ChatStatus string

const (
	ChatActive    ChatStatus = "ACTIVE"
	ChatDestroyed ChatStatus = "DESTROYED"
)

// ChatSession is the ephemeral room unlocked when a meeting reaches
// SCHEDULED. One session per meeting, ever; a destroyed session is never
// reactivated.
type ChatSession struct {
	SessionID   string     `json:"sessionid" bson:"sessionid"`
	RoomToken   string     `json:"room_token" bson:"room_token"`
	MeetingID   string     `json:"meetingid" bson:"meetingid"`
	Status      ChatStatus `json:"status" bson:"status"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	DestroyedAt time.Time  `json:"destroyed_at,omitempty" bson:"destroyed_at,omitempty"`
}

type ChatMessage struct {
	MessageID string `json:"id" bson:"id"`
	Room      string `json:"room" bson:"room"`
	SenderID  string `json:"senderId" bson:"senderId"`
	Content   string `json:"content,omitempty" bson:"content,omitempty"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}
