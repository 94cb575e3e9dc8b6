// Package chatsession owns the lifecycle of the chat room tied to a
// meeting. A session exists only once a meeting is SCHEDULED, there is at
// most one per meeting ever, and a destroyed session is never revived.
package chatsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homevia/apperr"
	"homevia/models"
	"homevia/utils"
)

// Store persists chat sessions. UpsertForMeeting must be atomic
// insert-if-absent on the meeting id (a unique index, not check-then-
// create), so concurrent callers racing to SCHEDULED resolve to one
// session.
type Store interface {
	UpsertForMeeting(ctx context.Context, session models.ChatSession) (models.ChatSession, error)
	FindByRoomToken(ctx context.Context, token string) (models.ChatSession, error)
	FindByMeetingID(ctx context.Context, meetingID string) (models.ChatSession, error)
	MarkDestroyed(ctx context.Context, token string, at time.Time) error
}

// Participants resolves the two users allowed to act on a meeting's chat.
type Participants interface {
	MeetingParticipants(ctx context.Context, meetingID string) (customerID, sellerID string, err error)
}

type Manager struct {
	store        Store
	participants Participants
}

func NewManager(store Store, participants Participants) *Manager {
	return &Manager{store: store, participants: participants}
}

// CreateForMeeting opens the chat room for a scheduled meeting. Calling
// it again for the same meeting returns the existing session unchanged.
func (m *Manager) CreateForMeeting(ctx context.Context, meeting models.Meeting) (models.ChatSession, error) {
	if meeting.Status != models.MeetingScheduled {
		return models.ChatSession{}, fmt.Errorf(
			"cannot open a chat room for meeting %s in status %s: %w",
			meeting.MeetingID, meeting.Status, apperr.ErrInvalidState)
	}

	session := models.ChatSession{
		SessionID: utils.GenerateRandomDigitString(22),
		RoomToken: utils.GetUUID(),
		MeetingID: meeting.MeetingID,
		Status:    models.ChatActive,
		CreatedAt: time.Now(),
	}
	return m.store.UpsertForMeeting(ctx, session)
}

// DestroyByRoomToken closes the room. Only the meeting's customer or the
// property owner may do this. The meeting status is untouched; callers
// follow up with the meeting workflow's CompleteChat.
func (m *Manager) DestroyByRoomToken(ctx context.Context, token, callerID string) error {
	session, err := m.store.FindByRoomToken(ctx, token)
	if err != nil {
		return err
	}

	customerID, sellerID, err := m.participants.MeetingParticipants(ctx, session.MeetingID)
	if err != nil {
		return err
	}
	if callerID != customerID && callerID != sellerID {
		return apperr.Forbiddenf("user %s is not a participant in chat %s", callerID, token)
	}

	return m.store.MarkDestroyed(ctx, token, time.Now())
}

// FindActiveByMeetingID returns the meeting's session only while it is
// ACTIVE. No session, or a destroyed one, is reported as absence — not an
// error.
func (m *Manager) FindActiveByMeetingID(ctx context.Context, meetingID string) (*models.ChatSession, error) {
	session, err := m.store.FindByMeetingID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if session.Status != models.ChatActive {
		return nil, nil
	}
	return &session, nil
}

// FindByRoomToken exposes the raw lookup for the meeting workflow and
// the websocket layer.
func (m *Manager) FindByRoomToken(ctx context.Context, token string) (models.ChatSession, error) {
	return m.store.FindByRoomToken(ctx, token)
}
