package chatsession

import (
	"context"
	"fmt"

	"homevia/apperr"
	"homevia/models"
)

// RoomGate authorizes websocket joins: the session must still be ACTIVE
// and the caller must be one of the meeting's participants.
type RoomGate struct {
	mgr *Manager
}

func NewRoomGate(mgr *Manager) *RoomGate {
	return &RoomGate{mgr: mgr}
}

func (g *RoomGate) Authorize(ctx context.Context, roomToken, userID string) error {
	session, err := g.mgr.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return err
	}
	if session.Status != models.ChatActive {
		return fmt.Errorf("chat room %s is closed: %w", roomToken, apperr.ErrInvalidState)
	}

	customerID, sellerID, err := g.mgr.participants.MeetingParticipants(ctx, session.MeetingID)
	if err != nil {
		return err
	}
	if userID != customerID && userID != sellerID {
		return apperr.Forbiddenf("user %s is not a participant in chat %s", userID, roomToken)
	}
	return nil
}
