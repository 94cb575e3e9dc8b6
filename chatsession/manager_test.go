package chatsession

import (
	"context"
	"errors"
	"testing"
	"time"

	"homevia/apperr"
	"homevia/models"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	byMeeting map[string]models.ChatSession
	byToken   map[string]models.ChatSession
}

func newMemStore() *memStore {
	return &memStore{
		byMeeting: map[string]models.ChatSession{},
		byToken:   map[string]models.ChatSession{},
	}
}

func (s *memStore) UpsertForMeeting(_ context.Context, session models.ChatSession) (models.ChatSession, error) {
	if existing, ok := s.byMeeting[session.MeetingID]; ok {
		return existing, nil
	}
	s.byMeeting[session.MeetingID] = session
	s.byToken[session.RoomToken] = session
	return session, nil
}

func (s *memStore) FindByRoomToken(_ context.Context, token string) (models.ChatSession, error) {
	session, ok := s.byToken[token]
	if !ok {
		return models.ChatSession{}, apperr.NotFoundf("chat session %s", token)
	}
	return session, nil
}

func (s *memStore) FindByMeetingID(_ context.Context, meetingID string) (models.ChatSession, error) {
	session, ok := s.byMeeting[meetingID]
	if !ok {
		return models.ChatSession{}, apperr.NotFoundf("chat session for meeting %s", meetingID)
	}
	return session, nil
}

func (s *memStore) MarkDestroyed(_ context.Context, token string, at time.Time) error {
	session, ok := s.byToken[token]
	if !ok {
		return apperr.NotFoundf("chat session %s", token)
	}
	session.Status = models.ChatDestroyed
	session.DestroyedAt = at
	s.byToken[token] = session
	s.byMeeting[session.MeetingID] = session
	return nil
}

type staticParticipants struct {
	customerID, sellerID string
}

func (p staticParticipants) MeetingParticipants(context.Context, string) (string, string, error) {
	return p.customerID, p.sellerID, nil
}

func newTestManager() (*Manager, *memStore) {
	store := newMemStore()
	return NewManager(store, staticParticipants{customerID: "cust-1", sellerID: "seller-1"}), store
}

func scheduledMeeting() models.Meeting {
	return models.Meeting{MeetingID: "m1", CustomerID: "cust-1", Status: models.MeetingScheduled}
}

func TestCreateForMeetingRequiresScheduled(t *testing.T) {
	mgr, _ := newTestManager()

	for _, status := range []models.MeetingStatus{
		models.MeetingPending,
		models.MeetingRejected,
		models.MeetingProposedChange,
		models.MeetingChatCompleted,
		models.MeetingClosed,
	} {
		meeting := scheduledMeeting()
		meeting.Status = status
		_, err := mgr.CreateForMeeting(context.Background(), meeting)
		require.True(t, errors.Is(err, apperr.ErrInvalidState), "status %s must not open a chat", status)
	}
}

func TestCreateForMeetingIsIdempotent(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	first, err := mgr.CreateForMeeting(ctx, scheduledMeeting())
	require.NoError(t, err)
	require.Equal(t, models.ChatActive, first.Status)
	require.NotEmpty(t, first.RoomToken)

	second, err := mgr.CreateForMeeting(ctx, scheduledMeeting())
	require.NoError(t, err)
	require.Equal(t, first.SessionID, second.SessionID)
	require.Equal(t, first.RoomToken, second.RoomToken)
}

func TestDestroyByRoomTokenParticipantsOnly(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	session, err := mgr.CreateForMeeting(ctx, scheduledMeeting())
	require.NoError(t, err)

	err = mgr.DestroyByRoomToken(ctx, session.RoomToken, "stranger")
	require.True(t, errors.Is(err, apperr.ErrForbidden))

	require.NoError(t, mgr.DestroyByRoomToken(ctx, session.RoomToken, "seller-1"))

	got, err := mgr.FindByRoomToken(ctx, session.RoomToken)
	require.NoError(t, err)
	require.Equal(t, models.ChatDestroyed, got.Status)
	require.False(t, got.DestroyedAt.IsZero())
}

func TestDestroyUnknownToken(t *testing.T) {
	mgr, _ := newTestManager()
	err := mgr.DestroyByRoomToken(context.Background(), "missing", "cust-1")
	require.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestFindActiveByMeetingID(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	// no session yet: absence, not an error
	got, err := mgr.FindActiveByMeetingID(ctx, "m1")
	require.NoError(t, err)
	require.Nil(t, got)

	session, err := mgr.CreateForMeeting(ctx, scheduledMeeting())
	require.NoError(t, err)

	got, err = mgr.FindActiveByMeetingID(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, session.RoomToken, got.RoomToken)

	// destroyed sessions are reported as absent too
	require.NoError(t, mgr.DestroyByRoomToken(ctx, session.RoomToken, "cust-1"))
	got, err = mgr.FindActiveByMeetingID(ctx, "m1")
	require.NoError(t, err)
	require.Nil(t, got)
}
