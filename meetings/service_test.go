package meetings

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"homevia/apperr"
	"homevia/models"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	meetings map[string]models.Meeting
	property models.Property
	customer models.User
	seller   models.User
}

func (s *fakeStore) Insert(_ context.Context, m models.Meeting) error {
	s.meetings[m.MeetingID] = m
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (models.Meeting, error) {
	m, ok := s.meetings[id]
	if !ok {
		return models.Meeting{}, apperr.NotFoundf("meeting %s", id)
	}
	return m, nil
}

func (s *fakeStore) TransitionStatus(_ context.Context, id string, from, to models.MeetingStatus) (models.Meeting, error) {
	m, ok := s.meetings[id]
	if !ok {
		return models.Meeting{}, apperr.NotFoundf("meeting %s", id)
	}
	if m.Status != from {
		return models.Meeting{}, fmt.Errorf("meeting %s is %s, not %s: %w", id, m.Status, from, apperr.ErrInvalidTransition)
	}
	m.Status = to
	s.meetings[id] = m
	return m, nil
}

func (s *fakeStore) ApplyProposal(_ context.Context, id, date, tm, note string) (models.Meeting, error) {
	m, ok := s.meetings[id]
	if !ok {
		return models.Meeting{}, apperr.NotFoundf("meeting %s", id)
	}
	if m.Status != models.MeetingPending {
		return models.Meeting{}, fmt.Errorf("meeting %s is %s: %w", id, m.Status, apperr.ErrInvalidTransition)
	}
	m.Status = models.MeetingProposedChange
	m.MeetingDate, m.MeetingTime, m.SellerNote = date, tm, note
	s.meetings[id] = m
	return m, nil
}

func (s *fakeStore) View(ctx context.Context, id string) (models.MeetingView, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return models.MeetingView{}, err
	}
	return models.MeetingView{
		Meeting:  m,
		Property: s.property,
		Customer: s.customer.Profile(),
		Seller:   s.seller.Profile(),
	}, nil
}

func (s *fakeStore) ListByCustomer(ctx context.Context, customerID string) ([]models.MeetingView, error) {
	var out []models.MeetingView
	for id, m := range s.meetings {
		if m.CustomerID == customerID {
			v, _ := s.View(ctx, id)
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeStore) ListBySeller(ctx context.Context, sellerID string) ([]models.MeetingView, error) {
	if sellerID != s.seller.UserID {
		return nil, nil
	}
	var out []models.MeetingView
	for id := range s.meetings {
		v, _ := s.View(ctx, id)
		out = append(out, v)
	}
	return out, nil
}

type fakeDirectory struct {
	property models.Property
	users    map[string]models.User
}

func (d *fakeDirectory) GetUser(_ context.Context, id string) (models.User, error) {
	u, ok := d.users[id]
	if !ok {
		return models.User{}, apperr.NotFoundf("user %s", id)
	}
	return u, nil
}

func (d *fakeDirectory) GetProperty(_ context.Context, id string) (models.Property, error) {
	if id != d.property.PropertyID {
		return models.Property{}, apperr.NotFoundf("property %s", id)
	}
	return d.property, nil
}

type fakeSessions struct {
	created  []string // meeting ids
	sessions map[string]models.ChatSession
	err      error
}

func (f *fakeSessions) CreateForMeeting(_ context.Context, meeting models.Meeting) (models.ChatSession, error) {
	if f.err != nil {
		return models.ChatSession{}, f.err
	}
	f.created = append(f.created, meeting.MeetingID)
	session := models.ChatSession{
		SessionID: "s-" + meeting.MeetingID,
		RoomToken: "tok-" + meeting.MeetingID,
		MeetingID: meeting.MeetingID,
		Status:    models.ChatActive,
	}
	f.sessions[session.RoomToken] = session
	return session, nil
}

func (f *fakeSessions) FindByRoomToken(_ context.Context, token string) (models.ChatSession, error) {
	session, ok := f.sessions[token]
	if !ok {
		return models.ChatSession{}, apperr.NotFoundf("chat session %s", token)
	}
	return session, nil
}

type fakeNotifier struct {
	events []models.MeetingStatus
}

func (f *fakeNotifier) MeetingEvent(_ models.MeetingView, event models.MeetingStatus) {
	f.events = append(f.events, event)
}

type fakeEmitter struct {
	topics []string
}

func (f *fakeEmitter) Emit(_ context.Context, topic string, _ any) {
	f.topics = append(f.topics, topic)
}

type fixture struct {
	svc      *Service
	store    *fakeStore
	sessions *fakeSessions
	notifier *fakeNotifier
	emitter  *fakeEmitter
}

func newFixture() *fixture {
	property := models.Property{PropertyID: "p1", OwnerID: "seller-1", Title: "Sunny Loft", Address: "Main St 1", City: "Berlin"}
	customer := models.User{UserID: "cust-1", Username: "anna", Email: "anna@example.com", Role: models.RoleCustomer}
	seller := models.User{UserID: "seller-1", Username: "bert", Email: "bert@example.com", Role: models.RoleSeller}

	store := &fakeStore{
		meetings: map[string]models.Meeting{},
		property: property,
		customer: customer,
		seller:   seller,
	}
	dir := &fakeDirectory{
		property: property,
		users:    map[string]models.User{"cust-1": customer, "seller-1": seller},
	}
	sessions := &fakeSessions{sessions: map[string]models.ChatSession{}}
	notifier := &fakeNotifier{}
	emitter := &fakeEmitter{}

	return &fixture{
		svc:      NewService(store, dir, sessions, notifier, emitter),
		store:    store,
		sessions: sessions,
		notifier: notifier,
		emitter:  emitter,
	}
}

func (f *fixture) createPending(t *testing.T) models.Meeting {
	t.Helper()
	meeting, err := f.svc.Create(context.Background(), "p1", "cust-1", "2026-09-10", "14:30", "hi")
	require.NoError(t, err)
	return meeting
}

func TestCreateStartsPending(t *testing.T) {
	f := newFixture()

	meeting := f.createPending(t)

	require.Equal(t, models.MeetingPending, meeting.Status)
	require.Equal(t, []models.MeetingStatus{models.MeetingPending}, f.notifier.events)
	require.Equal(t, []string{FeedTopic}, f.emitter.topics)
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "p1", "cust-1", "10.09.2026", "14:30", "")
	require.True(t, errors.Is(err, apperr.ErrInvalidInput))

	_, err = f.svc.Create(ctx, "p1", "cust-1", "2026-09-10", "2pm", "")
	require.True(t, errors.Is(err, apperr.ErrInvalidInput))

	_, err = f.svc.Create(ctx, "nope", "cust-1", "2026-09-10", "14:30", "")
	require.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSetStatusScheduleOpensChat(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)

	updated, err := f.svc.SetStatus(context.Background(), meeting.MeetingID, models.MeetingScheduled, "seller-1")
	require.NoError(t, err)
	require.Equal(t, models.MeetingScheduled, updated.Status)
	require.Equal(t, []string{meeting.MeetingID}, f.sessions.created)
}

func TestSetStatusRejectNoChat(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)

	updated, err := f.svc.SetStatus(context.Background(), meeting.MeetingID, models.MeetingRejected, "seller-1")
	require.NoError(t, err)
	require.Equal(t, models.MeetingRejected, updated.Status)
	require.Empty(t, f.sessions.created)
}

func TestSetStatusOnlyOwner(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)

	_, err := f.svc.SetStatus(context.Background(), meeting.MeetingID, models.MeetingScheduled, "cust-1")
	require.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestSetStatusOnlyFromPending(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, meeting.MeetingID, models.MeetingScheduled, "seller-1")
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, meeting.MeetingID, models.MeetingRejected, "seller-1")
	require.True(t, errors.Is(err, apperr.ErrInvalidTransition))
}

func TestSetStatusRefusesIndirectStates(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)

	for _, status := range []models.MeetingStatus{
		models.MeetingPending,
		models.MeetingProposedChange,
		models.MeetingChatCompleted,
		models.MeetingClosed,
	} {
		_, err := f.svc.SetStatus(context.Background(), meeting.MeetingID, status, "seller-1")
		require.True(t, errors.Is(err, apperr.ErrInvalidTransition), "status %s must not be settable directly", status)
	}
}

func TestProposeChangeThenConfirm(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)
	ctx := context.Background()

	proposed, err := f.svc.ProposeChange(ctx, meeting.MeetingID, "2026-09-12", "10:00", "mornings only", "seller-1")
	require.NoError(t, err)
	require.Equal(t, models.MeetingProposedChange, proposed.Status)
	require.Equal(t, "2026-09-12", proposed.MeetingDate)
	require.Equal(t, "mornings only", proposed.SellerNote)

	// only the customer can confirm
	_, err = f.svc.ConfirmProposedChange(ctx, meeting.MeetingID, "seller-1")
	require.True(t, errors.Is(err, apperr.ErrForbidden))

	confirmed, err := f.svc.ConfirmProposedChange(ctx, meeting.MeetingID, "cust-1")
	require.NoError(t, err)
	require.Equal(t, models.MeetingScheduled, confirmed.Status)
	require.Equal(t, []string{meeting.MeetingID}, f.sessions.created)
}

func TestProposeChangeOnlyFromPending(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)
	ctx := context.Background()

	for _, status := range []models.MeetingStatus{
		models.MeetingScheduled,
		models.MeetingRejected,
		models.MeetingProposedChange,
		models.MeetingChatCompleted,
		models.MeetingClosed,
	} {
		m := f.store.meetings[meeting.MeetingID]
		m.Status = status
		f.store.meetings[meeting.MeetingID] = m

		_, err := f.svc.ProposeChange(ctx, meeting.MeetingID, "2026-09-12", "10:00", "", "seller-1")
		require.True(t, errors.Is(err, apperr.ErrInvalidTransition), "proposal from %s must fail", status)
	}
}

func TestProposeChangeAfterScheduling(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, meeting.MeetingID, models.MeetingScheduled, "seller-1")
	require.NoError(t, err)

	_, err = f.svc.ProposeChange(ctx, meeting.MeetingID, "2026-09-12", "10:00", "", "seller-1")
	require.True(t, errors.Is(err, apperr.ErrInvalidTransition))
}

func TestCompleteChatIsIdempotent(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, meeting.MeetingID, models.MeetingScheduled, "seller-1")
	require.NoError(t, err)
	token := "tok-" + meeting.MeetingID

	require.NoError(t, f.svc.CompleteChat(ctx, token))
	got, err := f.store.Get(ctx, meeting.MeetingID)
	require.NoError(t, err)
	require.Equal(t, models.MeetingChatCompleted, got.Status)

	// second completion is a no-op, not an error
	require.NoError(t, f.svc.CompleteChat(ctx, token))
	got, err = f.store.Get(ctx, meeting.MeetingID)
	require.NoError(t, err)
	require.Equal(t, models.MeetingChatCompleted, got.Status)
}

func TestCloseRequiresParticipant(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, meeting.MeetingID, models.MeetingScheduled, "seller-1")
	require.NoError(t, err)
	require.NoError(t, f.svc.CompleteChat(ctx, "tok-"+meeting.MeetingID))

	_, err = f.svc.Close(ctx, meeting.MeetingID, "somebody-else")
	require.True(t, errors.Is(err, apperr.ErrForbidden))

	closed, err := f.svc.Close(ctx, meeting.MeetingID, "cust-1")
	require.NoError(t, err)
	require.Equal(t, models.MeetingClosed, closed.Status)
}

func TestViewParticipantGate(t *testing.T) {
	f := newFixture()
	meeting := f.createPending(t)
	ctx := context.Background()

	_, err := f.svc.View(ctx, meeting.MeetingID, "cust-1")
	require.NoError(t, err)
	_, err = f.svc.View(ctx, meeting.MeetingID, "seller-1")
	require.NoError(t, err)

	_, err = f.svc.View(ctx, meeting.MeetingID, "stranger")
	require.True(t, errors.Is(err, apperr.ErrForbidden))
}
