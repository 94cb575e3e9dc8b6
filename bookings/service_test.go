package bookings

import (
	"context"
	"errors"
	"testing"

	"homevia/apperr"
	"homevia/models"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	bookings map[string]models.Booking
	property models.Property
	customer models.User
	seller   models.User
}

func (s *fakeStore) Insert(_ context.Context, b models.Booking) error {
	s.bookings[b.BookingID] = b
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, apperr.NotFoundf("booking %s", id)
	}
	return b, nil
}

func (s *fakeStore) SetStatus(_ context.Context, id string, status models.BookingStatus) (models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, apperr.NotFoundf("booking %s", id)
	}
	b.Status = status
	s.bookings[id] = b
	return b, nil
}

func (s *fakeStore) View(ctx context.Context, id string) (models.BookingView, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return models.BookingView{}, err
	}
	return models.BookingView{
		Booking:  b,
		Property: s.property,
		Customer: s.customer.Profile(),
		Seller:   s.seller.Profile(),
	}, nil
}

func (s *fakeStore) ListByCustomer(ctx context.Context, customerID string) ([]models.BookingView, error) {
	var out []models.BookingView
	for id, b := range s.bookings {
		if b.CustomerID == customerID {
			v, _ := s.View(ctx, id)
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeStore) ListByProperty(ctx context.Context, propertyID string) ([]models.BookingView, error) {
	var out []models.BookingView
	for id, b := range s.bookings {
		if b.PropertyID == propertyID {
			v, _ := s.View(ctx, id)
			out = append(out, v)
		}
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

type fakeNotifier struct {
	events []models.BookingStatus
}

func (f *fakeNotifier) BookingEvent(_ models.BookingView, event models.BookingStatus) {
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
	notifier *fakeNotifier
	emitter  *fakeEmitter
}

func newFixture() *fixture {
	property := models.Property{PropertyID: "p1", OwnerID: "seller-1", Title: "Sunny Loft"}
	customer := models.User{UserID: "cust-1", Username: "anna", Role: models.RoleCustomer}
	seller := models.User{UserID: "seller-1", Username: "bert", Role: models.RoleSeller}

	store := &fakeStore{
		bookings: map[string]models.Booking{},
		property: property,
		customer: customer,
		seller:   seller,
	}
	dir := &fakeDirectory{
		property: property,
		users:    map[string]models.User{"cust-1": customer, "seller-1": seller},
	}
	notifier := &fakeNotifier{}
	emitter := &fakeEmitter{}

	return &fixture{
		svc:      NewService(store, dir, notifier, emitter),
		notifier: notifier,
		emitter:  emitter,
	}
}

func (f *fixture) createPending(t *testing.T) models.Booking {
	t.Helper()
	booking, err := f.svc.Create(context.Background(), "p1", "cust-1", "2026-10-01", "2026-10-05", "+4915112345678")
	require.NoError(t, err)
	return booking
}

func TestCreateStartsPendingAndNotifies(t *testing.T) {
	f := newFixture()

	booking := f.createPending(t)

	require.Equal(t, models.BookingPending, booking.Status)
	require.Equal(t, []models.BookingStatus{models.BookingPending}, f.notifier.events)
	require.Equal(t, []string{FeedTopic}, f.emitter.topics)
}

func TestCreateValidatesStay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "p1", "cust-1", "01.10.2026", "2026-10-05", "")
	require.True(t, errors.Is(err, apperr.ErrInvalidInput))

	// check-out before check-in
	_, err = f.svc.Create(ctx, "p1", "cust-1", "2026-10-05", "2026-10-01", "")
	require.True(t, errors.Is(err, apperr.ErrInvalidInput))

	// zero-night stay
	_, err = f.svc.Create(ctx, "p1", "cust-1", "2026-10-01", "2026-10-01", "")
	require.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestSetStatusOwnerOnly(t *testing.T) {
	f := newFixture()
	booking := f.createPending(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, booking.BookingID, models.BookingConfirmed, "cust-1", models.RoleCustomer)
	require.True(t, errors.Is(err, apperr.ErrForbidden))

	updated, err := f.svc.SetStatus(ctx, booking.BookingID, models.BookingConfirmed, "seller-1", models.RoleSeller)
	require.NoError(t, err)
	require.Equal(t, models.BookingConfirmed, updated.Status)
}

func TestSetStatusAdminOverride(t *testing.T) {
	f := newFixture()
	booking := f.createPending(t)

	updated, err := f.svc.SetStatus(context.Background(), booking.BookingID, models.BookingRejected, "admin-1", models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.BookingRejected, updated.Status)
}

func TestSetStatusHasNoTransitionGraph(t *testing.T) {
	f := newFixture()
	booking := f.createPending(t)
	ctx := context.Background()

	// any valid status can follow any other
	for _, status := range []models.BookingStatus{
		models.BookingConfirmed,
		models.BookingRejected,
		models.BookingPending,
		models.BookingConfirmed,
	} {
		updated, err := f.svc.SetStatus(ctx, booking.BookingID, status, "seller-1", models.RoleSeller)
		require.NoError(t, err)
		require.Equal(t, status, updated.Status)
	}
}

func TestResetToPendingSkipsNotification(t *testing.T) {
	f := newFixture()
	booking := f.createPending(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, booking.BookingID, models.BookingConfirmed, "seller-1", models.RoleSeller)
	require.NoError(t, err)
	_, err = f.svc.SetStatus(ctx, booking.BookingID, models.BookingPending, "seller-1", models.RoleSeller)
	require.NoError(t, err)

	// create + confirm notified; the reset must not replay the "new
	// booking request" message
	require.Equal(t, []models.BookingStatus{models.BookingPending, models.BookingConfirmed}, f.notifier.events)
	// the feed still sees every change
	require.Len(t, f.emitter.topics, 3)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture()
	booking := f.createPending(t)

	_, err := f.svc.SetStatus(context.Background(), booking.BookingID, "SHIPPED", "seller-1", models.RoleSeller)
	require.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestViewAccessGate(t *testing.T) {
	f := newFixture()
	booking := f.createPending(t)
	ctx := context.Background()

	for _, caller := range []struct {
		id   string
		role models.Role
	}{
		{"cust-1", models.RoleCustomer},
		{"seller-1", models.RoleSeller},
		{"admin-1", models.RoleAdmin},
	} {
		_, err := f.svc.View(ctx, booking.BookingID, caller.id, caller.role)
		require.NoError(t, err, "caller %s", caller.id)
	}

	_, err := f.svc.View(ctx, booking.BookingID, "stranger", models.RoleCustomer)
	require.True(t, errors.Is(err, apperr.ErrForbidden))
}
