// Package bookings implements stays booked on a property. Unlike the
// meeting workflow there is no transition graph: the property owner (or
// an admin) may set any valid status at any time.
package bookings

import (
	"context"
	"fmt"
	"log"
	"time"

	"homevia/apperr"
	"homevia/models"
	"homevia/mq"
	"homevia/utils"
)

// FeedTopic is the live-feed topic booking snapshots are published on.
const FeedTopic = "bookings"

type Store interface {
	Insert(ctx context.Context, b models.Booking) error
	Get(ctx context.Context, bookingID string) (models.Booking, error)
	SetStatus(ctx context.Context, bookingID string, status models.BookingStatus) (models.Booking, error)
	View(ctx context.Context, bookingID string) (models.BookingView, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.BookingView, error)
	ListByProperty(ctx context.Context, propertyID string) ([]models.BookingView, error)
}

type Directory interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetProperty(ctx context.Context, propertyID string) (models.Property, error)
}

type Notifier interface {
	BookingEvent(b models.BookingView, event models.BookingStatus)
}

type Service struct {
	store    Store
	dir      Directory
	notifier Notifier
	emitter  mq.Emitter
}

func NewService(store Store, dir Directory, notifier Notifier, emitter mq.Emitter) *Service {
	return &Service{store: store, dir: dir, notifier: notifier, emitter: emitter}
}

// Create files a booking request. Stays start PENDING and the owner is
// notified.
func (s *Service) Create(ctx context.Context, propertyID, customerID, checkIn, checkOut, contact string) (models.Booking, error) {
	if err := validateStay(checkIn, checkOut); err != nil {
		return models.Booking{}, err
	}
	if _, err := s.dir.GetProperty(ctx, propertyID); err != nil {
		return models.Booking{}, err
	}
	if _, err := s.dir.GetUser(ctx, customerID); err != nil {
		return models.Booking{}, err
	}

	booking := models.Booking{
		BookingID:    utils.GenerateRandomDigitString(22),
		PropertyID:   propertyID,
		CustomerID:   customerID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Contact:      contact,
		Status:       models.BookingPending,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Insert(ctx, booking); err != nil {
		return models.Booking{}, err
	}

	s.fanout(ctx, booking.BookingID, models.BookingPending, true)
	return booking, nil
}

// SetStatus overwrites the booking status. Admins may always do this;
// otherwise the caller must own the property. The customer is notified
// on CONFIRMED and REJECTED.
func (s *Service) SetStatus(ctx context.Context, bookingID string, status models.BookingStatus, callerID string, callerRole models.Role) (models.Booking, error) {
	if !status.Valid() {
		return models.Booking{}, fmt.Errorf("unknown booking status %q: %w", status, apperr.ErrInvalidInput)
	}

	booking, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if callerRole != models.RoleAdmin {
		property, err := s.dir.GetProperty(ctx, booking.PropertyID)
		if err != nil {
			return models.Booking{}, err
		}
		if property.OwnerID != callerID {
			return models.Booking{}, apperr.Forbiddenf("user %s does not own property %s", callerID, booking.PropertyID)
		}
	}

	updated, err := s.store.SetStatus(ctx, bookingID, status)
	if err != nil {
		return models.Booking{}, err
	}

	// resetting to PENDING is a bookkeeping move, not a new request;
	// publish it to the feed without re-notifying the seller
	s.fanout(ctx, bookingID, status, status != models.BookingPending)
	return updated, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]models.BookingView, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

// ListByProperty is owner- or admin-only.
func (s *Service) ListByProperty(ctx context.Context, propertyID, callerID string, callerRole models.Role) ([]models.BookingView, error) {
	if callerRole != models.RoleAdmin {
		property, err := s.dir.GetProperty(ctx, propertyID)
		if err != nil {
			return nil, err
		}
		if property.OwnerID != callerID {
			return nil, apperr.Forbiddenf("user %s does not own property %s", callerID, propertyID)
		}
	}
	return s.store.ListByProperty(ctx, propertyID)
}

// View returns a booking snapshot for the customer, the owner or an
// admin.
func (s *Service) View(ctx context.Context, bookingID, callerID string, callerRole models.Role) (models.BookingView, error) {
	view, err := s.store.View(ctx, bookingID)
	if err != nil {
		return models.BookingView{}, err
	}
	if callerRole != models.RoleAdmin && callerID != view.Customer.UserID && callerID != view.Seller.UserID {
		return models.BookingView{}, apperr.Forbiddenf("user %s may not view booking %s", callerID, bookingID)
	}
	return view, nil
}

func (s *Service) fanout(ctx context.Context, bookingID string, event models.BookingStatus, notify bool) {
	view, err := s.store.View(ctx, bookingID)
	if err != nil {
		log.Printf("bookings: snapshot of %s failed, notifications skipped: %v", bookingID, err)
		return
	}
	if notify {
		s.notifier.BookingEvent(view, event)
	}
	s.emitter.Emit(ctx, FeedTopic, view)
}

func validateStay(checkIn, checkOut string) error {
	in, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		return fmt.Errorf("bad check-in date %q: %w", checkIn, apperr.ErrInvalidInput)
	}
	out, err := time.Parse("2006-01-02", checkOut)
	if err != nil {
		return fmt.Errorf("bad check-out date %q: %w", checkOut, apperr.ErrInvalidInput)
	}
	if !out.After(in) {
		return fmt.Errorf("check-out %s must be after check-in %s: %w", checkOut, checkIn, apperr.ErrInvalidInput)
	}
	return nil
}
