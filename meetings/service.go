// Package meetings implements the viewing-request workflow between a
// customer and a property's seller.
//
// PENDING ─→ SCHEDULED | REJECTED | PROPOSED_CHANGE
// PROPOSED_CHANGE ─→ SCHEDULED
// SCHEDULED ─→ CHAT_COMPLETED ─→ CLOSED
//
// Reaching SCHEDULED opens the chat room; every transition notifies the
// affected parties and pushes a snapshot onto the live feed.
package meetings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"homevia/apperr"
	"homevia/models"
	"homevia/mq"
	"homevia/utils"
)

// FeedTopic is the live-feed topic meeting snapshots are published on.
const FeedTopic = "meetings"

// Store persists meetings. Transition methods are atomic
// compare-and-swap on the status field: the update only applies when the
// stored status equals the expected prior one, so concurrent transitions
// cannot interleave.
type Store interface {
	Insert(ctx context.Context, m models.Meeting) error
	Get(ctx context.Context, meetingID string) (models.Meeting, error)
	TransitionStatus(ctx context.Context, meetingID string, from, to models.MeetingStatus) (models.Meeting, error)
	ApplyProposal(ctx context.Context, meetingID, date, tm, note string) (models.Meeting, error)
	View(ctx context.Context, meetingID string) (models.MeetingView, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.MeetingView, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.MeetingView, error)
}

// Directory is the read side of users and properties.
type Directory interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetProperty(ctx context.Context, propertyID string) (models.Property, error)
}

// Sessions is the slice of the chat-session manager the workflow needs.
type Sessions interface {
	CreateForMeeting(ctx context.Context, meeting models.Meeting) (models.ChatSession, error)
	FindByRoomToken(ctx context.Context, token string) (models.ChatSession, error)
}

// Notifier receives meeting events for best-effort delivery.
type Notifier interface {
	MeetingEvent(m models.MeetingView, event models.MeetingStatus)
}

type Service struct {
	store    Store
	dir      Directory
	sessions Sessions
	notifier Notifier
	emitter  mq.Emitter
}

func NewService(store Store, dir Directory, sessions Sessions, notifier Notifier, emitter mq.Emitter) *Service {
	return &Service{store: store, dir: dir, sessions: sessions, notifier: notifier, emitter: emitter}
}

// Create files a new viewing request on behalf of the customer. The
// meeting starts PENDING; the seller is notified and the snapshot is
// broadcast.
func (s *Service) Create(ctx context.Context, propertyID, customerID, date, tm, message string) (models.Meeting, error) {
	if err := validateDateTime(date, tm); err != nil {
		return models.Meeting{}, err
	}
	if _, err := s.dir.GetProperty(ctx, propertyID); err != nil {
		return models.Meeting{}, err
	}
	if _, err := s.dir.GetUser(ctx, customerID); err != nil {
		return models.Meeting{}, err
	}

	now := time.Now()
	meeting := models.Meeting{
		MeetingID:       utils.GenerateRandomDigitString(22),
		PropertyID:      propertyID,
		CustomerID:      customerID,
		MeetingDate:     date,
		MeetingTime:     tm,
		CustomerMessage: message,
		Status:          models.MeetingPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Insert(ctx, meeting); err != nil {
		return models.Meeting{}, err
	}

	s.fanout(ctx, meeting.MeetingID, models.MeetingPending)
	return meeting, nil
}

// SetStatus is the seller's direct accept/reject of a PENDING request.
// Only SCHEDULED and REJECTED are reachable this way; finer-grained
// moves go through ProposeChange/ConfirmProposedChange/CompleteChat.
func (s *Service) SetStatus(ctx context.Context, meetingID string, newStatus models.MeetingStatus, callerID string) (models.Meeting, error) {
	if newStatus != models.MeetingScheduled && newStatus != models.MeetingRejected {
		return models.Meeting{}, fmt.Errorf("status %s cannot be set directly: %w", newStatus, apperr.ErrInvalidTransition)
	}

	meeting, err := s.store.Get(ctx, meetingID)
	if err != nil {
		return models.Meeting{}, err
	}
	if err := s.requireOwner(ctx, meeting, callerID); err != nil {
		return models.Meeting{}, err
	}

	updated, err := s.store.TransitionStatus(ctx, meetingID, models.MeetingPending, newStatus)
	if err != nil {
		return models.Meeting{}, err
	}

	if updated.Status == models.MeetingScheduled {
		if _, err := s.sessions.CreateForMeeting(ctx, updated); err != nil {
			return models.Meeting{}, fmt.Errorf("open chat room: %w", err)
		}
	}

	s.fanout(ctx, meetingID, updated.Status)
	return updated, nil
}

// ProposeChange lets the seller counter a PENDING request with a new
// date/time and a note. Only the customer is notified — the seller
// already knows.
func (s *Service) ProposeChange(ctx context.Context, meetingID, newDate, newTime, note, callerID string) (models.Meeting, error) {
	if err := validateDateTime(newDate, newTime); err != nil {
		return models.Meeting{}, err
	}

	meeting, err := s.store.Get(ctx, meetingID)
	if err != nil {
		return models.Meeting{}, err
	}
	if err := s.requireOwner(ctx, meeting, callerID); err != nil {
		return models.Meeting{}, err
	}

	updated, err := s.store.ApplyProposal(ctx, meetingID, newDate, newTime, note)
	if err != nil {
		return models.Meeting{}, err
	}

	s.fanout(ctx, meetingID, models.MeetingProposedChange)
	return updated, nil
}

// ConfirmProposedChange is the customer accepting the seller's new time.
// The meeting becomes SCHEDULED and the chat room opens.
func (s *Service) ConfirmProposedChange(ctx context.Context, meetingID, callerID string) (models.Meeting, error) {
	meeting, err := s.store.Get(ctx, meetingID)
	if err != nil {
		return models.Meeting{}, err
	}
	if meeting.CustomerID != callerID {
		return models.Meeting{}, apperr.Forbiddenf("user %s is not the customer for meeting %s", callerID, meetingID)
	}

	updated, err := s.store.TransitionStatus(ctx, meetingID, models.MeetingProposedChange, models.MeetingScheduled)
	if err != nil {
		return models.Meeting{}, err
	}

	if _, err := s.sessions.CreateForMeeting(ctx, updated); err != nil {
		return models.Meeting{}, fmt.Errorf("open chat room: %w", err)
	}

	s.fanout(ctx, meetingID, models.MeetingScheduled)
	return updated, nil
}

// CompleteChat moves the meeting to CHAT_COMPLETED once its chat room is
// closed. Idempotent: a meeting that already left SCHEDULED only gets a
// warning in the log, never an error.
func (s *Service) CompleteChat(ctx context.Context, roomToken string) error {
	session, err := s.sessions.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return err
	}

	updated, err := s.store.TransitionStatus(ctx, session.MeetingID, models.MeetingScheduled, models.MeetingChatCompleted)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidTransition) {
			current, getErr := s.store.Get(ctx, session.MeetingID)
			if getErr != nil {
				return getErr
			}
			log.Printf("meetings: complete-chat for %s skipped, status already %s", session.MeetingID, current.Status)
			return nil
		}
		return err
	}

	s.fanout(ctx, updated.MeetingID, models.MeetingChatCompleted)
	return nil
}

// Close is the final archival step after the chat phase. Either
// participant may close.
func (s *Service) Close(ctx context.Context, meetingID, callerID string) (models.Meeting, error) {
	meeting, err := s.store.Get(ctx, meetingID)
	if err != nil {
		return models.Meeting{}, err
	}
	property, err := s.dir.GetProperty(ctx, meeting.PropertyID)
	if err != nil {
		return models.Meeting{}, err
	}
	if callerID != meeting.CustomerID && callerID != property.OwnerID {
		return models.Meeting{}, apperr.Forbiddenf("user %s is not a participant in meeting %s", callerID, meetingID)
	}

	return s.store.TransitionStatus(ctx, meetingID, models.MeetingChatCompleted, models.MeetingClosed)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]models.MeetingView, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID string) ([]models.MeetingView, error) {
	return s.store.ListBySeller(ctx, sellerID)
}

// View returns the materialized snapshot of one meeting for a
// participant.
func (s *Service) View(ctx context.Context, meetingID, callerID string) (models.MeetingView, error) {
	view, err := s.store.View(ctx, meetingID)
	if err != nil {
		return models.MeetingView{}, err
	}
	if callerID != view.Customer.UserID && callerID != view.Seller.UserID {
		return models.MeetingView{}, apperr.Forbiddenf("user %s is not a participant in meeting %s", callerID, meetingID)
	}
	return view, nil
}

func (s *Service) requireOwner(ctx context.Context, meeting models.Meeting, callerID string) error {
	property, err := s.dir.GetProperty(ctx, meeting.PropertyID)
	if err != nil {
		return err
	}
	if property.OwnerID != callerID {
		return apperr.Forbiddenf("user %s does not own property %s", callerID, meeting.PropertyID)
	}
	return nil
}

// fanout notifies the affected parties and broadcasts the snapshot.
// Both channels are best-effort; failures are logged and swallowed so
// they never undo the committed state change.
func (s *Service) fanout(ctx context.Context, meetingID string, event models.MeetingStatus) {
	view, err := s.store.View(ctx, meetingID)
	if err != nil {
		log.Printf("meetings: snapshot of %s failed, notifications skipped: %v", meetingID, err)
		return
	}
	s.notifier.MeetingEvent(view, event)
	s.emitter.Emit(ctx, FeedTopic, view)
}

func validateDateTime(date, tm string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("bad meeting date %q: %w", date, apperr.ErrInvalidInput)
	}
	if _, err := time.Parse("15:04", tm); err != nil {
		return fmt.Errorf("bad meeting time %q: %w", tm, apperr.ErrInvalidInput)
	}
	return nil
}
