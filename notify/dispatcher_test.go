package notify

import (
	"errors"
	"testing"

	"homevia/models"

	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []string // recipient addresses
	err  error
}

func (f *fakeMailer) SendMail(to, subject, body string) error {
	f.sent = append(f.sent, to)
	return f.err
}

type fakeTexter struct {
	sent []string // E.164 numbers
	err  error
}

func (f *fakeTexter) SendText(toE164, body string) error {
	f.sent = append(f.sent, toE164)
	return f.err
}

func testMeetingView() models.MeetingView {
	return models.MeetingView{
		Meeting: models.Meeting{
			MeetingID:   "m1",
			MeetingDate: "2026-09-10",
			MeetingTime: "14:30",
		},
		Property: models.Property{Title: "Sunny Loft", Address: "Main St 1", City: "Berlin"},
		Customer: models.UserProfileResponse{
			UserID: "cust-1", Email: "customer@example.com", PhoneNumber: "+4915112345678",
		},
		Seller: models.UserProfileResponse{
			UserID: "sell-1", Email: "seller@example.com", PhoneNumber: "+4917187654321",
		},
	}
}

func TestDispatchBothChannels(t *testing.T) {
	mail := &fakeMailer{}
	sms := &fakeTexter{}
	d := NewDispatcher(mail, sms)

	d.Dispatch(testMeetingView().Customer, "subject", "body")

	require.Equal(t, []string{"customer@example.com"}, mail.sent)
	require.Equal(t, []string{"+4915112345678"}, sms.sent)
}

func TestDispatchSkipsBadPhone(t *testing.T) {
	mail := &fakeMailer{}
	sms := &fakeTexter{}
	d := NewDispatcher(mail, sms)

	recipient := testMeetingView().Customer
	recipient.PhoneNumber = "12345" // no country code

	d.Dispatch(recipient, "subject", "body")

	require.Len(t, mail.sent, 1, "email should still go out")
	require.Empty(t, sms.sent, "sms channel must be skipped")
}

func TestDispatchEmailFailureDoesNotBlockSMS(t *testing.T) {
	mail := &fakeMailer{err: errors.New("smtp down")}
	sms := &fakeTexter{}
	d := NewDispatcher(mail, sms)

	d.Dispatch(testMeetingView().Customer, "subject", "body")

	require.Len(t, sms.sent, 1)
}

func TestMeetingEventRouting(t *testing.T) {
	view := testMeetingView()

	tests := []struct {
		event models.MeetingStatus
		want  []string
	}{
		{models.MeetingPending, []string{"seller@example.com"}},
		{models.MeetingScheduled, []string{"customer@example.com", "seller@example.com"}},
		{models.MeetingProposedChange, []string{"customer@example.com"}},
		{models.MeetingRejected, []string{"customer@example.com", "seller@example.com"}},
		{models.MeetingChatCompleted, []string{"customer@example.com", "seller@example.com"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			mail := &fakeMailer{}
			d := NewDispatcher(mail, &fakeTexter{})
			d.MeetingEvent(view, tt.event)
			require.ElementsMatch(t, tt.want, mail.sent)
		})
	}
}

func TestBookingEventRouting(t *testing.T) {
	view := models.BookingView{
		Booking:  models.Booking{BookingID: "b1", CheckInDate: "2026-10-01"},
		Property: models.Property{Title: "Sunny Loft"},
		Customer: models.UserProfileResponse{UserID: "cust-1", Email: "customer@example.com"},
		Seller:   models.UserProfileResponse{UserID: "sell-1", Email: "seller@example.com"},
	}

	tests := []struct {
		event models.BookingStatus
		want  []string
	}{
		{models.BookingPending, []string{"seller@example.com"}},
		{models.BookingConfirmed, []string{"customer@example.com"}},
		{models.BookingRejected, []string{"customer@example.com"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			mail := &fakeMailer{}
			d := NewDispatcher(mail, &fakeTexter{})
			d.BookingEvent(view, tt.event)
			require.ElementsMatch(t, tt.want, mail.sent)
		})
	}
}

func TestMeetingMessageWording(t *testing.T) {
	view := testMeetingView()

	pending := BuildMeetingMessage(view, models.MeetingPending, ToSeller)
	require.Contains(t, pending, "New meeting request for Sunny Loft")
	require.Contains(t, pending, "Accept/Reject or Propose a new time")

	scheduled := BuildMeetingMessage(view, models.MeetingScheduled, ToCustomer)
	require.Contains(t, scheduled, "CONFIRMED")
	require.Contains(t, scheduled, "Main St 1, Berlin")
	require.Contains(t, scheduled, "seller@example.com", "customer sees the seller's contact")

	scheduledForSeller := BuildMeetingMessage(view, models.MeetingScheduled, ToSeller)
	require.Contains(t, scheduledForSeller, "customer@example.com", "seller sees the customer's contact")

	subject := MeetingSubject(view, models.MeetingPending, ToSeller)
	require.Equal(t, "Buyer Action: PENDING for Sunny Loft", subject)
}
