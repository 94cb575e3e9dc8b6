package notify

import (
	"fmt"

	"homevia/models"
)

// RecipientRole selects the phrasing of a meeting message.
type RecipientRole string

const (
	ToCustomer RecipientRole = "customer"
	ToSeller   RecipientRole = "seller"
)

// MeetingSubject builds the subject line for a meeting event.
func MeetingSubject(m models.MeetingView, event models.MeetingStatus, role RecipientRole) string {
	if role == ToSeller {
		return fmt.Sprintf("Buyer Action: %s for %s", event, m.Property.Title)
	}
	return fmt.Sprintf("Meeting Status Update: %s for %s", event, m.Property.Title)
}

// BuildMeetingMessage renders the notification body for a meeting event.
// Pure formatting: the view already carries the property, customer and
// seller.
func BuildMeetingMessage(m models.MeetingView, event models.MeetingStatus, role RecipientRole) string {
	address := m.Property.Address + ", " + m.Property.City

	switch {
	case event == models.MeetingPending:
		return fmt.Sprintf(
			"New meeting request for %s!\nDate: %s at %s.\nCustomer Email: %s\nMessage: %s\nACTION: Please log in to your seller dashboard to Accept/Reject or Propose a new time.",
			m.Property.Title, m.MeetingDate, m.MeetingTime, m.Customer.Email, m.CustomerMessage,
		)

	case event == models.MeetingProposedChange && role == ToCustomer:
		return fmt.Sprintf(
			"Time Change Proposed for %s.\nNew Time: %s at %s.\nSeller Note: %s\nACTION: Please review and confirm/reject the new time in your My Meetings page.",
			m.Property.Title, m.MeetingDate, m.MeetingTime, m.SellerNote,
		)

	case event == models.MeetingScheduled:
		counterpart := m.Seller
		if role == ToSeller {
			counterpart = m.Customer
		}
		return fmt.Sprintf(
			"Your meeting for the property '%s' is CONFIRMED.\nDate: %s\nTime: %s\nAddress: %s\nContact: %s (%s)\nPlease arrive promptly.",
			m.Property.Title, m.MeetingDate, m.MeetingTime, address,
			counterpart.FullName, counterpart.Email,
		)

	case event == models.MeetingRejected:
		return fmt.Sprintf("Your meeting request for %s has been rejected by the seller/customer.", m.Property.Title)

	case event == models.MeetingChatCompleted:
		return fmt.Sprintf(
			"The chat session for your meeting about %s has ended. You can now proceed with a booking or follow-up from your dashboard.",
			m.Property.Title,
		)
	}

	return "Notification sent."
}

// BookingSubject builds the subject line for a booking event.
func BookingSubject(b models.BookingView, event models.BookingStatus) string {
	return fmt.Sprintf("Booking Status: %s for %s", event, b.Property.Title)
}

// BuildBookingMessage renders the notification body for a booking event.
func BuildBookingMessage(b models.BookingView, event models.BookingStatus) string {
	switch event {
	case models.BookingPending:
		return fmt.Sprintf("You have a new booking request for %s starting %s. Please check your seller dashboard.",
			b.Property.Title, b.CheckInDate)
	case models.BookingConfirmed:
		return fmt.Sprintf("Your booking for %s has been CONFIRMED! Check-in is %s.", b.Property.Title, b.CheckInDate)
	case models.BookingRejected:
		return fmt.Sprintf("Your booking for %s has been REJECTED by the seller.", b.Property.Title)
	}
	return "Notification sent."
}
