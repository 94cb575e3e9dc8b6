// Package notify formats and fans events out to recipients over email
// and an SMS-like messaging channel. Delivery is best-effort: channel
// failures are logged and never surfaced to the business operation that
// triggered them.
package notify

import (
	"log"

	"homevia/models"
)

type Dispatcher struct {
	mail Mailer
	sms  Texter
}

func NewDispatcher(mail Mailer, sms Texter) *Dispatcher {
	return &Dispatcher{mail: mail, sms: sms}
}

// Dispatch attempts every channel the recipient can receive. Email is
// always tried; the messaging channel only when the phone number
// normalizes to a valid E.164 form. The two sends are independent.
func (d *Dispatcher) Dispatch(recipient models.UserProfileResponse, subject, body string) {
	if recipient.Email == "" {
		log.Printf("notify: recipient %s has no email, channel skipped", recipient.UserID)
	} else if err := d.mail.SendMail(recipient.Email, subject, body); err != nil {
		log.Printf("notify: email to %s failed: %v", recipient.Email, err)
	}

	if recipient.PhoneNumber == "" {
		return
	}
	number, err := NormalizePhone(recipient.PhoneNumber)
	if err != nil {
		// Not an error for the caller, the channel just doesn't apply
		log.Printf("notify: sms to %s skipped: %v", recipient.UserID, err)
		return
	}
	if err := d.sms.SendText(number, body); err != nil {
		log.Printf("notify: sms to %s failed: %v", number, err)
	}
}

// MeetingEvent routes a meeting notification to the parties the event
// concerns:
//
//	PENDING          → seller
//	SCHEDULED        → customer + seller
//	PROPOSED_CHANGE  → customer only (the seller proposed it)
//	REJECTED         → customer + seller
//	CHAT_COMPLETED   → customer + seller
func (d *Dispatcher) MeetingEvent(m models.MeetingView, event models.MeetingStatus) {
	toCustomer := func() {
		d.Dispatch(m.Customer, MeetingSubject(m, event, ToCustomer), BuildMeetingMessage(m, event, ToCustomer))
	}
	toSeller := func() {
		d.Dispatch(m.Seller, MeetingSubject(m, event, ToSeller), BuildMeetingMessage(m, event, ToSeller))
	}

	switch event {
	case models.MeetingPending:
		toSeller()
	case models.MeetingScheduled, models.MeetingRejected, models.MeetingChatCompleted:
		toCustomer()
		toSeller()
	case models.MeetingProposedChange:
		toCustomer()
	}
}

// BookingEvent notifies the seller of new requests and the customer of
// decisions.
func (d *Dispatcher) BookingEvent(b models.BookingView, event models.BookingStatus) {
	subject := BookingSubject(b, event)
	body := BuildBookingMessage(b, event)

	switch event {
	case models.BookingPending:
		d.Dispatch(b.Seller, subject, body)
	case models.BookingConfirmed, models.BookingRejected:
		d.Dispatch(b.Customer, subject, body)
	}
}
