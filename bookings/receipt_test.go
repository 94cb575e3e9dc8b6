package bookings

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"homevia/globals"
	"homevia/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

func receiptRequest(bookingID, userID string, role models.Role) (*http.Request, httprouter.Params) {
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/"+bookingID+"/receipt", nil)
	ctx := context.WithValue(req.Context(), globals.UserIDKey, userID)
	ctx = context.WithValue(ctx, globals.RoleKey, role)
	return req.WithContext(ctx), httprouter.Params{{Key: "bookingid", Value: bookingID}}
}

func TestReceiptRequiresConfirmedBooking(t *testing.T) {
	f := newFixture()
	booking := f.createPending(t)
	h := NewHandlers(f.svc)

	req, ps := receiptRequest(booking.BookingID, "cust-1", models.RoleCustomer)
	rec := httptest.NewRecorder()
	h.Receipt(rec, req, ps)
	require.Equal(t, http.StatusConflict, rec.Code)

	_, err := f.svc.SetStatus(context.Background(), booking.BookingID, models.BookingConfirmed, "seller-1", models.RoleSeller)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.Receipt(rec, req, ps)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestReceiptParticipantsOnly(t *testing.T) {
	f := newFixture()
	booking := f.createPending(t)
	h := NewHandlers(f.svc)

	_, err := f.svc.SetStatus(context.Background(), booking.BookingID, models.BookingConfirmed, "seller-1", models.RoleSeller)
	require.NoError(t, err)

	req, ps := receiptRequest(booking.BookingID, "stranger", models.RoleCustomer)
	rec := httptest.NewRecorder()
	h.Receipt(rec, req, ps)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
