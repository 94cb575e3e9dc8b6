package bookings

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"homevia/apperr"
	"homevia/globals"
	"homevia/models"
	"homevia/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// receiptPayload builds the signed string embedded in the receipt QR
// code: bookingID|check_in|check_out|timestamp|signature.
func receiptPayload(bookingID, checkIn, checkOut string) string {
	data := fmt.Sprintf("%s|%s|%s|%d", bookingID, checkIn, checkOut, time.Now().Unix())

	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// Receipt renders a PDF receipt for a confirmed booking. Available to
// the customer, the property owner and admins.
func (h *Handlers) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)
	callerRole := utils.GetRoleFromRequest(r)
	view, err := h.svc.View(r.Context(), ps.ByName("bookingid"), callerID, callerRole)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	if view.Status != models.BookingConfirmed {
		utils.RespondWithError(w, http.StatusConflict, "booking is not confirmed")
		return
	}

	qrPNG, err := qrcode.Encode(receiptPayload(view.BookingID, view.CheckInDate, view.CheckOutDate), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Booking Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Booking no: %s", view.BookingID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Property: %s", view.Property.Title))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Address: %s, %s", view.Property.Address, view.Property.City))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Stay: %s to %s", view.CheckInDate, view.CheckOutDate))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Guest: %s", view.Customer.Username))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Host: %s", view.Seller.Username))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+view.BookingID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
