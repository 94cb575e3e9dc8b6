package meetings

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"homevia/apperr"
	"homevia/globals"
	"homevia/models"
	"homevia/rdx"
	"homevia/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// passPayload builds the signed string embedded in the pass QR code:
// meetingID|date|time|timestamp|signature. The seller scans it at the
// door to verify the appointment was issued by us.
func passPayload(meetingID, date, tm string) string {
	data := fmt.Sprintf("%s|%s|%s|%d", meetingID, date, tm, time.Now().Unix())

	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyPassPayload checks the HMAC on a scanned pass and returns the
// meeting ID it was issued for.
func VerifyPassPayload(payload string) (string, error) {
	idx := strings.LastIndexByte(payload, '|')
	if idx < 0 {
		return "", fmt.Errorf("malformed pass: %w", apperr.ErrInvalidInput)
	}
	data, sig := payload[:idx], payload[idx+1:]

	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", fmt.Errorf("pass signature mismatch: %w", apperr.ErrInvalidInput)
	}

	meetingID, _, ok := strings.Cut(data, "|")
	if !ok || meetingID == "" {
		return "", fmt.Errorf("malformed pass: %w", apperr.ErrInvalidInput)
	}
	return meetingID, nil
}

type verifyPassRequest struct {
	Payload string `json:"payload"`
}

// VerifyPass checks a scanned pass: signature, meeting state, and that
// the pass was not scanned before. Single-use is tracked in Redis keyed
// by the payload hash.
func (h *Handlers) VerifyPass(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req verifyPassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Payload == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	meetingID, err := VerifyPassPayload(req.Payload)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}

	callerID := utils.GetUserIDFromRequest(r)
	view, err := h.svc.View(r.Context(), meetingID, callerID)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	if view.Status != models.MeetingScheduled {
		utils.RespondWithError(w, http.StatusConflict, "meeting is not scheduled")
		return
	}

	scanKey := fmt.Sprintf("passscan:%x", sha256.Sum256([]byte(req.Payload)))
	if rdx.Exists(scanKey) {
		utils.RespondWithError(w, http.StatusConflict, "pass already scanned")
		return
	}
	if err := rdx.SetWithExpiry(scanKey, "1", 24*time.Hour); err != nil {
		log.Printf("pass scan marker write failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"valid":     true,
		"meetingid": view.MeetingID,
		"date":      view.MeetingDate,
		"time":      view.MeetingTime,
	})
}

// PrintPass renders a PDF appointment pass for a scheduled meeting. Only
// a participant can download it, and only once the meeting is actually
// scheduled.
func (h *Handlers) PrintPass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)
	view, err := h.svc.View(r.Context(), ps.ByName("meetingid"), callerID)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	if view.Status != models.MeetingScheduled {
		utils.RespondWithError(w, http.StatusConflict, "meeting is not scheduled")
		return
	}

	qrPNG, err := qrcode.Encode(passPayload(view.MeetingID, view.MeetingDate, view.MeetingTime), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Viewing Appointment")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Property: %s", view.Property.Title))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Address: %s, %s", view.Property.Address, view.Property.City))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s at %s", view.MeetingDate, view.MeetingTime))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Visitor: %s", view.Customer.Username))
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
	w.Header().Set("Content-Disposition", "attachment; filename=pass-"+view.MeetingID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
