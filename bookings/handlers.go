package bookings

import (
	"encoding/json"
	"net/http"

	"homevia/apperr"
	"homevia/models"
	"homevia/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	svc *Service
}

func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

type createRequest struct {
	PropertyID   string `json:"propertyid"`
	CheckInDate  string `json:"check_in"`
	CheckOutDate string `json:"check_out"`
	Contact      string `json:"contact,omitempty"`
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	callerID := utils.GetUserIDFromRequest(r)
	booking, err := h.svc.Create(r.Context(), req.PropertyID, callerID, req.CheckInDate, req.CheckOutDate, req.Contact)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, booking)
}

type statusRequest struct {
	Status models.BookingStatus `json:"status"`
}

func (h *Handlers) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	callerID := utils.GetUserIDFromRequest(r)
	callerRole := utils.GetRoleFromRequest(r)
	booking, err := h.svc.SetStatus(r.Context(), ps.ByName("bookingid"), req.Status, callerID, callerRole)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, booking)
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)
	callerRole := utils.GetRoleFromRequest(r)
	view, err := h.svc.View(r.Context(), ps.ByName("bookingid"), callerID, callerRole)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view)
}

// ListMine returns the caller's bookings as a customer.
func (h *Handlers) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)
	views, err := h.svc.ListByCustomer(r.Context(), callerID)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

// ListForProperty returns bookings on one property for its owner or an
// admin.
func (h *Handlers) ListForProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)
	callerRole := utils.GetRoleFromRequest(r)
	views, err := h.svc.ListByProperty(r.Context(), ps.ByName("propertyid"), callerID, callerRole)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}
