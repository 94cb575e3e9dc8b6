package meetings

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
	PropertyID  string `json:"propertyid"`
	MeetingDate string `json:"meeting_date"`
	MeetingTime string `json:"meeting_time"`
	Message     string `json:"message,omitempty"`
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	callerID := utils.GetUserIDFromRequest(r)
	meeting, err := h.svc.Create(r.Context(), req.PropertyID, callerID, req.MeetingDate, req.MeetingTime, req.Message)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, meeting)
}

type statusRequest struct {
	Status models.MeetingStatus `json:"status"`
}

// SetStatus handles the seller's accept/reject of a pending request.
func (h *Handlers) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	callerID := utils.GetUserIDFromRequest(r)
	meeting, err := h.svc.SetStatus(r.Context(), ps.ByName("meetingid"), req.Status, callerID)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, meeting)
}

type proposeRequest struct {
	MeetingDate string `json:"meeting_date"`
	MeetingTime string `json:"meeting_time"`
	SellerNote  string `json:"seller_note,omitempty"`
}

func (h *Handlers) ProposeChange(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req proposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	callerID := utils.GetUserIDFromRequest(r)
	meeting, err := h.svc.ProposeChange(r.Context(), ps.ByName("meetingid"), req.MeetingDate, req.MeetingTime, req.SellerNote, callerID)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, meeting)
}

func (h *Handlers) ConfirmProposedChange(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)
	meeting, err := h.svc.ConfirmProposedChange(r.Context(), ps.ByName("meetingid"), callerID)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, meeting)
}

func (h *Handlers) Close(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)
	meeting, err := h.svc.Close(r.Context(), ps.ByName("meetingid"), callerID)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, meeting)
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)
	view, err := h.svc.View(r.Context(), ps.ByName("meetingid"), callerID)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view)
}

// ListMine returns the caller's meetings as a customer.
func (h *Handlers) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)
	views, err := h.svc.ListByCustomer(r.Context(), callerID)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

// ListForSeller returns meetings on properties the caller owns.
func (h *Handlers) ListForSeller(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)
	views, err := h.svc.ListBySeller(r.Context(), callerID)
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}
