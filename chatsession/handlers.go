package chatsession

import (
	"context"
	"net/http"

	"homevia/apperr"
	"homevia/utils"

	"github.com/julienschmidt/httprouter"
)

// Completer is notified after a room is destroyed so the meeting can
// advance to its chat-completed state. Satisfied by the meeting workflow.
type Completer interface {
	CompleteChat(ctx context.Context, roomToken string) error
}

// RoomCloser drops any websocket connections still attached to the room.
type RoomCloser interface {
	CloseRoom(room string)
}

type Handlers struct {
	mgr       *Manager
	completer Completer
	closer    RoomCloser
}

func NewHandlers(mgr *Manager, completer Completer, closer RoomCloser) *Handlers {
	return &Handlers{mgr: mgr, completer: completer, closer: closer}
}

// Destroy closes the chat room and moves the meeting forward. Destroying
// is permanent; the room token stops working immediately.
func (h *Handlers) Destroy(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	token := ps.ByName("roomToken")
	callerID := utils.GetUserIDFromRequest(r)

	if err := h.mgr.DestroyByRoomToken(r.Context(), token, callerID); err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	if h.closer != nil {
		h.closer.CloseRoom(token)
	}
	if err := h.completer.CompleteChat(r.Context(), token); err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"destroyed": true})
}

// Active returns the live session for a meeting, or ok=false when the
// room has not opened yet or is already gone.
func (h *Handlers) Active(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := h.mgr.FindActiveByMeetingID(r.Context(), ps.ByName("meetingid"))
	if err != nil {
		utils.RespondWithError(w, apperr.Status(err), err.Error())
		return
	}
	if session == nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": false})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true, "session": session})
}
