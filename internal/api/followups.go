package api

import (
	"context"
	"net/http"

	"wedding-rsvp/internal/followup"
)

type followupHandler struct {
	followups *followup.Service
}

func (h *followupHandler) List(w http.ResponseWriter, r *http.Request) {
	pending, err := h.followups.Pending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(pending), "guests": pending})
}

func (h *followupHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	h.writeBulk(w, r, h.followups.SendReminders)
}

func (h *followupHandler) SendInvitations(w http.ResponseWriter, r *http.Request) {
	h.writeBulk(w, r, h.followups.SendInvitations)
}

func (h *followupHandler) writeBulk(w http.ResponseWriter, r *http.Request, send func(ctx context.Context) (followup.BulkResult, error)) {
	result, err := send(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Invite sends one invitation, answering with a wa.me link when it could
// not go out over WhatsApp.
func (h *followupHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req followup.InviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.followups.Invite(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *followupHandler) Links(w http.ResponseWriter, r *http.Request) {
	mode, err := followup.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, r, badRequest{err: err})
		return
	}
	links, err := h.followups.Links(r.Context(), mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode, "count": len(links), "links": links})
}
