package api

import (
	"net"
	"net/http"
	"strings"

	"wedding-rsvp/internal/rsvp"
)

type rsvpHandler struct {
	rsvps *rsvp.Service
}

func (h *rsvpHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub rsvp.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeError(w, r, err)
		return
	}
	sub.IPAddress = clientIP(r)
	sub.UserAgent = r.UserAgent()

	stored, err := h.rsvps.Submit(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "RSVP saved",
		"data":    stored,
	})
}

// Status lets the form check the endpoint is up and which fields it takes
func (h *rsvpHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"schemaVersion":    h.rsvps.Schema().Version,
		"actualGuestCount": h.rsvps.Schema().HasActualGuestCount(),
	})
}

func (h *rsvpHandler) List(w http.ResponseWriter, r *http.Request) {
	rsvps, err := h.rsvps.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rsvps)
}

func (h *rsvpHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rsvps.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *rsvpHandler) PurgeAll(w http.ResponseWriter, r *http.Request) {
	if err := h.rsvps.PurgeAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *rsvpHandler) PurgeTestData(w http.ResponseWriter, r *http.Request) {
	n, err := h.rsvps.PurgeTestData(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": n})
}

// clientIP prefers the first X-Forwarded-For hop over the socket address
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
