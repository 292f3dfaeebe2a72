package api

import (
	"mime"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"wedding-rsvp/internal/guests"
)

type guestHandler struct {
	guests *guests.Service
}

func (h *guestHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.guests.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *guestHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in guests.NewGuest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := h.guests.Add(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *guestHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.guests.Clear(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *guestHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.guests.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *guestHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	g, err := h.guests.ToggleInvitation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *guestHandler) MarkAllSent(w http.ResponseWriter, r *http.Request) {
	n, err := h.guests.MarkAllSent(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": n})
}

// Import reads CSV when the body is text/csv or text/plain and replaces the
// list from a JSON export otherwise.
func (h *guestHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		imported any
		err      error
	)
	switch mediaType {
	case "text/csv", "text/plain":
		imported, err = h.guests.ImportCSV(r.Context(), r.Body)
	default:
		imported, err = h.guests.ImportJSON(r.Context(), r.Body)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "imported": imported})
}

func (h *guestHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="guests.json"`)
	if err := h.guests.ExportJSON(r.Context(), w); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("guest export failed")
	}
}
