// Package api exposes the RSVP form endpoint and the organizer's admin
// endpoints over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"wedding-rsvp/internal/followup"
	"wedding-rsvp/internal/guests"
	"wedding-rsvp/internal/rsvp"
)

// RouterConfig holds the services the API is built on
type RouterConfig struct {
	Logger         zerolog.Logger
	RSVPs          *rsvp.Service
	Guests         *guests.Service
	Followups      *followup.Service
	AllowedOrigins []string
}

// NewRouter creates the API handler with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	rsvpHandler := &rsvpHandler{rsvps: cfg.RSVPs}
	guestHandler := &guestHandler{guests: cfg.Guests}
	followupHandler := &followupHandler{followups: cfg.Followups}

	r.Use(Recovery)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Public RSVP form
	api.HandleFunc("/rsvp", rsvpHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/rsvp", rsvpHandler.Status).Methods(http.MethodGet)

	// RSVP administration
	api.HandleFunc("/rsvps", rsvpHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rsvps", rsvpHandler.PurgeAll).Methods(http.MethodDelete)
	api.HandleFunc("/rsvps/stats", rsvpHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/rsvps/test-data", rsvpHandler.PurgeTestData).Methods(http.MethodDelete)

	// Guest list
	g := api.PathPrefix("/guests").Subrouter()
	g.HandleFunc("", guestHandler.List).Methods(http.MethodGet)
	g.HandleFunc("", guestHandler.Add).Methods(http.MethodPost)
	g.HandleFunc("", guestHandler.Clear).Methods(http.MethodDelete)
	g.HandleFunc("/mark-all-sent", guestHandler.MarkAllSent).Methods(http.MethodPost)
	g.HandleFunc("/import", guestHandler.Import).Methods(http.MethodPost)
	g.HandleFunc("/export", guestHandler.Export).Methods(http.MethodGet)
	g.HandleFunc("/{id}", guestHandler.Remove).Methods(http.MethodDelete)
	g.HandleFunc("/{id}/toggle", guestHandler.Toggle).Methods(http.MethodPost)

	// Follow-ups
	api.HandleFunc("/followups", followupHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/followups/send", followupHandler.SendReminders).Methods(http.MethodPost)
	api.HandleFunc("/invitations/send", followupHandler.SendInvitations).Methods(http.MethodPost)
	api.HandleFunc("/send-whatsapp-invite", followupHandler.Invite).Methods(http.MethodPost)
	api.HandleFunc("/whatsapp-links", followupHandler.Links).Methods(http.MethodGet)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return Logging(cfg.Logger)(c.Handler(r))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
