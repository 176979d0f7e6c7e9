// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/eventroster/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the event admin endpoints. Everything here
// needs a logged-in admin; no roster page starts before that.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireLoggedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/{eventID}", h.ServePage)
		pr.Get("/{eventID}/participants.csv", h.ServeExport)
		pr.Get("/{eventID}/stats", h.ServeStats)
		pr.Post("/{eventID}/reload", h.HandleReload)
	})

	return r
}
