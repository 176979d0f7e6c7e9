// internal/app/features/logout/routes.go
package logout

import (
	"github.com/dalemusser/eventroster/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Only a logged-in admin can log out.
		pr.Use(sm.RequireLoggedIn)
		pr.Post("/", h.ServeLogout)
	})

	return r
}
