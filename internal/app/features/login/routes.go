// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes serves the admin gate form under /login. It is public; the POST
// is throttled by the handler's Limiter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}
