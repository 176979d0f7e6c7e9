// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/eventroster/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout handles POST /logout: the LoggedIn → LoggedOut transition.
// Roster pages keep running; they belong to the process, not the session.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.LogOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
