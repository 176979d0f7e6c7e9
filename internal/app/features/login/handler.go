// internal/app/features/login/handler.go
package login

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/dalemusser/eventroster/internal/app/system/auth"
	"github.com/dalemusser/eventroster/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// DefaultReturn is where a successful login lands when no return URL is given.
const DefaultReturn = "/events"

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter // nil disables throttling
}

func NewHandler(sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	Error     string
	ReturnURL string
}

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Event admin login</title></head>
<body>
<h1>Event admin</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/login">
<input type="hidden" name="return" value="{{.ReturnURL}}">
<label>Password <input type="password" name="password" autofocus required></label>
<button type="submit">Log in</button>
</form>
</body></html>
`))

// ServeLogin handles GET /login. A LoggedIn session skips the form.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := safeReturn(r.URL.Query().Get("return"))
	if h.SessionMgr.State(r) == auth.LoggedIn {
		http.Redirect(w, r, ret, http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, loginFormData{ReturnURL: ret})
}

// HandleLoginPost handles POST /login: the single LoggedOut → LoggedIn
// transition.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, loginFormData{Error: "Invalid form submission."})
		return
	}
	ret := safeReturn(r.PostFormValue("return"))

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r); !ok {
			h.Log.Warn("admin login throttled", zap.String("client_ip", ratelimit.ClientIP(r)))
			h.render(w, http.StatusTooManyRequests, loginFormData{Error: reason, ReturnURL: ret})
			return
		}
	}

	err := h.SessionMgr.LogIn(w, r, r.PostFormValue("password"))
	switch {
	case errors.Is(err, auth.ErrBadPassword):
		h.Log.Info("admin login rejected", zap.String("remote", r.RemoteAddr))
		h.render(w, http.StatusUnauthorized, loginFormData{Error: "Incorrect password.", ReturnURL: ret})
		return
	case err != nil:
		h.Log.Error("admin login: save session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if h.Limiter != nil {
		h.Limiter.Succeeded(r)
	}
	h.Log.Info("admin logged in", zap.String("remote", r.RemoteAddr))
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", ret)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, status int, data loginFormData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := loginPage.Execute(w, data); err != nil {
		h.Log.Error("render login page", zap.Error(err))
	}
}

// safeReturn only accepts local absolute paths, so a crafted return
// parameter cannot bounce the admin to another site.
func safeReturn(ret string) string {
	ret = strings.TrimSpace(ret)
	if !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") || strings.HasPrefix(ret, "/\\") {
		return DefaultReturn
	}
	return ret
}
