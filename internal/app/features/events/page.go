// internal/app/features/events/page.go
package events

import (
	"net/http"
	"strings"

	"github.com/dalemusser/eventroster/internal/app/system/roster"
	"github.com/dalemusser/eventroster/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type pageResponse struct {
	roster.State
	Term            string               `json:"term"`
	Total           int                  `json:"total"`
	Shown           int                  `json:"shown"`
	HasParticipants bool                 `json:"has_participants"`
	Participants    []models.Participant `json:"participants"`
}

// ServePage handles GET /events/{eventID}?q=: opens the event's roster page
// on first use and returns its state with the participants matching q.
// While the first snapshot is loading the list is empty and status is
// "loading". Counts and participants come from the one commit the view
// filtered.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	p := h.openPage(w, r)
	if p == nil || h.failed(w, p) {
		return
	}

	v := p.NewView()
	defer v.Close()
	v.SetSearchTerm(r.URL.Query().Get("q"))
	res := v.Result()
	st := p.StateAt(res.Base)

	writeJSON(w, http.StatusOK, pageResponse{
		State:           st,
		Term:            res.Term,
		Total:           st.Count,
		Shown:           len(res.Rows),
		HasParticipants: st.Count > 0,
		Participants:    res.Rows,
	})
}

// HandleReload handles POST /events/{eventID}/reload: replaces the page,
// which is the only way out of the error state. An event with no live page
// simply gets its first one.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	old, hadPage := h.Pages.Get(eventID)

	fresh, err := h.Pages.Reopen(eventID)
	if err != nil {
		h.pageError(w, eventID, err)
		return
	}
	fields := []zap.Field{zap.String("event_id", eventID), zap.String("page_id", fresh.ID())}
	if hadPage {
		fields = append(fields, zap.String("old_page_id", old.ID()))
	}
	h.Log.Info("roster page reloaded", fields...)

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/events/"+eventID, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, fresh.State())
}
