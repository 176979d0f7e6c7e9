// internal/app/features/events/stats.go
package events

import (
	"net/http"

	"github.com/dalemusser/eventroster/internal/app/system/roster"
	"github.com/dalemusser/eventroster/internal/domain/models"
)

type statsResponse struct {
	Event     models.Event       `json:"event"`
	Status    roster.Status      `json:"status"`
	Seq       uint64             `json:"seq"`
	Capacity  int                `json:"capacity"`
	Tokens    roster.TokenReport `json:"tokens"`
	Breakdown roster.Breakdown   `json:"breakdown"`
}

// ServeStats handles GET /events/{eventID}/stats: token hygiene and the
// course/college/payment breakdown of the committed roster.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	p := h.openPage(w, r)
	if p == nil || h.failed(w, p) {
		return
	}

	snap := p.Store().Snapshot()
	writeJSON(w, http.StatusOK, statsResponse{
		Event:     p.Event(),
		Status:    p.Status(),
		Seq:       snap.Seq,
		Capacity:  p.Event().Capacity,
		Tokens:    roster.Tokens(snap.Roster),
		Breakdown: roster.Breakdowns(snap.Roster),
	})
}
