// internal/app/features/events/export.go
package events

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/eventroster/internal/app/system/roster"
	"go.uber.org/zap"
)

// ServeExport handles GET /events/{eventID}/participants.csv?q=. It exports
// the participants matching q. An empty result is not an error: the
// response is 204 with no body.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	p := h.openPage(w, r)
	if p == nil || h.failed(w, p) {
		return
	}

	rows := roster.Filter(p.Roster(), r.URL.Query().Get("q"))
	art, err := h.Exporter.Export(p.Event(), rows)
	if errors.Is(err, roster.ErrNothingToExport) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.Log.Error("export roster", zap.String("event_id", p.Event().ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	h.Log.Info("roster exported",
		zap.String("event_id", p.Event().ID),
		zap.Int("rows", art.Rows),
		zap.String("filename", art.Filename))

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Body)
}
