// internal/app/features/events/handler.go
package events

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/eventroster/internal/app/system/catalog"
	"github.com/dalemusser/eventroster/internal/app/system/roster"
	"github.com/dalemusser/eventroster/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pages hands out the live roster page for an event.
type Pages interface {
	Open(eventID string) (*roster.Page, error)
	Reopen(eventID string) (*roster.Page, error)
	Get(eventID string) (*roster.Page, bool)
}

// Events lists the catalog.
type Events interface {
	All() []models.Event
}

// Handler serves the event admin pages: catalog list, roster, export,
// and stats.
type Handler struct {
	Catalog  Events
	Pages    Pages
	Exporter roster.Exporter
	Log      *zap.Logger
}

// NewHandler creates the event admin Handler.
func NewHandler(cat Events, pages Pages, exporter roster.Exporter, logger *zap.Logger) *Handler {
	return &Handler{
		Catalog:  cat,
		Pages:    pages,
		Exporter: exporter,
		Log:      logger,
	}
}

// openPage resolves {eventID} to its live page. It writes the error
// response itself and returns nil when the page cannot be used.
func (h *Handler) openPage(w http.ResponseWriter, r *http.Request) *roster.Page {
	eventID := chi.URLParam(r, "eventID")
	p, err := h.Pages.Open(eventID)
	if err != nil {
		h.pageError(w, eventID, err)
		return nil
	}
	return p
}

// pageError maps a Pages error to its response.
func (h *Handler) pageError(w http.ResponseWriter, eventID string, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownEvent):
		writeError(w, http.StatusNotFound, "unknown event")
	case errors.Is(err, roster.ErrRegistryClosed):
		writeError(w, http.StatusServiceUnavailable, "shutting down")
	default:
		h.Log.Error("open roster page", zap.String("event_id", eventID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// failed reports a page whose feed has failed. The page stays in that state
// until it is reloaded.
func (h *Handler) failed(w http.ResponseWriter, p *roster.Page) bool {
	if p.Status() != roster.StatusError {
		return false
	}
	writeJSON(w, http.StatusServiceUnavailable, p.State())
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
