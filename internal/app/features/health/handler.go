package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/eventroster/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is the part of *mongo.Client the health check needs.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// PageCounter reports how many roster pages are live.
type PageCounter interface {
	Len() int
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client Pinger
	Pages  PageCounter
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. pages may be nil.
func NewHandler(client Pinger, pages PageCounter, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Pages:  pages,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Pages    *int   `json:"pages,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "pages":3 }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}
	if h.Pages != nil {
		n := h.Pages.Len()
		resp.Pages = &n
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
