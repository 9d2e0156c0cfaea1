package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetease/golang_services/internal/integration_service/app"
)

// TrackingHandler exposes the GPS fleet-tracking operations.
type TrackingHandler struct {
	appService *app.IntegrationAppService
	logger     *slog.Logger
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(appService *app.IntegrationAppService, logger *slog.Logger) *TrackingHandler {
	return &TrackingHandler{
		appService: appService,
		logger:     logger.With("handler", "tracking"),
	}
}

// RegisterRoutes registers tracking routes with the given router.
func (h *TrackingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tracking/vehicles", h.handleGetFleet)
	r.Get("/tracking/vehicles/{plate}/history", h.handleGetHistory)
	r.Get("/tracking/test", h.handleTestConnection)
}

func (h *TrackingHandler) handleGetFleet(w http.ResponseWriter, r *http.Request) {
	env := h.appService.GetFleet(r.Context())
	writeJSON(w, http.StatusOK, env)
}

func (h *TrackingHandler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	plate := chi.URLParam(r, "plate")
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		jsonError(w, "start and end query parameters are required", http.StatusBadRequest)
		return
	}

	env := h.appService.GetVehicleHistory(r.Context(), plate, start, end)
	writeJSON(w, http.StatusOK, env)
}

func (h *TrackingHandler) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	env := h.appService.TestTrackingConnection(r.Context())
	writeJSON(w, http.StatusOK, env)
}
