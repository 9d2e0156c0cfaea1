package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fleetease/golang_services/internal/integration_service/app"
	"github.com/fleetease/golang_services/internal/integration_service/regulatory"
)

// RegulatoryHandler exposes the KABIS rental-notification operations.
type RegulatoryHandler struct {
	appService *app.IntegrationAppService
	logger     *slog.Logger
}

// NewRegulatoryHandler creates a new RegulatoryHandler.
func NewRegulatoryHandler(appService *app.IntegrationAppService, logger *slog.Logger) *RegulatoryHandler {
	return &RegulatoryHandler{
		appService: appService,
		logger:     logger.With("handler", "regulatory"),
	}
}

// RegisterRoutes registers the authenticated regulatory routes.
func (h *RegulatoryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/regulatory/notifications", h.handleCreateNotification)
	r.Get("/regulatory/notifications", h.handleListPending)
	r.Get("/regulatory/notifications/{id}", h.handleGetStatus)
	r.Delete("/regulatory/notifications/{id}", h.handleCancelNotification)
	r.Get("/regulatory/test", h.handleTestConnection)
}

// RegisterPublicRoutes registers routes that need no authentication.
func (h *RegulatoryHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/regulatory/setup-info", h.handleSetupInfo)
}

func (h *RegulatoryHandler) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req regulatory.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			jsonError(w, "Request body is empty", http.StatusBadRequest)
			return
		}
		jsonError(w, "Invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	env := h.appService.CreateRentalNotification(r.Context(), req)
	status := http.StatusCreated
	if !env.Success() {
		status = http.StatusOK // envelope carries the error detail
	}
	writeJSON(w, status, env)
}

func (h *RegulatoryHandler) handleListPending(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	pending, err := h.appService.ListPendingNotifications(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list pending notifications", "error", err)
		jsonError(w, "could not list pending notifications", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "notifications": pending})
}

func (h *RegulatoryHandler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	env := h.appService.GetNotificationStatus(r.Context(), id)
	writeJSON(w, http.StatusOK, env)
}

func (h *RegulatoryHandler) handleCancelNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reason := r.URL.Query().Get("reason")
	env := h.appService.CancelNotification(r.Context(), id, reason)
	writeJSON(w, http.StatusOK, env)
}

func (h *RegulatoryHandler) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	env := h.appService.TestRegulatoryConnection(r.Context())
	writeJSON(w, http.StatusOK, env)
}

func (h *RegulatoryHandler) handleSetupInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, regulatory.SetupInfo())
}
