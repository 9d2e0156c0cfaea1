package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetease/golang_services/internal/integration_service/app"
	"github.com/fleetease/golang_services/internal/integration_service/payment"
)

// signatureHeader is the header iyzico sends with webhook deliveries.
const signatureHeader = "X-Iyz-Signature"

// PaymentHandler exposes the iyzico payment gateway operations.
type PaymentHandler struct {
	appService *app.IntegrationAppService
	logger     *slog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(appService *app.IntegrationAppService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		appService: appService,
		logger:     logger.With("handler", "payment"),
	}
}

// RegisterRoutes registers the authenticated payment routes.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/payments/checkout", h.handleCreateCheckout)
	r.Get("/payments/checkout/{token}", h.handleRetrieveCheckout)
	r.Post("/payments/subscription/products", h.handleCreateProduct)
	r.Post("/payments/subscription/plans", h.handleCreatePlan)
	r.Post("/payments/subscription/checkout", h.handleSubscriptionCheckout)
	r.Delete("/payments/subscription/{ref}", h.handleCancelSubscription)
}

// RegisterWebhookRoutes registers the signature-verified webhook endpoint.
// It stays outside the authenticated group: iyzico authenticates with its
// signature, not with our bearer tokens.
func (h *PaymentHandler) RegisterWebhookRoutes(r chi.Router) {
	r.Post("/payments/webhook", h.handleWebhook)
}

func (h *PaymentHandler) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			jsonError(w, "Request body is empty", http.StatusBadRequest)
			return
		}
		jsonError(w, "Invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	env := h.appService.CreateCheckoutForm(r.Context(), payment.CheckoutFormRequest{
		Price:           req.Price,
		PaidPrice:       req.PaidPrice,
		Currency:        req.Currency,
		BasketID:        req.BasketID,
		Buyer:           req.Buyer,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		BasketItems:     req.BasketItems,
		CallbackURL:     req.CallbackURL,
	})
	writeJSON(w, http.StatusOK, env)
}

func (h *PaymentHandler) handleRetrieveCheckout(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	env := h.appService.RetrieveCheckoutResult(r.Context(), token)
	writeJSON(w, http.StatusOK, env)
}

func (h *PaymentHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		jsonError(w, "name is required", http.StatusBadRequest)
		return
	}
	env := h.appService.CreateSubscriptionProduct(r.Context(), req.Name, req.Description)
	writeJSON(w, http.StatusOK, env)
}

func (h *PaymentHandler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req PricingPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.ProductReferenceCode == "" || req.Name == "" {
		jsonError(w, "product_reference_code and name are required", http.StatusBadRequest)
		return
	}
	env := h.appService.CreatePricingPlan(r.Context(), payment.PricingPlanRequest{
		ProductReferenceCode: req.ProductReferenceCode,
		Name:                 req.Name,
		Price:                req.Price,
		Currency:             req.Currency,
		PaymentInterval:      req.PaymentInterval,
		PaymentIntervalCount: req.PaymentIntervalCount,
		TrialPeriodDays:      req.TrialPeriodDays,
	})
	writeJSON(w, http.StatusOK, env)
}

func (h *PaymentHandler) handleSubscriptionCheckout(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.PricingPlanReferenceCode == "" {
		jsonError(w, "pricing_plan_reference_code is required", http.StatusBadRequest)
		return
	}
	env := h.appService.InitializeSubscriptionCheckout(r.Context(), req.PricingPlanReferenceCode, req.Customer, req.CallbackURL)
	writeJSON(w, http.StatusOK, env)
}

func (h *PaymentHandler) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	env := h.appService.CancelSubscription(r.Context(), ref)
	writeJSON(w, http.StatusOK, env)
}

func (h *PaymentHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "could not read body", http.StatusBadRequest)
		return
	}

	if !h.appService.VerifyPaymentWebhook(body, r.Header.Get(signatureHeader)) {
		h.logger.WarnContext(r.Context(), "Rejected payment webhook with invalid signature", "payload_len", len(body))
		jsonError(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	h.logger.InfoContext(r.Context(), "Accepted payment webhook", "payload_len", len(body))
	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}
