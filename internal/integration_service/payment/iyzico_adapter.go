package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fleetease/golang_services/internal/integration_service/domain"
)

const requestTimeout = 30 * time.Second

// Config holds the iyzico API credentials and endpoint.
type Config struct {
	APIKey    string
	SecretKey string
	BaseURL   string
}

// IyzicoAdapter talks to the iyzico payment gateway. Every outbound payload is
// serialized once, signed with the IYZWSv2 scheme, and POSTed with a fresh
// random conversation id. There is no mock fallback: synthesizing fake payment
// confirmations is unsafe, so failures always surface as error envelopes.
type IyzicoAdapter struct {
	logger     *slog.Logger
	httpClient *http.Client
	cfg        Config
	guard      domain.CredentialGuard
}

// NewIyzicoAdapter creates the adapter. A nil httpClient gets a default with a
// 30s timeout.
func NewIyzicoAdapter(logger *slog.Logger, cfg Config, httpClient *http.Client) *IyzicoAdapter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://sandbox-api.iyzipay.com"
	}
	return &IyzicoAdapter{
		logger:     logger.With("adapter", "iyzico"),
		httpClient: httpClient,
		cfg:        cfg,
		guard: domain.RequireCredentials(map[string]string{
			"api_key":    cfg.APIKey,
			"secret_key": cfg.SecretKey,
		}),
	}
}

// GetName returns the provider name.
func (a *IyzicoAdapter) GetName() string { return "iyzico" }

// Configured reports whether both API keys were present at construction time.
func (a *IyzicoAdapter) Configured() bool { return a.guard.Configured() }

func notConfigured() domain.Envelope {
	return domain.Fail("iyzico API keys not configured").With("status", "error")
}

// CheckoutFormRequest carries the caller-supplied data for a one-time payment
// checkout form.
type CheckoutFormRequest struct {
	Price           float64
	PaidPrice       float64
	Currency        string // defaults to TRY
	BasketID        string
	Buyer           map[string]any
	ShippingAddress map[string]any
	BillingAddress  map[string]any
	BasketItems     []map[string]any
	CallbackURL     string
}

// CreateCheckoutForm initializes an iyzico checkout form for a one-time
// payment and returns the provider response plus the conversation id.
func (a *IyzicoAdapter) CreateCheckoutForm(ctx context.Context, req CheckoutFormRequest) domain.Envelope {
	if !a.guard.Configured() {
		return notConfigured()
	}
	currency := req.Currency
	if currency == "" {
		currency = "TRY"
	}
	conversationID := uuid.NewString()

	payload := map[string]any{
		"locale":              "tr",
		"conversationId":      conversationID,
		"price":               formatPrice(req.Price),
		"paidPrice":           formatPrice(req.PaidPrice),
		"currency":            currency,
		"basketId":            req.BasketID,
		"paymentGroup":        "SUBSCRIPTION",
		"callbackUrl":         req.CallbackURL,
		"enabledInstallments": []int{1, 2, 3, 6, 9},
		"buyer":               req.Buyer,
		"shippingAddress":     req.ShippingAddress,
		"billingAddress":      req.BillingAddress,
		"basketItems":         req.BasketItems,
	}

	return a.post(ctx, "/payment/iyzipos/checkoutform/initialize/auth/ecom", payload, conversationID)
}

// RetrieveCheckoutResult fetches the outcome of a completed checkout by its
// opaque token.
func (a *IyzicoAdapter) RetrieveCheckoutResult(ctx context.Context, token string) domain.Envelope {
	if !a.guard.Configured() {
		return notConfigured()
	}
	conversationID := uuid.NewString()
	payload := map[string]any{
		"locale":         "tr",
		"conversationId": conversationID,
		"token":          token,
	}
	return a.post(ctx, "/payment/iyzipos/checkoutform/auth/ecom/detail", payload, "")
}

// CreateSubscriptionProduct registers a subscription product and returns the
// generated reference code tied to it.
func (a *IyzicoAdapter) CreateSubscriptionProduct(ctx context.Context, name, description string) domain.Envelope {
	if !a.guard.Configured() {
		return notConfigured()
	}
	conversationID := uuid.NewString()
	referenceCode := newReferenceCode("PROD")
	payload := map[string]any{
		"locale":         "tr",
		"conversationId": conversationID,
		"name":           name,
		"description":    description,
		"referenceCode":  referenceCode,
	}
	return a.post(ctx, "/v2/subscription/products", payload, "").
		With("referenceCode", referenceCode)
}

// PricingPlanRequest describes a recurring pricing plan for a product.
type PricingPlanRequest struct {
	ProductReferenceCode string
	Name                 string
	Price                float64
	Currency             string // defaults to TRY
	PaymentInterval      string // MONTHLY, WEEKLY or YEARLY; defaults to MONTHLY
	PaymentIntervalCount int    // defaults to 1
	TrialPeriodDays      int
}

// CreatePricingPlan creates a recurring pricing plan and returns the generated
// plan reference code.
func (a *IyzicoAdapter) CreatePricingPlan(ctx context.Context, req PricingPlanRequest) domain.Envelope {
	if !a.guard.Configured() {
		return notConfigured()
	}
	currency := req.Currency
	if currency == "" {
		currency = "TRY"
	}
	interval := req.PaymentInterval
	if interval == "" {
		interval = "MONTHLY"
	}
	intervalCount := req.PaymentIntervalCount
	if intervalCount == 0 {
		intervalCount = 1
	}
	conversationID := uuid.NewString()
	referenceCode := newReferenceCode("PLAN")

	payload := map[string]any{
		"locale":               "tr",
		"conversationId":       conversationID,
		"productReferenceCode": req.ProductReferenceCode,
		"name":                 req.Name,
		"price":                formatPrice(req.Price),
		"currencyCode":         currency,
		"paymentInterval":      interval,
		"paymentIntervalCount": intervalCount,
		"trialPeriodDays":      req.TrialPeriodDays,
		"planPaymentType":      "RECURRING",
		"referenceCode":        referenceCode,
	}
	return a.post(ctx, "/v2/subscription/pricing-plans", payload, "").
		With("referenceCode", referenceCode)
}

// InitializeSubscriptionCheckout starts a subscription checkout form for an
// existing pricing plan.
func (a *IyzicoAdapter) InitializeSubscriptionCheckout(ctx context.Context, pricingPlanReferenceCode string, customer map[string]any, callbackURL string) domain.Envelope {
	if !a.guard.Configured() {
		return notConfigured()
	}
	conversationID := uuid.NewString()
	payload := map[string]any{
		"locale":                    "tr",
		"conversationId":            conversationID,
		"pricingPlanReferenceCode":  pricingPlanReferenceCode,
		"subscriptionInitialStatus": "ACTIVE",
		"callbackUrl":               callbackURL,
		"customer":                  customer,
	}
	return a.post(ctx, "/v2/subscription/checkoutform/initialize", payload, conversationID)
}

// CancelSubscription cancels an active subscription by reference code.
func (a *IyzicoAdapter) CancelSubscription(ctx context.Context, subscriptionReferenceCode string) domain.Envelope {
	if !a.guard.Configured() {
		return notConfigured()
	}
	conversationID := uuid.NewString()
	payload := map[string]any{
		"locale":                    "tr",
		"conversationId":            conversationID,
		"subscriptionReferenceCode": subscriptionReferenceCode,
	}
	path := "/v2/subscription/subscriptions/" + subscriptionReferenceCode + "/cancel"
	return a.post(ctx, path, payload, "")
}

// VerifyWebhookSignature recomputes the expected hex digest over the raw
// payload and compares it to the supplied header in constant time. It returns
// false (never an error) when unconfigured, on an empty header, or on any
// mismatch.
func (a *IyzicoAdapter) VerifyWebhookSignature(payload []byte, signatureHeader string) bool {
	if !a.guard.Configured() {
		return false
	}
	expected := webhookDigest(a.cfg.SecretKey, payload)
	return hmac.Equal([]byte(signatureHeader), []byte(expected))
}

// post signs and sends one payload, returning the decoded provider response as
// an envelope. conversationID, when non-empty, is stamped onto the envelope so
// callers can correlate the async result.
func (a *IyzicoAdapter) post(ctx context.Context, path string, payload map[string]any, conversationID string) domain.Envelope {
	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to marshal iyzico request", "path", path, "error", err)
		return domain.Fail(fmt.Sprintf("failed to marshal request: %v", err)).With("status", "error")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to create iyzico request", "path", path, "error", err)
		return domain.Fail(err.Error()).With("status", "error")
	}
	httpReq.Header.Set("Authorization", authHeader(a.cfg.APIKey, a.cfg.SecretKey, body))
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.ErrorContext(ctx, "iyzico request failed", "path", path, "error", err)
		return domain.Fail(err.Error()).With("status", "error")
	}
	defer httpResp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(httpResp.Body).Decode(&result); err != nil {
		a.logger.ErrorContext(ctx, "Failed to decode iyzico response", "path", path, "status_code", httpResp.StatusCode, "error", err)
		return domain.Fail(fmt.Sprintf("invalid response from iyzico (status %d)", httpResp.StatusCode)).With("status", "error")
	}

	env := domain.Envelope(result)
	env["success"] = result["status"] == "success"
	if conversationID != "" {
		env["conversationId"] = conversationID
	}
	if !env.Success() {
		a.logger.WarnContext(ctx, "iyzico returned non-success status", "path", path, "status_code", httpResp.StatusCode, "provider_status", result["status"])
	}
	return env
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// newReferenceCode builds codes like PROD_1A2B3C4D / PLAN_1A2B3C4D.
func newReferenceCode(prefix string) string {
	return prefix + "_" + strings.ToUpper(uuid.NewString()[:8])
}
