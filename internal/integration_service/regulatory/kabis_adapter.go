package regulatory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fleetease/golang_services/internal/integration_service/domain"
)

const (
	probeTimeout   = 10 * time.Second
	requestTimeout = 30 * time.Second
)

// Config holds the KABIS credentials and endpoint.
type Config struct {
	APIKey      string
	CompanyCode string
	BaseURL     string
}

// KabisAdapter submits mandatory rental-disclosure notifications to KABIS, the
// government vehicle-rental reporting system. Unconfigured instances accept
// notifications locally (a human completes the submission manually) rather
// than failing.
type KabisAdapter struct {
	logger     *slog.Logger
	httpClient *http.Client
	cfg        Config
	guard      domain.CredentialGuard
}

// NewKabisAdapter creates the adapter. A nil httpClient gets a default with a
// 30s timeout.
func NewKabisAdapter(logger *slog.Logger, cfg Config, httpClient *http.Client) *KabisAdapter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.kabis.uab.gov.tr/v1"
	}
	return &KabisAdapter{
		logger:     logger.With("adapter", "kabis"),
		httpClient: httpClient,
		cfg:        cfg,
		guard: domain.RequireCredentials(map[string]string{
			"api_key":      cfg.APIKey,
			"company_code": cfg.CompanyCode,
		}),
	}
}

// GetName returns the provider name.
func (a *KabisAdapter) GetName() string { return "kabis" }

// Configured reports whether all required credentials were present at
// construction time.
func (a *KabisAdapter) Configured() bool { return a.guard.Configured() }

// NotificationRequest carries the rental data for one disclosure.
type NotificationRequest struct {
	VehiclePlate    string `json:"vehicle_plate"`
	CustomerIDNo    string `json:"customer_id_no"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	RentalStart     string `json:"rental_start"`
	RentalEnd       string `json:"rental_end"`
	PickupLocation  string `json:"pickup_location,omitempty"`
	DropoffLocation string `json:"dropoff_location,omitempty"`
}

// validate returns the names of absent required fields.
func (r NotificationRequest) validate() []string {
	var missing []string
	for name, value := range map[string]string{
		"vehicle_plate":  r.VehiclePlate,
		"customer_id_no": r.CustomerIDNo,
		"customer_name":  r.CustomerName,
		"rental_start":   r.RentalStart,
		"rental_end":     r.RentalEnd,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// CreateRentalNotification validates and submits one rental disclosure.
// Validation failures return immediately with no network call. Unconfigured
// instances record the notification as pending local submission.
func (a *KabisAdapter) CreateRentalNotification(ctx context.Context, req NotificationRequest) domain.Envelope {
	if missing := req.validate(); len(missing) > 0 {
		return domain.Fail("missing required fields: " + strings.Join(missing, ", "))
	}
	if !domain.ValidateNationalID(req.CustomerIDNo) {
		return domain.Fail("invalid national identity number (must be 11 digits)")
	}

	notificationID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	if !a.guard.Configured() {
		return domain.OK(domain.SourceLocal).
			With("notification_id", notificationID).
			With("status", string(domain.StatusPendingAPI)).
			With("message", "notification recorded (KABIS API not configured - manual submission required)").
			With("created_at", now).
			With("data", req)
	}

	// KABIS expects its own Turkish field names on the wire.
	payload := map[string]any{
		"plaka":              req.VehiclePlate,
		"kiraci_tc":          req.CustomerIDNo,
		"kiraci_ad_soyad":    req.CustomerName,
		"kiraci_telefon":     req.CustomerPhone,
		"kiralama_baslangic": req.RentalStart,
		"kiralama_bitis":     req.RentalEnd,
		"alis_lokasyon":      req.PickupLocation,
		"iade_lokasyon":      req.DropoffLocation,
		"firma_kodu":         a.cfg.CompanyCode,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to marshal KABIS notification", "error", err)
		return domain.Fail(fmt.Sprintf("failed to marshal notification: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/bildirim", bytes.NewReader(body))
	if err != nil {
		return domain.Fail(err.Error())
	}
	a.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.ErrorContext(ctx, "KABIS connection error", "error", err)
		return domain.Fail(fmt.Sprintf("connection error: %v", err))
	}
	defer httpResp.Body.Close()

	respBody, _ := io.ReadAll(httpResp.Body)

	if httpResp.StatusCode == http.StatusOK || httpResp.StatusCode == http.StatusCreated {
		var result map[string]any
		if err := json.Unmarshal(respBody, &result); err != nil {
			result = map[string]any{}
		}
		providerRef := notificationID
		if ref, ok := result["bildirim_no"].(string); ok && ref != "" {
			providerRef = ref
		}
		return domain.OK(domain.SourceKabisAPI).
			With("notification_id", providerRef).
			With("status", string(domain.StatusSubmitted)).
			With("message", "notification submitted to KABIS").
			With("kabis_response", result).
			With("created_at", now)
	}

	a.logger.ErrorContext(ctx, "KABIS API error", "status_code", httpResp.StatusCode, "body", string(respBody))
	return domain.Fail(fmt.Sprintf("KABIS API error: status %d", httpResp.StatusCode)).
		With("details", string(respBody))
}

// CancelNotification cancels a previously created notification. Unconfigured
// instances always succeed with a local cancellation, regardless of id.
func (a *KabisAdapter) CancelNotification(ctx context.Context, notificationID, reason string) domain.Envelope {
	if !a.guard.Configured() {
		return domain.OK(domain.SourceLocal).
			With("notification_id", notificationID).
			With("status", string(domain.StatusCancelledLocal)).
			With("message", "notification cancelled locally (KABIS API not configured)")
	}

	cancelURL := a.cfg.BaseURL + "/bildirim/" + url.PathEscape(notificationID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, cancelURL, nil)
	if err != nil {
		return domain.Fail(err.Error())
	}
	a.setHeaders(httpReq)
	q := httpReq.URL.Query()
	q.Set("iptal_nedeni", reason)
	httpReq.URL.RawQuery = q.Encode()

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.ErrorContext(ctx, "KABIS cancel error", "error", err, "notification_id", notificationID)
		return domain.Fail(err.Error())
	}
	defer httpResp.Body.Close()
	io.Copy(io.Discard, httpResp.Body)

	cancelled := httpResp.StatusCode == http.StatusOK || httpResp.StatusCode == http.StatusNoContent
	status := string(domain.StatusCancelled)
	if !cancelled {
		status = "error"
	}
	return domain.Envelope{
		"success":         cancelled,
		"notification_id": notificationID,
		"status":          status,
	}
}

// GetNotificationStatus queries the provider for one notification's state.
// Provider response fields are merged into the envelope on success.
func (a *KabisAdapter) GetNotificationStatus(ctx context.Context, notificationID string) domain.Envelope {
	if !a.guard.Configured() {
		return domain.Envelope{
			"success":         true,
			"notification_id": notificationID,
			"status":          "unknown",
			"message":         "KABIS API not configured",
		}
	}

	statusURL := a.cfg.BaseURL + "/bildirim/" + url.PathEscape(notificationID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return domain.Fail("could not query status")
	}
	a.setHeaders(httpReq)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.ErrorContext(ctx, "KABIS status error", "error", err, "notification_id", notificationID)
		return domain.Fail("could not query status")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusOK {
		var result map[string]any
		if err := json.NewDecoder(httpResp.Body).Decode(&result); err == nil {
			env := domain.Envelope{"success": true}
			for k, v := range result {
				env[k] = v
			}
			return env
		}
	}
	return domain.Fail("could not query status")
}

// TestConnection pings the KABIS health endpoint, reporting "configured" and
// "success" independently.
func (a *KabisAdapter) TestConnection(ctx context.Context) domain.Envelope {
	if !a.guard.Configured() {
		return domain.Fail("KABIS API credentials not configured").
			With("configured", false).
			With("help", "enter API credentials under Settings > Integrations > KABIS")
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/ping", nil)
	if err != nil {
		return domain.Fail(err.Error()).With("configured", true)
	}
	a.setHeaders(httpReq)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.WarnContext(ctx, "KABIS connection test failed", "error", err)
		return domain.Fail(err.Error()).With("configured", true)
	}
	defer httpResp.Body.Close()
	io.Copy(io.Discard, httpResp.Body)

	return domain.Envelope{
		"success":     httpResp.StatusCode == http.StatusOK,
		"configured":  true,
		"status_code": httpResp.StatusCode,
	}
}

func (a *KabisAdapter) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	req.Header.Set("X-Firma-Kodu", a.cfg.CompanyCode)
}
