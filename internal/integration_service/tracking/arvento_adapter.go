package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fleetease/golang_services/internal/integration_service/domain"
)

// FallbackPolicy selects what an operation returns when the provider call
// cannot be completed.
type FallbackPolicy int

const (
	// FallbackMockFleet degrades to the fixed sample fleet so callers always
	// receive a displayable fleet view. Zero value: this is the default for
	// the fleet-list operation.
	FallbackMockFleet FallbackPolicy = iota
	// FallbackNone surfaces a structured error envelope instead.
	FallbackNone
)

const (
	probeTimeout = 10 * time.Second
	dataTimeout  = 30 * time.Second
)

// Config holds the Arvento credentials and endpoint.
type Config struct {
	APIKey      string
	CompanyCode string
	BaseURL     string

	// FleetFallback controls degradation for GetAllVehicles. History lookups
	// always use FallbackNone: fabricated trip history is worse than an error.
	FleetFallback FallbackPolicy
}

// ArventoAdapter talks to the Arvento GPS fleet-tracking API. It is stateless
// after construction and safe for concurrent use.
type ArventoAdapter struct {
	logger        *slog.Logger
	httpClient    *http.Client
	cfg           Config
	guard         domain.CredentialGuard
	fleetFallback FallbackPolicy
}

// NewArventoAdapter creates the adapter. A nil httpClient gets a default with
// the data-operation timeout; connectivity probes use a shorter per-call
// deadline.
func NewArventoAdapter(logger *slog.Logger, cfg Config, httpClient *http.Client) *ArventoAdapter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: dataTimeout}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.arvento.com/v1"
	}
	return &ArventoAdapter{
		logger:     logger.With("adapter", "arvento"),
		httpClient: httpClient,
		cfg:        cfg,
		guard: domain.RequireCredentials(map[string]string{
			"api_key":      cfg.APIKey,
			"company_code": cfg.CompanyCode,
		}),
		fleetFallback: cfg.FleetFallback,
	}
}

// GetName returns the provider name.
func (a *ArventoAdapter) GetName() string { return "arvento" }

// Configured reports whether all required credentials were present at
// construction time.
func (a *ArventoAdapter) Configured() bool { return a.guard.Configured() }

// VehicleState is the canonical live-position record for one vehicle.
type VehicleState struct {
	VehicleID  string  `json:"vehicle_id"`
	Plate      string  `json:"plate"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Speed      float64 `json:"speed"`
	Heading    float64 `json:"heading"`
	Ignition   bool    `json:"ignition"`
	LastUpdate string  `json:"last_update"`
	Address    string  `json:"address"`
	Driver     string  `json:"driver"`
}

// arventoPosition is one raw record from the positions endpoint.
type arventoPosition struct {
	DeviceID   string  `json:"deviceId"`
	Plate      string  `json:"plate"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Speed      float64 `json:"speed"`
	Heading    float64 `json:"heading"`
	Ignition   bool    `json:"ignition"`
	Timestamp  string  `json:"timestamp"`
	Address    string  `json:"address"`
	DriverName string  `json:"driverName"`
}

// GetAllVehicles fetches live positions for the whole fleet. Unconfigured
// instances and, under FallbackMockFleet, any provider failure return the
// fixed sample fleet tagged source="mock".
func (a *ArventoAdapter) GetAllVehicles(ctx context.Context) domain.Envelope {
	if !a.guard.Configured() {
		return a.mockFleet("Arvento API not configured - showing sample data")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/vehicles/positions", nil)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to create Arvento positions request", "error", err)
		return a.fleetFailure(ctx, fmt.Sprintf("failed to create request: %v", err))
	}
	a.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.ErrorContext(ctx, "Arvento connection error", "error", err)
		return a.fleetFailure(ctx, fmt.Sprintf("arvento connection error: %v", err))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		a.logger.ErrorContext(ctx, "Arvento API error", "status_code", httpResp.StatusCode)
		return a.fleetFailure(ctx, fmt.Sprintf("arvento API error: status %d", httpResp.StatusCode))
	}

	var raw []arventoPosition
	if err := json.NewDecoder(httpResp.Body).Decode(&raw); err != nil {
		a.logger.ErrorContext(ctx, "Failed to decode Arvento positions response", "error", err)
		return a.fleetFailure(ctx, fmt.Sprintf("failed to decode response: %v", err))
	}

	vehicles := make([]VehicleState, 0, len(raw))
	for _, item := range raw {
		vehicles = append(vehicles, VehicleState{
			VehicleID:  item.DeviceID,
			Plate:      item.Plate,
			Lat:        item.Latitude,
			Lng:        item.Longitude,
			Speed:      item.Speed,
			Heading:    item.Heading,
			Ignition:   item.Ignition,
			LastUpdate: item.Timestamp,
			Address:    item.Address,
			Driver:     item.DriverName,
		})
	}

	return domain.OK(domain.SourceArventoAPI).With("vehicles", vehicles)
}

// fleetFailure applies the configured degradation policy for the fleet-list
// operation.
func (a *ArventoAdapter) fleetFailure(ctx context.Context, errMsg string) domain.Envelope {
	if a.fleetFallback == FallbackMockFleet {
		a.logger.WarnContext(ctx, "Degrading fleet view to mock data", "reason", errMsg)
		return a.mockFleet("Arvento unreachable - showing sample data")
	}
	return domain.Fail(errMsg)
}

// GetVehicleHistory fetches the raw position history for one plate over a date
// range. Failures surface as error envelopes; history is never mocked.
func (a *ArventoAdapter) GetVehicleHistory(ctx context.Context, plate, startDate, endDate string) domain.Envelope {
	if !a.guard.Configured() {
		return domain.OK(domain.SourceMock).
			With("history", []any{}).
			With("message", "Arvento API not configured")
	}

	historyURL := fmt.Sprintf("%s/vehicles/%s/history", a.cfg.BaseURL, url.PathEscape(plate))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, historyURL, nil)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to create Arvento history request", "error", err, "plate", plate)
		return historyFailure()
	}
	a.setHeaders(httpReq)
	q := httpReq.URL.Query()
	q.Set("start", startDate)
	q.Set("end", endDate)
	httpReq.URL.RawQuery = q.Encode()

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.ErrorContext(ctx, "Arvento history error", "error", err, "plate", plate)
		return historyFailure()
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		a.logger.ErrorContext(ctx, "Arvento history API error", "status_code", httpResp.StatusCode, "plate", plate)
		return historyFailure()
	}

	var history []any
	if err := json.NewDecoder(httpResp.Body).Decode(&history); err != nil {
		a.logger.ErrorContext(ctx, "Failed to decode Arvento history response", "error", err, "plate", plate)
		return historyFailure()
	}

	return domain.OK(domain.SourceArventoAPI).With("history", history)
}

func historyFailure() domain.Envelope {
	return domain.Fail("could not retrieve history").With("history", []any{})
}

// TestConnection pings the Arvento health endpoint. "configured" and "success"
// are reported independently so callers can distinguish "not set up" from
// "set up but unreachable".
func (a *ArventoAdapter) TestConnection(ctx context.Context) domain.Envelope {
	if !a.guard.Configured() {
		return domain.Fail("Arvento API credentials not configured").
			With("configured", false).
			With("missing", a.guard.Missing())
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
		a.logger.WarnContext(ctx, "Arvento connection test failed", "error", err)
		return domain.Fail(err.Error()).
			With("configured", true).
			With("message", "could not reach Arvento")
	}
	defer httpResp.Body.Close()
	io.Copy(io.Discard, httpResp.Body)

	env := domain.Envelope{
		"success":     httpResp.StatusCode == http.StatusOK,
		"configured":  true,
		"status_code": httpResp.StatusCode,
	}
	if httpResp.StatusCode == http.StatusOK {
		env["message"] = "connection OK"
	} else {
		env["message"] = "connection error"
	}
	return env
}

func (a *ArventoAdapter) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	req.Header.Set("X-Company-Code", a.cfg.CompanyCode)
}

// mockFleet returns the fixed three-vehicle sample fleet.
func (a *ArventoAdapter) mockFleet(message string) domain.Envelope {
	now := time.Now().UTC().Format(time.RFC3339)
	vehicles := []VehicleState{
		{
			VehicleID:  "mock-1",
			Plate:      "34 ABC 123",
			Lat:        41.0082,
			Lng:        28.9784,
			Speed:      45,
			Heading:    90,
			Ignition:   true,
			LastUpdate: now,
			Address:    "Taksim, Istanbul",
			Driver:     "Ahmet Yilmaz",
		},
		{
			VehicleID:  "mock-2",
			Plate:      "34 DEF 456",
			Lat:        41.0422,
			Lng:        29.0083,
			Speed:      0,
			Heading:    0,
			Ignition:   false,
			LastUpdate: now,
			Address:    "Kadikoy, Istanbul",
			Driver:     "Mehmet Demir",
		},
		{
			VehicleID:  "mock-3",
			Plate:      "34 GHI 789",
			Lat:        40.9923,
			Lng:        29.0242,
			Speed:      72,
			Heading:    180,
			Ignition:   true,
			LastUpdate: now,
			Address:    "Maltepe, Istanbul",
			Driver:     "Ali Kaya",
		},
	}
	return domain.OK(domain.SourceMock).
		With("message", message).
		With("vehicles", vehicles)
}
