package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fleetease/golang_services/internal/integration_service/domain"
	"github.com/fleetease/golang_services/internal/integration_service/payment"
	"github.com/fleetease/golang_services/internal/integration_service/regulatory"
	"github.com/fleetease/golang_services/internal/integration_service/repository"
	"github.com/fleetease/golang_services/internal/integration_service/repository/postgres"
	"github.com/fleetease/golang_services/internal/integration_service/tracking"
)

// IntegrationAppService orchestrates the three integration adapters and the
// local notification ledger. Adapters stay leaves: every cross-cutting concern
// (persistence, metrics) lives here.
type IntegrationAppService struct {
	tracking   *tracking.ArventoAdapter
	payment    *payment.IyzicoAdapter
	regulatory *regulatory.KabisAdapter
	notifRepo  repository.NotificationRepository
	logger     *slog.Logger
}

// NewIntegrationAppService wires the adapters and repository together.
func NewIntegrationAppService(
	trackingAdapter *tracking.ArventoAdapter,
	paymentAdapter *payment.IyzicoAdapter,
	regulatoryAdapter *regulatory.KabisAdapter,
	notifRepo repository.NotificationRepository,
	logger *slog.Logger,
) *IntegrationAppService {
	return &IntegrationAppService{
		tracking:   trackingAdapter,
		payment:    paymentAdapter,
		regulatory: regulatoryAdapter,
		notifRepo:  notifRepo,
		logger:     logger.With("service", "integration_app"),
	}
}

// observe runs one provider operation under the duration histogram and outcome
// counter.
func observe(provider, operation string, fn func() domain.Envelope) domain.Envelope {
	timer := prometheus.NewTimer(providerRequestDurationHist.WithLabelValues(provider, operation))
	env := fn()
	timer.ObserveDuration()
	providerOperationsCounter.WithLabelValues(provider, operation, outcomeLabel(env.Success(), env.Source())).Inc()
	return env
}

// --- Tracking ---

func (s *IntegrationAppService) GetFleet(ctx context.Context) domain.Envelope {
	return observe(s.tracking.GetName(), "get_all_vehicles", func() domain.Envelope {
		return s.tracking.GetAllVehicles(ctx)
	})
}

func (s *IntegrationAppService) GetVehicleHistory(ctx context.Context, plate, startDate, endDate string) domain.Envelope {
	return observe(s.tracking.GetName(), "get_vehicle_history", func() domain.Envelope {
		return s.tracking.GetVehicleHistory(ctx, plate, startDate, endDate)
	})
}

func (s *IntegrationAppService) TestTrackingConnection(ctx context.Context) domain.Envelope {
	return observe(s.tracking.GetName(), "test_connection", func() domain.Envelope {
		return s.tracking.TestConnection(ctx)
	})
}

// --- Payment ---

func (s *IntegrationAppService) CreateCheckoutForm(ctx context.Context, req payment.CheckoutFormRequest) domain.Envelope {
	return observe(s.payment.GetName(), "create_checkout_form", func() domain.Envelope {
		return s.payment.CreateCheckoutForm(ctx, req)
	})
}

func (s *IntegrationAppService) RetrieveCheckoutResult(ctx context.Context, token string) domain.Envelope {
	return observe(s.payment.GetName(), "retrieve_checkout_result", func() domain.Envelope {
		return s.payment.RetrieveCheckoutResult(ctx, token)
	})
}

func (s *IntegrationAppService) CreateSubscriptionProduct(ctx context.Context, name, description string) domain.Envelope {
	return observe(s.payment.GetName(), "create_subscription_product", func() domain.Envelope {
		return s.payment.CreateSubscriptionProduct(ctx, name, description)
	})
}

func (s *IntegrationAppService) CreatePricingPlan(ctx context.Context, req payment.PricingPlanRequest) domain.Envelope {
	return observe(s.payment.GetName(), "create_pricing_plan", func() domain.Envelope {
		return s.payment.CreatePricingPlan(ctx, req)
	})
}

func (s *IntegrationAppService) InitializeSubscriptionCheckout(ctx context.Context, planRef string, customer map[string]any, callbackURL string) domain.Envelope {
	return observe(s.payment.GetName(), "initialize_subscription_checkout", func() domain.Envelope {
		return s.payment.InitializeSubscriptionCheckout(ctx, planRef, customer, callbackURL)
	})
}

func (s *IntegrationAppService) CancelSubscription(ctx context.Context, subscriptionRef string) domain.Envelope {
	return observe(s.payment.GetName(), "cancel_subscription", func() domain.Envelope {
		return s.payment.CancelSubscription(ctx, subscriptionRef)
	})
}

func (s *IntegrationAppService) VerifyPaymentWebhook(payload []byte, signatureHeader string) bool {
	return s.payment.VerifyWebhookSignature(payload, signatureHeader)
}

// --- Regulatory ---

// CreateRentalNotification submits the disclosure and records it in the local
// ledger. When the adapter accepted the notification only locally
// (pending_api), a failed ledger write is a real failure: the ledger is the
// only record that exists.
func (s *IntegrationAppService) CreateRentalNotification(ctx context.Context, req regulatory.NotificationRequest) domain.Envelope {
	env := observe(s.regulatory.GetName(), "create_rental_notification", func() domain.Envelope {
		return s.regulatory.CreateRentalNotification(ctx, req)
	})
	if !env.Success() {
		return env
	}

	status, _ := env["status"].(string)
	notificationID, _ := env["notification_id"].(string)
	n := &domain.RentalNotification{
		ID:              notificationID,
		VehiclePlate:    req.VehiclePlate,
		CustomerIDNo:    req.CustomerIDNo,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		RentalStart:     req.RentalStart,
		RentalEnd:       req.RentalEnd,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		Status:          domain.NotificationStatus(status),
	}
	if status == string(domain.StatusSubmitted) {
		n.ProviderRef = notificationID
	}

	if _, err := s.notifRepo.Create(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record rental notification", "error", err, "notification_id", notificationID, "status", status)
		if status == string(domain.StatusPendingAPI) {
			return domain.Fail("could not record rental notification")
		}
		// Submitted to KABIS but not recorded locally; the submission stands.
		env["ledger_recorded"] = false
		return env
	}
	env["ledger_recorded"] = true
	return env
}

// CancelNotification cancels upstream and updates the ledger. A notification
// unknown to the ledger is not an error; it may predate the ledger.
func (s *IntegrationAppService) CancelNotification(ctx context.Context, notificationID, reason string) domain.Envelope {
	env := observe(s.regulatory.GetName(), "cancel_notification", func() domain.Envelope {
		return s.regulatory.CancelNotification(ctx, notificationID, reason)
	})
	if !env.Success() {
		return env
	}

	status, _ := env["status"].(string)
	err := s.notifRepo.UpdateStatus(ctx, notificationID, domain.NotificationStatus(status), nil, &reason)
	if err != nil && !errors.Is(err, postgres.ErrNotificationNotFound) {
		s.logger.ErrorContext(ctx, "Failed to update cancelled notification", "error", err, "notification_id", notificationID)
	}
	return env
}

func (s *IntegrationAppService) GetNotificationStatus(ctx context.Context, notificationID string) domain.Envelope {
	return observe(s.regulatory.GetName(), "get_notification_status", func() domain.Envelope {
		return s.regulatory.GetNotificationStatus(ctx, notificationID)
	})
}

// ListPendingNotifications returns ledger rows still awaiting manual
// submission to KABIS.
func (s *IntegrationAppService) ListPendingNotifications(ctx context.Context, limit int) ([]*domain.RentalNotification, error) {
	return s.notifRepo.ListByStatus(ctx, domain.StatusPendingAPI, limit)
}

func (s *IntegrationAppService) TestRegulatoryConnection(ctx context.Context) domain.Envelope {
	return observe(s.regulatory.GetName(), "test_connection", func() domain.Envelope {
		return s.regulatory.TestConnection(ctx)
	})
}
