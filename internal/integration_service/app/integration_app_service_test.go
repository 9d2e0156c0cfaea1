package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fleetease/golang_services/internal/integration_service/domain"
	"github.com/fleetease/golang_services/internal/integration_service/payment"
	"github.com/fleetease/golang_services/internal/integration_service/regulatory"
	"github.com/fleetease/golang_services/internal/integration_service/tracking"
)

// --- Mocks ---

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.RentalNotification) (*domain.RentalNotification, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalNotification), args.Error(1)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id string) (*domain.RentalNotification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalNotification), args.Error(1)
}

func (m *MockNotificationRepository) UpdateStatus(ctx context.Context, id string, status domain.NotificationStatus, providerRef *string, cancelReason *string) error {
	args := m.Called(ctx, id, status, providerRef, cancelReason)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByStatus(ctx context.Context, status domain.NotificationStatus, limit int) ([]*domain.RentalNotification, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RentalNotification), args.Error(1)
}

// newUnconfiguredService builds a service whose adapters carry no credentials,
// so no operation attempts network I/O.
func newUnconfiguredService(repo *MockNotificationRepository) *IntegrationAppService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewIntegrationAppService(
		tracking.NewArventoAdapter(logger, tracking.Config{}, nil),
		payment.NewIyzicoAdapter(logger, payment.Config{}, nil),
		regulatory.NewKabisAdapter(logger, regulatory.Config{}, nil),
		repo,
		logger,
	)
}

func validNotificationRequest() regulatory.NotificationRequest {
	return regulatory.NotificationRequest{
		VehiclePlate: "34 ABC 123",
		CustomerIDNo: "12345678901",
		CustomerName: "Ayse Kaya",
		RentalStart:  "2025-03-01T09:00:00Z",
		RentalEnd:    "2025-03-08T09:00:00Z",
	}
}

func TestIntegrationAppService_GetFleet_MockFallthrough(t *testing.T) {
	svc := newUnconfiguredService(new(MockNotificationRepository))
	env := svc.GetFleet(context.Background())
	assert.True(t, env.Success())
	assert.Equal(t, domain.SourceMock, env.Source())
}

func TestIntegrationAppService_CreateRentalNotification_PersistsLedgerRow(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.RentalNotification) bool {
		return n.Status == domain.StatusPendingAPI && n.VehiclePlate == "34 ABC 123" && n.ID != ""
	})).Return(&domain.RentalNotification{}, nil).Once()

	svc := newUnconfiguredService(repo)
	env := svc.CreateRentalNotification(context.Background(), validNotificationRequest())

	require.True(t, env.Success())
	assert.Equal(t, "pending_api", env["status"])
	assert.Equal(t, true, env["ledger_recorded"])
	repo.AssertExpectations(t)
}

func TestIntegrationAppService_CreateRentalNotification_LedgerWriteFailureIsFatalForLocalPending(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	svc := newUnconfiguredService(repo)
	env := svc.CreateRentalNotification(context.Background(), validNotificationRequest())

	assert.False(t, env.Success())
	assert.Equal(t, "could not record rental notification", env["error"])
	repo.AssertExpectations(t)
}

func TestIntegrationAppService_CreateRentalNotification_ValidationSkipsLedger(t *testing.T) {
	repo := new(MockNotificationRepository)

	svc := newUnconfiguredService(repo)
	req := validNotificationRequest()
	req.CustomerIDNo = "1234567890" // 10 digits

	env := svc.CreateRentalNotification(context.Background(), req)
	assert.False(t, env.Success())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIntegrationAppService_CancelNotification_UpdatesLedger(t *testing.T) {
	repo := new(MockNotificationRepository)
	reason := "booking error"
	repo.On("UpdateStatus", mock.Anything, "n-1", domain.StatusCancelledLocal, (*string)(nil), &reason).
		Return(nil).Once()

	svc := newUnconfiguredService(repo)
	env := svc.CancelNotification(context.Background(), "n-1", reason)

	assert.True(t, env.Success())
	assert.Equal(t, "cancelled_local", env["status"])
	repo.AssertExpectations(t)
}

func TestIntegrationAppService_ListPendingNotifications(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("ListByStatus", mock.Anything, domain.StatusPendingAPI, 25).
		Return([]*domain.RentalNotification{{ID: "n-1"}}, nil).Once()

	svc := newUnconfiguredService(repo)
	list, err := svc.ListPendingNotifications(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "n-1", list[0].ID)
}

func TestIntegrationAppService_VerifyPaymentWebhook_UnconfiguredIsFalse(t *testing.T) {
	svc := newUnconfiguredService(new(MockNotificationRepository))
	assert.False(t, svc.VerifyPaymentWebhook([]byte(`{}`), "anything"))
}
